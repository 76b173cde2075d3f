package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an immutable record of money received against an order.
type Payment struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	TenantID      int64           `json:"tenant_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMode   string          `json:"payment_mode"`
	TransactionID string          `json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewPayment is the input for appending a payment to the ledger.
type NewPayment struct {
	OrderID       int64
	TenantID      int64
	Amount        decimal.Decimal
	PaymentMode   string
	TransactionID string
}

// ProcessPaymentRequest is the body of POST /payments.
type ProcessPaymentRequest struct {
	OrderID       int64           `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMode   string          `json:"payment_mode"`
	TransactionID string          `json:"transaction_id,omitempty"`
	DiscountID    *int64          `json:"discount_id,omitempty"`
	PromoID       *int64          `json:"promo_id,omitempty"`
}

// CheckoutRequest is the body of POST /payments/checkout/:order_id.
type CheckoutRequest struct {
	DiscountID *int64 `json:"discount_id,omitempty"`
	PromoID    *int64 `json:"promo_id,omitempty"`
}

// PaymentSummary is the bill plus the ledger position after a payment.
type PaymentSummary struct {
	BillBreakdown
	TotalPaidSoFar   decimal.Decimal `json:"total_paid_so_far"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	PaymentStatus    OrderStatus     `json:"payment_status"`
	IsFullyPaid      bool            `json:"is_fully_paid"`
}

// ProcessPaymentResult is returned by a successful payment submission.
type ProcessPaymentResult struct {
	Payment        *Payment       `json:"payment"`
	Order          *Order         `json:"order"`
	PaymentSummary PaymentSummary `json:"payment_summary"`
}
