package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// LineItemStatus is the lifecycle state of an order line item.
type LineItemStatus string

const (
	LineItemStatusNew       LineItemStatus = "new"
	LineItemStatusActive    LineItemStatus = "active"
	LineItemStatusCancelled LineItemStatus = "cancelled"
)

// OrderLineItem is one ordered menu item. TotalPrice is persisted at creation
// time and is what the bill is computed from.
type OrderLineItem struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"order_id"`
	MenuItemID int64           `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     LineItemStatus  `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// IsBillable reports whether the item takes part in bill math.
func (i OrderLineItem) IsBillable() bool {
	return i.Status != LineItemStatusCancelled
}

// OrderStatus is the payment state of an order.
type OrderStatus string

const (
	OrderStatusOpen          OrderStatus = "open"
	OrderStatusPartiallyPaid OrderStatus = "partially_paid"
	OrderStatusClosed        OrderStatus = "closed"
)

// Order carries the bill-relevant fields of an order. The monetary fields are a
// cache of the last bill computed during a payment write.
type Order struct {
	ID             int64           `json:"id"`
	TenantID       int64           `json:"tenant_id"`
	DiscountID     *int64          `json:"discount_id"`
	PromoID        *int64          `json:"promo_id"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	PromoAmount    decimal.Decimal `json:"promo_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ServiceCharge  decimal.Decimal `json:"service_charge"`
	ChargedAmount  decimal.Decimal `json:"charged_amount"`
	Status         OrderStatus     `json:"order_status"`
	IsOpen         bool            `json:"is_open"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderBillFields is the set of cached fields overwritten on each payment.
type OrderBillFields struct {
	Bill       BillBreakdown
	Status     OrderStatus
	IsOpen     bool
	DiscountID *int64
	PromoID    *int64
}

// Apply copies the bill fields onto the order, rounded for storage.
func (f OrderBillFields) Apply(o *Order) {
	b := f.Bill.Rounded()
	o.Subtotal = b.Subtotal
	o.DiscountAmount = b.DiscountAmount
	o.PromoAmount = b.PromoAmount
	o.TaxAmount = b.TaxAmount
	o.ServiceCharge = b.ServiceCharge
	o.ChargedAmount = b.ChargedAmount
	o.Status = f.Status
	o.IsOpen = f.IsOpen
	o.DiscountID = f.DiscountID
	o.PromoID = f.PromoID
}

// Tenant is the owner of every other record.
type Tenant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
