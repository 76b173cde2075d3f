package service

import (
	"strings"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// ValidateProcessPaymentRequest validates a payment submission.
func ValidateProcessPaymentRequest(req *models.ProcessPaymentRequest) error {
	if req.OrderID <= 0 {
		return errors.NewValidationError("order_id", "order ID is required")
	}

	if !req.Amount.IsPositive() {
		return errors.NewValidationError("amount", "amount must be greater than zero")
	}

	if NormalizePaymentMode(req.PaymentMode) == "" {
		return errors.NewValidationError("payment_mode", "payment mode is required")
	}

	if req.DiscountID != nil && *req.DiscountID <= 0 {
		return errors.NewValidationError("discount_id", "discount ID must be positive")
	}

	return nil
}

// NormalizePaymentMode trims and lower-cases a payment mode.
func NormalizePaymentMode(mode string) string {
	return strings.ToLower(strings.TrimSpace(mode))
}
