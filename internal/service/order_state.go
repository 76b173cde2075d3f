package service

import (
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// DecideOrderStatus maps the ledger total against the bill's grand total.
// closed is terminal: once current is closed it is returned unchanged.
//
// charged is compared at currency precision.
func DecideOrderStatus(totalPaid, charged, tolerance decimal.Decimal, current models.OrderStatus) (models.OrderStatus, bool) {
	if current == models.OrderStatusClosed {
		return models.OrderStatusClosed, false
	}

	charged = charged.Round(models.MoneyPlaces)

	switch {
	case totalPaid.Sub(charged).Abs().LessThanOrEqual(tolerance):
		return models.OrderStatusClosed, false
	case totalPaid.GreaterThan(charged.Add(tolerance)):
		return models.OrderStatusClosed, false
	case totalPaid.IsPositive():
		return models.OrderStatusPartiallyPaid, true
	default:
		return models.OrderStatusOpen, true
	}
}

// Summarize builds the payment summary returned after a payment.
func Summarize(bill models.BillBreakdown, totalPaid decimal.Decimal, status models.OrderStatus) models.PaymentSummary {
	rounded := bill.Rounded()
	return models.PaymentSummary{
		BillBreakdown:    rounded,
		TotalPaidSoFar:   totalPaid.Round(models.MoneyPlaces),
		RemainingBalance: decimal.Max(decimal.Zero, rounded.ChargedAmount.Sub(totalPaid)).Round(models.MoneyPlaces),
		PaymentStatus:    status,
		IsFullyPaid:      status == models.OrderStatusClosed,
	}
}

// amountMatches reports whether a submitted amount settles the bill within
// tolerance.
func amountMatches(amount, charged, tolerance decimal.Decimal) bool {
	return amount.Sub(charged.Round(models.MoneyPlaces)).Abs().LessThanOrEqual(tolerance)
}
