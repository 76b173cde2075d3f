package service

import (
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

var hundred = decimal.NewFromInt(100)

// ComputeBill applies discount, promo, tax and service charge to the active
// line items, in that order. Values are kept at full precision; callers round
// with BillBreakdown.Rounded when displaying or persisting.
//
// Cancelled items are ignored. If nothing billable remains ErrNoActiveItems
// is returned.
func ComputeBill(items []models.OrderLineItem, discount *models.Discount, promo *models.Promo, rates models.TenantRates) (models.BillBreakdown, error) {
	var b models.BillBreakdown

	billable := 0
	for _, item := range items {
		if !item.IsBillable() {
			continue
		}
		billable++
		b.Subtotal = b.Subtotal.Add(item.TotalPrice)
	}
	if billable == 0 {
		return models.BillBreakdown{}, errors.ErrNoActiveItems
	}

	if discount != nil {
		b.DiscountAmount = clamp(b.Subtotal.Mul(discount.Percentage).Div(hundred), b.Subtotal)
	}

	if promo != nil {
		b.PromoEligibleBase = promoEligibleBase(items, promo, b.Subtotal)
		if b.PromoEligibleBase.IsPositive() {
			var amount decimal.Decimal
			switch promo.DiscountType {
			case models.PromoDiscountPercentage:
				amount = b.PromoEligibleBase.Mul(promo.DiscountAmount).Div(hundred)
			default:
				amount = promo.DiscountAmount
			}
			amount = clamp(amount, b.PromoEligibleBase)
			b.PromoAmount = clamp(amount, b.Subtotal.Sub(b.DiscountAmount))
		}
	}

	b.TotalReduction = b.DiscountAmount.Add(b.PromoAmount)
	b.AdjustedAmount = b.Subtotal.Sub(b.TotalReduction)

	b.TaxRate = rates.TaxRate
	b.TaxAmount = b.AdjustedAmount.Mul(rates.TaxRate)

	b.ServiceChargeBase = b.AdjustedAmount.Add(b.TaxAmount)
	b.ServiceChargeRate = rates.ServiceChargeRate
	b.ServiceCharge = b.ServiceChargeBase.Mul(rates.ServiceChargeRate)

	b.ChargedAmount = b.AdjustedAmount.Add(b.TaxAmount).Add(b.ServiceCharge)

	return b, nil
}

func promoEligibleBase(items []models.OrderLineItem, promo *models.Promo, subtotal decimal.Decimal) decimal.Decimal {
	if !promo.RestrictsItems() {
		return subtotal
	}

	eligible := make(map[int64]struct{}, len(promo.EligibleItems))
	for _, id := range promo.EligibleItems {
		eligible[id] = struct{}{}
	}

	base := decimal.Zero
	for _, item := range items {
		if !item.IsBillable() {
			continue
		}
		if _, ok := eligible[item.MenuItemID]; ok {
			base = base.Add(item.TotalPrice)
		}
	}
	return base
}

// clamp bounds v to [0, ceiling].
func clamp(v, ceiling decimal.Decimal) decimal.Decimal {
	if ceiling.IsNegative() {
		ceiling = decimal.Zero
	}
	return decimal.Max(decimal.Zero, decimal.Min(v, ceiling))
}
