package models

import "github.com/shopspring/decimal"

// BillBreakdown is the itemized result of a bill computation. Every
// intermediate step is exposed so clients can render the calculation.
type BillBreakdown struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	PromoEligibleBase decimal.Decimal `json:"promo_eligible_base"`
	PromoAmount       decimal.Decimal `json:"promo_amount"`
	TotalReduction    decimal.Decimal `json:"total_reduction"`
	AdjustedAmount    decimal.Decimal `json:"adjusted_amount"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	ServiceChargeBase decimal.Decimal `json:"service_charge_base"`
	ServiceChargeRate decimal.Decimal `json:"service_charge_rate"`
	ServiceCharge     decimal.Decimal `json:"service_charge"`
	ChargedAmount     decimal.Decimal `json:"charged_amount"`
}

// MoneyPlaces is the number of decimal places used for display and comparison.
const MoneyPlaces = 2

// Rounded returns a copy with every monetary value rounded half away from zero
// to two places. Rates are left untouched.
func (b BillBreakdown) Rounded() BillBreakdown {
	r := b
	r.Subtotal = b.Subtotal.Round(MoneyPlaces)
	r.DiscountAmount = b.DiscountAmount.Round(MoneyPlaces)
	r.PromoEligibleBase = b.PromoEligibleBase.Round(MoneyPlaces)
	r.PromoAmount = b.PromoAmount.Round(MoneyPlaces)
	r.TotalReduction = b.TotalReduction.Round(MoneyPlaces)
	r.AdjustedAmount = b.AdjustedAmount.Round(MoneyPlaces)
	r.TaxAmount = b.TaxAmount.Round(MoneyPlaces)
	r.ServiceChargeBase = b.ServiceChargeBase.Round(MoneyPlaces)
	r.ServiceCharge = b.ServiceCharge.Round(MoneyPlaces)
	r.ChargedAmount = b.ChargedAmount.Round(MoneyPlaces)
	return r
}

// TenantRates are the resolved rate fractions used for one bill.
type TenantRates struct {
	TaxRate           decimal.Decimal `json:"tax_rate"`
	ServiceChargeRate decimal.Decimal `json:"service_charge_rate"`
}
