package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromoDiscountType selects how a promo's DiscountAmount is interpreted.
type PromoDiscountType string

const (
	PromoDiscountPercentage  PromoDiscountType = "percentage"
	PromoDiscountFixedAmount PromoDiscountType = "fixed_amount"
)

// Discount is a tenant-scoped named percentage reduction (0-100).
type Discount struct {
	ID         int64           `json:"id"`
	TenantID   int64           `json:"tenant_id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Promo is a tenant-scoped promotional campaign. StartDate and EndDate are
// inclusive calendar days. An empty EligibleItems set means the promo applies
// to the whole order.
type Promo struct {
	ID             int64             `json:"id"`
	TenantID       int64             `json:"tenant_id"`
	Name           string            `json:"name"`
	IsActive       bool              `json:"is_active"`
	StartDate      time.Time         `json:"start_date"`
	EndDate        time.Time         `json:"end_date"`
	DiscountType   PromoDiscountType `json:"discount_type"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	EligibleItems  []int64           `json:"eligible_items"`
}

// IsApplicable reports whether the promo can be used by tenantID on the
// calendar day of today.
func (p *Promo) IsApplicable(tenantID int64, today time.Time) bool {
	if p == nil || p.TenantID != tenantID || !p.IsActive {
		return false
	}
	day := CalendarDay(today)
	return CalendarDay(p.StartDate) <= day && day <= CalendarDay(p.EndDate)
}

// RestrictsItems reports whether the promo only covers a subset of menu items.
func (p *Promo) RestrictsItems() bool {
	return len(p.EligibleItems) > 0
}

// CalendarDay flattens t to a comparable yyyymmdd integer in t's own location.
func CalendarDay(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
