package service

import (
	"context"
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

// PromotionResolver picks the promo applied to a bill.
type PromotionResolver struct {
	now    func() time.Time
	logger *logging.LoggerV2
}

// NewPromotionResolver creates a resolver using the server's local clock.
func NewPromotionResolver(logger *logging.LoggerV2) *PromotionResolver {
	return &PromotionResolver{now: time.Now, logger: logger}
}

// WithClock replaces the clock used for "today". Intended for tests.
func (r *PromotionResolver) WithClock(now func() time.Time) *PromotionResolver {
	r.now = now
	return r
}

// ResolvePromo returns the requested promo when it is currently applicable for
// the tenant. Otherwise it falls back to the automatic promo, which may be
// nil. The returned promo has its EligibleItems loaded.
func (r *PromotionResolver) ResolvePromo(ctx context.Context, promos repository.PromoStore, tenantID int64, requestedID *int64) (*models.Promo, error) {
	today := r.now().Local()

	promo, err := r.requestedPromo(ctx, promos, tenantID, requestedID, today)
	if err != nil {
		return nil, err
	}

	if promo == nil {
		promo, err = promos.FindAutomaticPromo(ctx, tenantID, today)
		if err != nil {
			return nil, err
		}
		if promo == nil {
			return nil, nil
		}
	}

	items, err := r.ResolveEligibleItems(ctx, promos, promo.ID, tenantID)
	if err != nil {
		return nil, err
	}
	promo.EligibleItems = items

	r.logger.Debug("Promo resolved", logging.Fields{
		"tenant_id":      tenantID,
		"promo_id":       promo.ID,
		"eligible_items": len(items),
	})
	return promo, nil
}

// requestedPromo returns nil, without error, when no promo was requested or
// the requested one cannot be used today.
func (r *PromotionResolver) requestedPromo(ctx context.Context, promos repository.PromoStore, tenantID int64, requestedID *int64, today time.Time) (*models.Promo, error) {
	if requestedID == nil {
		return nil, nil
	}

	promo, err := promos.GetPromo(ctx, *requestedID, tenantID)
	if errors.Is(err, errors.ErrNotFound) {
		r.logger.Info("Requested promo not found, using automatic promo", logging.Fields{
			"tenant_id": tenantID,
			"promo_id":  *requestedID,
		})
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !promo.IsApplicable(tenantID, today) {
		r.logger.Info("Requested promo not applicable, using automatic promo", logging.Fields{
			"tenant_id": tenantID,
			"promo_id":  promo.ID,
			"is_active": promo.IsActive,
		})
		return nil, nil
	}
	return promo, nil
}

// ResolveEligibleItems returns the menu items a promo is limited to. An empty
// slice means the whole order is eligible.
func (r *PromotionResolver) ResolveEligibleItems(ctx context.Context, promos repository.PromoStore, promoID, tenantID int64) ([]int64, error) {
	return promos.ListEligibleItems(ctx, promoID, tenantID)
}
