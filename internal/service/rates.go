package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

// RateLookup resolves a tenant's tax and service-charge rates as fractions.
// Missing configuration falls back to the pricing defaults.
type RateLookup struct {
	store    repository.RateStore
	cache    repository.RateCache
	defaults config.PricingConfig
	metrics  *metrics.Collectors
	logger   *logging.LoggerV2
}

// NewRateLookup creates a lookup. cache may be nil.
func NewRateLookup(store repository.RateStore, cache repository.RateCache, defaults config.PricingConfig, logger *logging.LoggerV2) *RateLookup {
	return &RateLookup{
		store:    store,
		cache:    cache,
		defaults: defaults,
		logger:   logger,
	}
}

// WithMetrics records cache hits and misses on m.
func (l *RateLookup) WithMetrics(m *metrics.Collectors) *RateLookup {
	l.metrics = m
	return l
}

// Rates returns the rates used for the tenant's bills.
func (l *RateLookup) Rates(ctx context.Context, tenantID int64) (models.TenantRates, error) {
	if l.cache != nil {
		cached, err := l.cache.Get(ctx, tenantID)
		switch {
		case err != nil:
			l.logger.Warn("Rate cache unavailable", logging.Fields{"tenant_id": tenantID, "error": err.Error()})
			l.countCache("error")
		case cached != nil:
			l.countCache("hit")
			return *cached, nil
		default:
			l.countCache("miss")
		}
	}

	tax, err := l.store.GetSalesTaxRate(ctx, tenantID)
	if err != nil {
		return models.TenantRates{}, err
	}
	svc, err := l.store.GetServiceChargeRate(ctx, tenantID)
	if err != nil {
		return models.TenantRates{}, err
	}

	rates := models.TenantRates{
		TaxRate:           fraction(tax, l.defaults.DefaultTaxRate),
		ServiceChargeRate: fraction(svc, l.defaults.DefaultServiceChargeRate),
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, tenantID, &rates); err != nil {
			l.logger.Warn("Failed to cache rates", logging.Fields{"tenant_id": tenantID, "error": err.Error()})
		}
	}
	return rates, nil
}

// fraction converts a stored percentage to a fraction, or returns fallback
// when none is configured.
func fraction(percentage *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if percentage == nil {
		return fallback
	}
	return percentage.Div(hundred)
}

func (l *RateLookup) countCache(result string) {
	if l.metrics != nil {
		l.metrics.RateCacheResults.WithLabelValues(result).Inc()
	}
}
