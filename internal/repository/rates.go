package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
)

// PostgresRateRepository implements RateStore over the taxes and
// service_charges tables. Both store percentages.
type PostgresRateRepository struct {
	db     DBTX
	logger *logging.LoggerV2
}

func NewPostgresRateRepository(db DBTX, logger *logging.LoggerV2) *PostgresRateRepository {
	return &PostgresRateRepository{db: db, logger: logger}
}

func (r *PostgresRateRepository) GetSalesTaxRate(ctx context.Context, tenantID int64) (*decimal.Decimal, error) {
	return r.activeRate(ctx, "sales tax", `
		SELECT rate FROM taxes
		WHERE tenant_id = $1 AND is_active = TRUE
		ORDER BY id ASC
		LIMIT 1`, tenantID)
}

func (r *PostgresRateRepository) GetServiceChargeRate(ctx context.Context, tenantID int64) (*decimal.Decimal, error) {
	return r.activeRate(ctx, "service charge", `
		SELECT rate FROM service_charges
		WHERE tenant_id = $1 AND is_active = TRUE
		ORDER BY id ASC
		LIMIT 1`, tenantID)
}

func (r *PostgresRateRepository) activeRate(ctx context.Context, kind, query string, tenantID int64) (*decimal.Decimal, error) {
	var rate decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&rate)
	if err == sql.ErrNoRows {
		r.logger.Debug("No rate configured", logging.Fields{"kind": kind, "tenant_id": tenantID})
		return nil, nil
	}
	if err != nil {
		return nil, errors.Persistence("get "+kind+" rate", err)
	}
	return &rate, nil
}
