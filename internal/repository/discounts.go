package repository

import (
	"context"
	"database/sql"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// PostgresDiscountRepository implements DiscountStore.
type PostgresDiscountRepository struct {
	db     DBTX
	logger *logging.LoggerV2
}

func NewPostgresDiscountRepository(db DBTX, logger *logging.LoggerV2) *PostgresDiscountRepository {
	return &PostgresDiscountRepository{db: db, logger: logger}
}

func (r *PostgresDiscountRepository) GetDiscount(ctx context.Context, id, tenantID int64) (*models.Discount, error) {
	query := `SELECT id, tenant_id, name, amount FROM discounts WHERE id = $1 AND tenant_id = $2`

	var d models.Discount
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(&d.ID, &d.TenantID, &d.Name, &d.Percentage)
	if err == sql.ErrNoRows {
		r.logger.Info("Discount not found", logging.Fields{"discount_id": id, "tenant_id": tenantID})
		return nil, errors.NewNotFoundError("discount", id)
	}
	if err != nil {
		return nil, errors.Persistence("get discount", err)
	}
	return &d, nil
}
