package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

const promoColumns = `
		SELECT id, tenant_id, name, is_active, start_date, end_date,
		       discount_type, discount_amount
		FROM promos`

// PostgresPromoRepository implements PromoStore.
type PostgresPromoRepository struct {
	db     DBTX
	logger *logging.LoggerV2
}

func NewPostgresPromoRepository(db DBTX, logger *logging.LoggerV2) *PostgresPromoRepository {
	return &PostgresPromoRepository{db: db, logger: logger}
}

// GetPromo fetches a promo owned by tenantID regardless of whether it is
// currently applicable.
func (r *PostgresPromoRepository) GetPromo(ctx context.Context, id, tenantID int64) (*models.Promo, error) {
	query := promoColumns + ` WHERE id = $1 AND tenant_id = $2`

	promo, err := scanPromo(r.db.QueryRowContext(ctx, query, id, tenantID))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("promo", id)
	}
	if err != nil {
		return nil, errors.Persistence("get promo", err)
	}
	return promo, nil
}

// FindAutomaticPromo returns the active, in-range promo with the lowest id.
// today is compared as a calendar date.
func (r *PostgresPromoRepository) FindAutomaticPromo(ctx context.Context, tenantID int64, today time.Time) (*models.Promo, error) {
	query := promoColumns + `
		WHERE tenant_id = $1 AND is_active = TRUE
		  AND start_date <= $2::date AND end_date >= $2::date
		ORDER BY id ASC
		LIMIT 1`

	promo, err := scanPromo(r.db.QueryRowContext(ctx, query, tenantID, today.Format("2006-01-02")))
	if err == sql.ErrNoRows {
		r.logger.Debug("No automatic promo applies", logging.Fields{"tenant_id": tenantID})
		return nil, nil
	}
	if err != nil {
		return nil, errors.Persistence("find automatic promo", err)
	}
	return promo, nil
}

// ListEligibleItems returns the menu item ids a promo is restricted to. An
// empty result means the promo covers the whole order.
func (r *PostgresPromoRepository) ListEligibleItems(ctx context.Context, promoID, tenantID int64) ([]int64, error) {
	query := `
		SELECT menu_item_id
		FROM promo_items
		WHERE promo_id = $1 AND tenant_id = $2
		ORDER BY menu_item_id
	`

	rows, err := r.db.QueryContext(ctx, query, promoID, tenantID)
	if err != nil {
		return nil, errors.Persistence("list promo items", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Persistence("scan promo item", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Persistence("iterate promo items", err)
	}
	return ids, nil
}

func scanPromo(row rowScanner) (*models.Promo, error) {
	var p models.Promo
	if err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.Name,
		&p.IsActive,
		&p.StartDate,
		&p.EndDate,
		&p.DiscountType,
		&p.DiscountAmount,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
