package repository

import (
	"context"
	"database/sql"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
)

// PostgresTenantRepository implements TenantStore.
type PostgresTenantRepository struct {
	db *sql.DB
}

func NewPostgresTenantRepository(db *sql.DB) *PostgresTenantRepository {
	return &PostgresTenantRepository{db: db}
}

func (r *PostgresTenantRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tenants WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, errors.Persistence("check tenant", err)
	}
	return exists, nil
}

func (r *PostgresTenantRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
