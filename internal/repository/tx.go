package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
)

// NewPostgresStores binds every transactional store to db.
func NewPostgresStores(db DBTX, logger *logging.LoggerV2) Stores {
	return Stores{
		Orders:    NewPostgresOrderRepository(db, logger),
		Payments:  NewPostgresPaymentRepository(db, logger),
		Discounts: NewPostgresDiscountRepository(db, logger),
		Promos:    NewPostgresPromoRepository(db, logger),
	}
}

// PostgresTransactor implements Transactor on a *sql.DB.
type PostgresTransactor struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

func NewPostgresTransactor(db *sql.DB, logger *logging.LoggerV2) *PostgresTransactor {
	return &PostgresTransactor{db: db, logger: logger}
}

// WithinTx begins a transaction, runs fn, and commits. On error or panic the
// transaction is rolled back and the original error is returned.
func (t *PostgresTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Persistence("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				t.logger.Error("Failed to roll back transaction", logging.Fields{
					"error":          rbErr.Error(),
					"original_error": err.Error(),
				})
			}
		}
	}()

	if err = fn(ctx, NewPostgresStores(tx, t.logger)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return errors.Persistence("commit transaction", fmt.Errorf("commit: %w", err))
	}
	return nil
}
