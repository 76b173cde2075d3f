package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// PostgresPaymentRepository implements PaymentLedger. Rows are only ever
// inserted and read.
type PostgresPaymentRepository struct {
	db     DBTX
	logger *logging.LoggerV2
}

func NewPostgresPaymentRepository(db DBTX, logger *logging.LoggerV2) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db, logger: logger}
}

// Insert appends a payment row.
func (r *PostgresPaymentRepository) Insert(ctx context.Context, p models.NewPayment) (*models.Payment, error) {
	r.logger.Debug("Inserting payment", logging.Fields{
		"order_id":     p.OrderID,
		"tenant_id":    p.TenantID,
		"payment_mode": p.PaymentMode,
	})

	query := `
		INSERT INTO payments (order_id, tenant_id, amount, payment_mode, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	payment := &models.Payment{
		OrderID:       p.OrderID,
		TenantID:      p.TenantID,
		Amount:        p.Amount,
		PaymentMode:   p.PaymentMode,
		TransactionID: p.TransactionID,
	}

	err := r.db.QueryRowContext(ctx, query,
		p.OrderID,
		p.TenantID,
		p.Amount,
		p.PaymentMode,
		nullString(p.TransactionID),
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert payment", logging.Fields{
			"order_id": p.OrderID,
			"error":    err.Error(),
		})
		return nil, errors.Persistence("insert payment", err)
	}

	r.logger.Info("Payment recorded", logging.Fields{
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
		"amount":     payment.Amount.StringFixed(2),
	})

	return payment, nil
}

// TotalPaid sums every payment recorded for the order.
func (r *PostgresPaymentRepository) TotalPaid(ctx context.Context, orderID, tenantID int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE order_id = $1 AND tenant_id = $2`

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, orderID, tenantID).Scan(&total); err != nil {
		return decimal.Zero, errors.Persistence("sum payments", err)
	}
	return total, nil
}

// GetByID retrieves one payment.
func (r *PostgresPaymentRepository) GetByID(ctx context.Context, id, tenantID int64) (*models.Payment, error) {
	query := `
		SELECT id, order_id, tenant_id, amount, payment_mode, transaction_id, created_at
		FROM payments
		WHERE id = $1 AND tenant_id = $2
	`

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, id, tenantID))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("payment", id)
	}
	if err != nil {
		return nil, errors.Persistence("get payment", err)
	}
	return payment, nil
}

// ListByOrder returns the ledger for one order, oldest first.
func (r *PostgresPaymentRepository) ListByOrder(ctx context.Context, orderID, tenantID int64) ([]*models.Payment, error) {
	query := `
		SELECT id, order_id, tenant_id, amount, payment_mode, transaction_id, created_at
		FROM payments
		WHERE order_id = $1 AND tenant_id = $2
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID, tenantID)
	if err != nil {
		return nil, errors.Persistence("list payments", err)
	}
	defer rows.Close()

	payments := make([]*models.Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, errors.Persistence("scan payment", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Persistence("iterate payments", err)
	}
	return payments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	var txnID sql.NullString
	if err := row.Scan(&p.ID, &p.OrderID, &p.TenantID, &p.Amount, &p.PaymentMode, &txnID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if txnID.Valid {
		p.TransactionID = txnID.String
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
