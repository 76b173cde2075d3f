package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

const orderColumns = `
		SELECT id, tenant_id, discount_id, promo_id,
		       subtotal, discount_amount, promo_amount, tax_amount,
		       service_charge, charged_amount, order_status, is_open,
		       created_at, updated_at
		FROM orders
		WHERE id = $1`

// PostgresOrderRepository implements OrderStore using PostgreSQL.
type PostgresOrderRepository struct {
	db     DBTX
	logger *logging.LoggerV2
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db DBTX, logger *logging.LoggerV2) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logger,
	}
}

// FindOrder retrieves an order by id. It returns a NotFoundError when no order
// exists and ErrTenantMismatch when it belongs to another tenant.
func (r *PostgresOrderRepository) FindOrder(ctx context.Context, id, tenantID int64) (*models.Order, error) {
	return r.findOrder(ctx, id, tenantID, orderColumns)
}

// FindOrderForUpdate locks the order row for the rest of the transaction.
func (r *PostgresOrderRepository) FindOrderForUpdate(ctx context.Context, id, tenantID int64) (*models.Order, error) {
	return r.findOrder(ctx, id, tenantID, orderColumns+" FOR UPDATE")
}

func (r *PostgresOrderRepository) findOrder(ctx context.Context, id, tenantID int64, query string) (*models.Order, error) {
	r.logger.Debug("Fetching order by ID", logging.Fields{"order_id": id, "tenant_id": tenantID})

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("order", id)
	}
	if err != nil {
		r.logger.Error("Failed to fetch order", logging.Fields{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, errors.Persistence("find order", err)
	}

	if order.TenantID != tenantID {
		r.logger.Info("Order requested by foreign tenant", logging.Fields{
			"order_id":     id,
			"tenant_id":    tenantID,
			"owner_tenant": order.TenantID,
		})
		return nil, errors.ErrTenantMismatch
	}

	return order, nil
}

// FindActiveLineItems returns the order's items that are not cancelled.
func (r *PostgresOrderRepository) FindActiveLineItems(ctx context.Context, orderID, tenantID int64) ([]models.OrderLineItem, error) {
	r.logger.Debug("Fetching active line items", logging.Fields{"order_id": orderID, "tenant_id": tenantID})

	query := `
		SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity,
		       oi.unit_price, oi.total_price, oi.status, oi.created_at
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.order_id = $1 AND o.tenant_id = $2 AND oi.status <> $3
		ORDER BY oi.id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID, tenantID, models.LineItemStatusCancelled)
	if err != nil {
		return nil, errors.Persistence("find active line items", err)
	}
	defer rows.Close()

	items := make([]models.OrderLineItem, 0)
	for rows.Next() {
		var item models.OrderLineItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.MenuItemID,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.Status,
			&item.CreatedAt,
		); err != nil {
			return nil, errors.Persistence("scan line item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Persistence("iterate line items", err)
	}

	return items, nil
}

// UpdateOrderBillFields overwrites the cached bill and status in one statement.
func (r *PostgresOrderRepository) UpdateOrderBillFields(ctx context.Context, id, tenantID int64, fields models.OrderBillFields) (*models.Order, error) {
	r.logger.Debug("Updating order bill fields", logging.Fields{
		"order_id":   id,
		"tenant_id":  tenantID,
		"new_status": fields.Status,
	})

	bill := fields.Bill.Rounded()

	query := `
		UPDATE orders
		SET subtotal = $3, discount_amount = $4, promo_amount = $5,
		    tax_amount = $6, service_charge = $7, charged_amount = $8,
		    order_status = $9, is_open = $10, discount_id = $11, promo_id = $12,
		    updated_at = $13
		WHERE id = $1 AND tenant_id = $2
		RETURNING id, tenant_id, discount_id, promo_id,
		          subtotal, discount_amount, promo_amount, tax_amount,
		          service_charge, charged_amount, order_status, is_open,
		          created_at, updated_at
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query,
		id,
		tenantID,
		bill.Subtotal,
		bill.DiscountAmount,
		bill.PromoAmount,
		bill.TaxAmount,
		bill.ServiceCharge,
		bill.ChargedAmount,
		fields.Status,
		fields.IsOpen,
		nullInt64(fields.DiscountID),
		nullInt64(fields.PromoID),
		time.Now(),
	))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("order", id)
	}
	if err != nil {
		r.logger.Error("Failed to update order bill fields", logging.Fields{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, errors.Persistence("update order bill fields", err)
	}

	r.logger.Info("Order bill fields updated", logging.Fields{
		"order_id":       id,
		"order_status":   order.Status,
		"charged_amount": order.ChargedAmount.StringFixed(2),
	})

	return order, nil
}

func scanOrder(row *sql.Row) (*models.Order, error) {
	var order models.Order
	var discountID, promoID sql.NullInt64
	var subtotal, discountAmount, promoAmount, taxAmount, serviceCharge, chargedAmount decimal.NullDecimal
	var status sql.NullString

	err := row.Scan(
		&order.ID,
		&order.TenantID,
		&discountID,
		&promoID,
		&subtotal,
		&discountAmount,
		&promoAmount,
		&taxAmount,
		&serviceCharge,
		&chargedAmount,
		&status,
		&order.IsOpen,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if discountID.Valid {
		order.DiscountID = &discountID.Int64
	}
	if promoID.Valid {
		order.PromoID = &promoID.Int64
	}
	order.Subtotal = subtotal.Decimal
	order.DiscountAmount = discountAmount.Decimal
	order.PromoAmount = promoAmount.Decimal
	order.TaxAmount = taxAmount.Decimal
	order.ServiceCharge = serviceCharge.Decimal
	order.ChargedAmount = chargedAmount.Decimal

	order.Status = models.OrderStatusOpen
	if status.Valid && status.String != "" {
		order.Status = models.OrderStatus(status.String)
	}

	return &order, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
