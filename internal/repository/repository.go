package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every store can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// OrderStore reads orders and their line items and writes the cached bill fields.
type OrderStore interface {
	FindOrder(ctx context.Context, id, tenantID int64) (*models.Order, error)
	// FindOrderForUpdate is FindOrder with a row lock held until the
	// surrounding transaction ends.
	FindOrderForUpdate(ctx context.Context, id, tenantID int64) (*models.Order, error)
	FindActiveLineItems(ctx context.Context, orderID, tenantID int64) ([]models.OrderLineItem, error)
	UpdateOrderBillFields(ctx context.Context, id, tenantID int64, fields models.OrderBillFields) (*models.Order, error)
}

// PaymentLedger is the append-only record of money received against orders.
type PaymentLedger interface {
	Insert(ctx context.Context, p models.NewPayment) (*models.Payment, error)
	TotalPaid(ctx context.Context, orderID, tenantID int64) (decimal.Decimal, error)
	GetByID(ctx context.Context, id, tenantID int64) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID, tenantID int64) ([]*models.Payment, error)
}

// DiscountStore resolves named discounts.
type DiscountStore interface {
	GetDiscount(ctx context.Context, id, tenantID int64) (*models.Discount, error)
}

// PromoStore resolves promos and their eligible menu items.
type PromoStore interface {
	GetPromo(ctx context.Context, id, tenantID int64) (*models.Promo, error)
	// FindAutomaticPromo returns the lowest-id promo applicable on today, or nil.
	FindAutomaticPromo(ctx context.Context, tenantID int64, today time.Time) (*models.Promo, error)
	ListEligibleItems(ctx context.Context, promoID, tenantID int64) ([]int64, error)
}

// RateStore returns configured rates as percentages (8 means 8%), or nil
// when the tenant has none configured.
type RateStore interface {
	GetSalesTaxRate(ctx context.Context, tenantID int64) (*decimal.Decimal, error)
	GetServiceChargeRate(ctx context.Context, tenantID int64) (*decimal.Decimal, error)
}

// TenantStore checks tenant existence for request scoping.
type TenantStore interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Ping(ctx context.Context) error
}

// RateCache caches resolved tenant rates.
type RateCache interface {
	Get(ctx context.Context, tenantID int64) (*models.TenantRates, error)
	Set(ctx context.Context, tenantID int64, rates *models.TenantRates) error
	Delete(ctx context.Context, tenantID int64) error
}

// Stores bundles the stores a checkout or payment needs, bound to one DBTX.
type Stores struct {
	Orders    OrderStore
	Payments  PaymentLedger
	Discounts DiscountStore
	Promos    PromoStore
}

// Transactor runs fn inside a single database transaction. fn receives stores
// bound to that transaction. Any error from fn rolls the transaction back and
// is returned unchanged.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
