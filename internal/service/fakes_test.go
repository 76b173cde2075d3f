package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(v int64) *int64 {
	return &v
}

func item(id, menuItemID int64, total string) models.OrderLineItem {
	return models.OrderLineItem{
		ID:         id,
		MenuItemID: menuItemID,
		Quantity:   1,
		UnitPrice:  dec(total),
		TotalPrice: dec(total),
		Status:     models.LineItemStatusActive,
	}
}

type fakeOrderStore struct {
	orders  map[int64]*models.Order
	items   map[int64][]models.OrderLineItem
	updates []models.OrderBillFields
	locked  int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: make(map[int64]*models.Order),
		items:  make(map[int64][]models.OrderLineItem),
	}
}

func (s *fakeOrderStore) FindOrder(ctx context.Context, id, tenantID int64) (*models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, errors.NewNotFoundError("order", id)
	}
	if o.TenantID != tenantID {
		return nil, errors.ErrTenantMismatch
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) FindOrderForUpdate(ctx context.Context, id, tenantID int64) (*models.Order, error) {
	s.locked++
	return s.FindOrder(ctx, id, tenantID)
}

func (s *fakeOrderStore) FindActiveLineItems(ctx context.Context, orderID, tenantID int64) ([]models.OrderLineItem, error) {
	var out []models.OrderLineItem
	for _, it := range s.items[orderID] {
		if it.Status != models.LineItemStatusCancelled {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) UpdateOrderBillFields(ctx context.Context, id, tenantID int64, fields models.OrderBillFields) (*models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, errors.NewNotFoundError("order", id)
	}
	s.updates = append(s.updates, fields)
	fields.Apply(o)
	cp := *o
	return &cp, nil
}

type fakeLedger struct {
	payments []*models.Payment
}

func (l *fakeLedger) Insert(ctx context.Context, p models.NewPayment) (*models.Payment, error) {
	payment := &models.Payment{
		ID:            int64(len(l.payments) + 1),
		OrderID:       p.OrderID,
		TenantID:      p.TenantID,
		Amount:        p.Amount,
		PaymentMode:   p.PaymentMode,
		TransactionID: p.TransactionID,
		CreatedAt:     time.Now(),
	}
	l.payments = append(l.payments, payment)
	return payment, nil
}

func (l *fakeLedger) TotalPaid(ctx context.Context, orderID, tenantID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range l.payments {
		if p.OrderID == orderID && p.TenantID == tenantID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (l *fakeLedger) GetByID(ctx context.Context, id, tenantID int64) (*models.Payment, error) {
	for _, p := range l.payments {
		if p.ID == id && p.TenantID == tenantID {
			return p, nil
		}
	}
	return nil, errors.NewNotFoundError("payment", id)
}

func (l *fakeLedger) ListByOrder(ctx context.Context, orderID, tenantID int64) ([]*models.Payment, error) {
	out := make([]*models.Payment, 0)
	for _, p := range l.payments {
		if p.OrderID == orderID && p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeDiscountStore map[int64]*models.Discount

func (s fakeDiscountStore) GetDiscount(ctx context.Context, id, tenantID int64) (*models.Discount, error) {
	d, ok := s[id]
	if !ok || d.TenantID != tenantID {
		return nil, errors.NewNotFoundError("discount", id)
	}
	return d, nil
}

type fakePromoStore struct {
	promos   map[int64]*models.Promo
	eligible map[int64][]int64
}

func newFakePromoStore(promos ...*models.Promo) *fakePromoStore {
	s := &fakePromoStore{promos: make(map[int64]*models.Promo), eligible: make(map[int64][]int64)}
	for _, p := range promos {
		s.promos[p.ID] = p
	}
	return s
}

func (s *fakePromoStore) GetPromo(ctx context.Context, id, tenantID int64) (*models.Promo, error) {
	p, ok := s.promos[id]
	if !ok || p.TenantID != tenantID {
		return nil, errors.NewNotFoundError("promo", id)
	}
	cp := *p
	return &cp, nil
}

func (s *fakePromoStore) FindAutomaticPromo(ctx context.Context, tenantID int64, today time.Time) (*models.Promo, error) {
	ids := make([]int64, 0, len(s.promos))
	for id := range s.promos {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if p := s.promos[id]; p.IsApplicable(tenantID, today) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakePromoStore) ListEligibleItems(ctx context.Context, promoID, tenantID int64) ([]int64, error) {
	return append([]int64{}, s.eligible[promoID]...), nil
}

type fakeRateStore struct {
	tax, svc *decimal.Decimal
	calls    int
}

func (s *fakeRateStore) GetSalesTaxRate(ctx context.Context, tenantID int64) (*decimal.Decimal, error) {
	s.calls++
	return s.tax, nil
}

func (s *fakeRateStore) GetServiceChargeRate(ctx context.Context, tenantID int64) (*decimal.Decimal, error) {
	return s.svc, nil
}

type fakeRateCache struct {
	rates map[int64]models.TenantRates
}

func (c *fakeRateCache) Get(ctx context.Context, tenantID int64) (*models.TenantRates, error) {
	r, ok := c.rates[tenantID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (c *fakeRateCache) Set(ctx context.Context, tenantID int64, rates *models.TenantRates) error {
	c.rates[tenantID] = *rates
	return nil
}

func (c *fakeRateCache) Delete(ctx context.Context, tenantID int64) error {
	delete(c.rates, tenantID)
	return nil
}

// fakeTransactor hands fn the same stores and counts commits and rollbacks.
type fakeTransactor struct {
	stores    repository.Stores
	commits   int
	rollbacks int
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	if err := fn(ctx, t.stores); err != nil {
		t.rollbacks++
		return err
	}
	t.commits++
	return nil
}

type recordingPublisher struct {
	recorded []int64
	closed   []int64
}

func (p *recordingPublisher) PublishPaymentRecorded(ctx context.Context, payment *models.Payment, summary models.PaymentSummary) error {
	p.recorded = append(p.recorded, payment.ID)
	return nil
}

func (p *recordingPublisher) PublishOrderClosed(ctx context.Context, order *models.Order) error {
	p.closed = append(p.closed, order.ID)
	return nil
}
