package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
)

type fakeTenants struct {
	known   map[int64]bool
	pingErr error
}

func (f *fakeTenants) Exists(ctx context.Context, id int64) (bool, error) {
	return f.known[id], nil
}

func (f *fakeTenants) Ping(ctx context.Context) error {
	return f.pingErr
}

type fakePayments struct {
	err         error
	gotTenant   int64
	gotOrderID  int64
	gotPayment  *models.ProcessPaymentRequest
	gotCheckout *models.CheckoutRequest
}

func (f *fakePayments) Checkout(ctx context.Context, tenantID, orderID int64, req *models.CheckoutRequest) (*models.BillBreakdown, error) {
	f.gotTenant, f.gotOrderID, f.gotCheckout = tenantID, orderID, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BillBreakdown{
		Subtotal:      decimal.NewFromInt(100),
		TaxAmount:     decimal.NewFromInt(8),
		ChargedAmount: decimal.RequireFromString("118.80"),
	}, nil
}

func (f *fakePayments) ProcessPayment(ctx context.Context, tenantID int64, req *models.ProcessPaymentRequest) (*models.ProcessPaymentResult, error) {
	f.gotTenant, f.gotPayment = tenantID, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.ProcessPaymentResult{
		Payment: &models.Payment{ID: 1, OrderID: req.OrderID, TenantID: tenantID, Amount: req.Amount, PaymentMode: req.PaymentMode},
		Order:   &models.Order{ID: req.OrderID, TenantID: tenantID, Status: models.OrderStatusClosed},
		PaymentSummary: models.PaymentSummary{
			BillBreakdown:    models.BillBreakdown{ChargedAmount: req.Amount},
			TotalPaidSoFar:   req.Amount,
			RemainingBalance: decimal.Zero,
			PaymentStatus:    models.OrderStatusClosed,
			IsFullyPaid:      true,
		},
	}, nil
}

func (f *fakePayments) GetPayment(ctx context.Context, tenantID, paymentID int64) (*models.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Payment{ID: paymentID, TenantID: tenantID}, nil
}

func (f *fakePayments) ListOrderPayments(ctx context.Context, tenantID, orderID int64) (*service.OrderPayments, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.OrderPayments{OrderID: orderID, Payments: []*models.Payment{}, TotalPaid: decimal.Zero}, nil
}

func newTestRouter(payments *fakePayments, env string) (*gin.Engine, *fakeTenants) {
	gin.SetMode(gin.TestMode)

	tenants := &fakeTenants{known: map[int64]bool{1: true}}
	cfg := &config.Config{Server: config.ServerConfig{Environment: env}}
	h := NewHandlers(payments, tenants, cfg)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/live", h.Live)
	r.GET("/version", h.VersionInfo)

	p := r.Group("/payments", h.RequireTenant())
	p.POST("", h.ProcessPayment)
	p.POST("/checkout/:order_id", h.Checkout)
	p.GET("/order/:order_id", h.ListOrderPayments)
	p.GET("/:id", h.GetPayment)
	return r, tenants
}

func doRequest(r http.Handler, method, path, tenant, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tenant != "" {
		req.Header.Set(HeaderTenantID, tenant)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(&fakePayments{}, "production")

	w := doRequest(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "pos-service", resp["service"])
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestReady(t *testing.T) {
	r, tenants := newTestRouter(&fakePayments{}, "production")

	w := doRequest(r, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	tenants.pingErr = fmt.Errorf("connection refused")
	w = doRequest(r, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLiveAndVersion(t *testing.T) {
	r, _ := newTestRouter(&fakePayments{}, "production")

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/live", "", "").Code)

	w := doRequest(r, http.MethodGet, "/version", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pos-service", decodeBody(t, w)["service"])
}

func TestTenantMiddleware(t *testing.T) {
	r, _ := newTestRouter(&fakePayments{}, "production")

	cases := []struct {
		tenant string
		code   int
	}{
		{"", http.StatusBadRequest},
		{"abc", http.StatusBadRequest},
		{"-3", http.StatusBadRequest},
		{"2", http.StatusNotFound},
		{"1", http.StatusOK},
	}
	for _, tc := range cases {
		w := doRequest(r, http.MethodPost, "/payments/checkout/7", tc.tenant, "")
		assert.Equal(t, tc.code, w.Code, "tenant %q", tc.tenant)
		if tc.code != http.StatusOK {
			assert.Equal(t, "error", decodeBody(t, w)["status"])
		}
	}
}

func TestProcessPayment_Created(t *testing.T) {
	payments := &fakePayments{}
	r, _ := newTestRouter(payments, "production")

	w := doRequest(r, http.MethodPost, "/payments", "1",
		`{"order_id": 7, "amount": 118.80, "payment_mode": "cash", "promo_id": 2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, int64(1), payments.gotTenant)
	assert.Equal(t, int64(7), payments.gotPayment.OrderID)
	assert.Equal(t, "118.8", payments.gotPayment.Amount.String())
	require.NotNil(t, payments.gotPayment.PromoID)
	assert.Equal(t, int64(2), *payments.gotPayment.PromoID)

	resp := decodeBody(t, w)
	assert.Equal(t, "success", resp["status"])
	data := resp["data"].(map[string]interface{})
	assert.Contains(t, data, "payment")
	assert.Contains(t, data, "order")
	summary := data["payment_summary"].(map[string]interface{})
	assert.Equal(t, 118.8, summary["charged_amount"])
	assert.Equal(t, "closed", summary["payment_status"])
	assert.Equal(t, true, summary["is_fully_paid"])
	assert.Equal(t, float64(0), summary["remaining_balance"])
}

func TestProcessPayment_InvalidBody(t *testing.T) {
	r, _ := newTestRouter(&fakePayments{}, "production")

	w := doRequest(r, http.MethodPost, "/payments", "1", `{"order_id": "seven"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", decodeBody(t, w)["message"])
}

func TestProcessPayment_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", errors.NewValidationError("amount", "amount must be greater than zero"), http.StatusBadRequest},
		{"no items", errors.ErrNoActiveItems, http.StatusBadRequest},
		{"closed", errors.ErrOrderClosed, http.StatusBadRequest},
		{"tenant mismatch", errors.ErrTenantMismatch, http.StatusForbidden},
		{"not found", errors.NewNotFoundError("order", 7), http.StatusNotFound},
		{"persistence", &errors.PersistenceError{Op: "insert payment", Err: fmt.Errorf("deadlock")}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestRouter(&fakePayments{err: tc.err}, "production")
			w := doRequest(r, http.MethodPost, "/payments", "1", `{"order_id": 7, "amount": 1, "payment_mode": "cash"}`)
			assert.Equal(t, tc.code, w.Code)

			resp := decodeBody(t, w)
			assert.Equal(t, "error", resp["status"])
			assert.NotEmpty(t, resp["message"])
		})
	}
}

func TestProcessPayment_AmountMismatch(t *testing.T) {
	mismatch := &errors.AmountMismatchError{
		Expected:  decimal.RequireFromString("118.80"),
		Received:  decimal.RequireFromString("118.70"),
		Breakdown: models.BillBreakdown{Subtotal: decimal.NewFromInt(100), ChargedAmount: decimal.RequireFromString("118.80")},
	}
	r, _ := newTestRouter(&fakePayments{err: mismatch}, "production")

	w := doRequest(r, http.MethodPost, "/payments", "1", `{"order_id": 7, "amount": 118.70, "payment_mode": "cash"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody(t, w)
	assert.Equal(t, 118.8, resp["expected_amount"])
	assert.Equal(t, 118.7, resp["received_amount"])
	breakdown := resp["calculation_breakdown"].(map[string]interface{})
	assert.Equal(t, float64(100), breakdown["subtotal"])
}

func TestInternalErrorDetail(t *testing.T) {
	failure := &errors.PersistenceError{Op: "sum payments", Err: fmt.Errorf("connection reset")}

	r, _ := newTestRouter(&fakePayments{err: failure}, "production")
	resp := decodeBody(t, doRequest(r, http.MethodGet, "/payments/5", "1", ""))
	assert.Equal(t, "internal server error", resp["message"])
	assert.NotContains(t, resp, "error")

	r, _ = newTestRouter(&fakePayments{err: failure}, "development")
	resp = decodeBody(t, doRequest(r, http.MethodGet, "/payments/5", "1", ""))
	assert.Equal(t, "sum payments: connection reset", resp["error"])
}

func TestCheckout(t *testing.T) {
	payments := &fakePayments{}
	r, _ := newTestRouter(payments, "production")

	w := doRequest(r, http.MethodPost, "/payments/checkout/7", "1", `{"discount_id": 4}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, int64(7), payments.gotOrderID)
	require.NotNil(t, payments.gotCheckout.DiscountID)
	assert.Equal(t, int64(4), *payments.gotCheckout.DiscountID)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	summary := data["checkoutSummary"].(map[string]interface{})
	assert.Equal(t, 118.8, summary["charged_amount"])
}

func TestCheckout_EmptyBodyAndBadID(t *testing.T) {
	payments := &fakePayments{}
	r, _ := newTestRouter(payments, "production")

	w := doRequest(r, http.MethodPost, "/payments/checkout/7", "1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, payments.gotCheckout.PromoID)

	w = doRequest(r, http.MethodPost, "/payments/checkout/abc", "1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrderPaymentsAndGetPayment(t *testing.T) {
	r, _ := newTestRouter(&fakePayments{}, "production")

	w := doRequest(r, http.MethodGet, "/payments/order/7", "1", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["order_id"])
	assert.Equal(t, float64(0), data["total_paid"])

	w = doRequest(r, http.MethodGet, "/payments/3", "1", "")
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["id"])
}
