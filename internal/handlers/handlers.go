package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
)

// PaymentService is the part of service.PaymentService the HTTP layer uses.
type PaymentService interface {
	Checkout(ctx context.Context, tenantID, orderID int64, req *models.CheckoutRequest) (*models.BillBreakdown, error)
	ProcessPayment(ctx context.Context, tenantID int64, req *models.ProcessPaymentRequest) (*models.ProcessPaymentResult, error)
	GetPayment(ctx context.Context, tenantID, paymentID int64) (*models.Payment, error)
	ListOrderPayments(ctx context.Context, tenantID, orderID int64) (*service.OrderPayments, error)
}

var _ PaymentService = (*service.PaymentService)(nil)

// Handlers holds all HTTP handlers for the POS service.
type Handlers struct {
	payments PaymentService
	tenants  repository.TenantStore
	config   *config.Config
	logger   *logging.LoggerV2
}

// NewHandlers creates a new handlers instance.
func NewHandlers(payments PaymentService, tenants repository.TenantStore, cfg *config.Config) *Handlers {
	return &Handlers{
		payments: payments,
		tenants:  tenants,
		config:   cfg,
		logger:   logging.NewLoggerV2("handlers"),
	}
}

func respondSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{
		"status": "success",
		"data":   data,
	})
}

func respondError(c *gin.Context, code int, message string, extra gin.H) {
	body := gin.H{
		"status":  "error",
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(code, body)
}

// handleError maps the error taxonomy onto HTTP responses.
func (h *Handlers) handleError(c *gin.Context, err error) {
	var (
		validationErr *errors.ValidationError
		mismatchErr   *errors.AmountMismatchError
	)

	switch {
	case errors.As(err, &validationErr):
		respondError(c, http.StatusBadRequest, validationErr.Message, gin.H{
			"field":   validationErr.Field,
			"details": validationErr.Details,
		})
	case errors.As(err, &mismatchErr):
		respondError(c, http.StatusBadRequest, mismatchErr.Error(), gin.H{
			"expected_amount":       mismatchErr.Expected,
			"received_amount":       mismatchErr.Received,
			"calculation_breakdown": mismatchErr.Breakdown,
		})
	case errors.Is(err, errors.ErrNoActiveItems), errors.Is(err, errors.ErrOrderClosed):
		respondError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, errors.ErrTenantMismatch):
		respondError(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, errors.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error(), nil)
	default:
		h.logger.Error("Request failed", logging.Fields{
			"path":       c.FullPath(),
			"request_id": logging.RequestIDFromContext(c.Request.Context()),
			"error":      err.Error(),
		})
		var extra gin.H
		if h.config != nil && h.config.Server.IsDevelopment() {
			extra = gin.H{"error": err.Error()}
		}
		respondError(c, http.StatusInternalServerError, "internal server error", extra)
	}
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError(name, name+" must be a positive integer")
	}
	return id, nil
}
