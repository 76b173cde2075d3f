package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// ProcessPayment handles POST /payments
func (h *Handlers) ProcessPayment(c *gin.Context) {
	var req models.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Failed to bind payment request", logging.Fields{"error": err.Error()})
		h.handleError(c, errors.NewValidationError("body", "invalid request body"))
		return
	}

	result, err := h.payments.ProcessPayment(c.Request.Context(), tenantFrom(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, result)
}

// Checkout handles POST /payments/checkout/:order_id
func (h *Handlers) Checkout(c *gin.Context) {
	orderID, err := parseIDParam(c, "order_id")
	if err != nil {
		h.handleError(c, err)
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Info("Failed to bind checkout request", logging.Fields{"error": err.Error()})
		h.handleError(c, errors.NewValidationError("body", "invalid request body"))
		return
	}

	bill, err := h.payments.Checkout(c.Request.Context(), tenantFrom(c), orderID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"order_id":        orderID,
		"checkoutSummary": bill,
	})
}

// GetPayment handles GET /payments/:id
func (h *Handlers) GetPayment(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.handleError(c, err)
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), tenantFrom(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, payment)
}

// ListOrderPayments handles GET /payments/order/:order_id
func (h *Handlers) ListOrderPayments(c *gin.Context) {
	orderID, err := parseIDParam(c, "order_id")
	if err != nil {
		h.handleError(c, err)
		return
	}

	list, err := h.payments.ListOrderPayments(c.Request.Context(), tenantFrom(c), orderID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, list)
}
