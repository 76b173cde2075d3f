package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

// EventPublisher announces committed payments.
type EventPublisher interface {
	PublishPaymentRecorded(ctx context.Context, payment *models.Payment, summary models.PaymentSummary) error
	PublishOrderClosed(ctx context.Context, order *models.Order) error
}

// PaymentService implements checkout previews and payment submission.
type PaymentService struct {
	stores    repository.Stores
	tx        repository.Transactor
	promos    *PromotionResolver
	rates     *RateLookup
	publisher EventPublisher
	metrics   *metrics.Collectors
	pricing   config.PricingConfig
	logger    *logging.LoggerV2
}

// NewPaymentService creates a new payment service. stores are used for
// read-only operations; writes go through tx. publisher may be nil.
func NewPaymentService(
	stores repository.Stores,
	tx repository.Transactor,
	promos *PromotionResolver,
	rates *RateLookup,
	publisher EventPublisher,
	m *metrics.Collectors,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		stores:    stores,
		tx:        tx,
		promos:    promos,
		rates:     rates,
		publisher: publisher,
		metrics:   m,
		pricing:   cfg.Pricing,
		logger:    logging.NewLoggerV2("payment-service"),
	}
}

// billResult is a computed bill plus the ids of what was applied.
type billResult struct {
	Bill       models.BillBreakdown
	DiscountID *int64
	PromoID    *int64
}

// buildBill gathers the inputs for an order and computes its bill. Checkout and
// payment both go through here so the two always agree.
func (s *PaymentService) buildBill(ctx context.Context, stores repository.Stores, order *models.Order, tenantID int64, discountID, promoID *int64) (*billResult, error) {
	items, err := stores.Orders.FindActiveLineItems(ctx, order.ID, tenantID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.ErrNoActiveItems
	}

	var discount *models.Discount
	if discountID != nil {
		discount, err = stores.Discounts.GetDiscount(ctx, *discountID, tenantID)
		if err != nil {
			return nil, err
		}
	}

	promo, err := s.promos.ResolvePromo(ctx, stores.Promos, tenantID, promoID)
	if err != nil {
		return nil, err
	}

	rates, err := s.rates.Rates(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	bill, err := ComputeBill(items, discount, promo, rates)
	if err != nil {
		return nil, err
	}

	result := &billResult{Bill: bill, DiscountID: discountID}
	if promo != nil {
		id := promo.ID
		result.PromoID = &id
	}
	return result, nil
}

// Checkout computes the bill for an order without writing anything.
func (s *PaymentService) Checkout(ctx context.Context, tenantID, orderID int64, req *models.CheckoutRequest) (*models.BillBreakdown, error) {
	s.logger.Debug("Computing checkout preview", logging.Fields{"tenant_id": tenantID, "order_id": orderID})
	defer s.observe("checkout", time.Now())

	order, err := s.stores.Orders.FindOrder(ctx, orderID, tenantID)
	if err != nil {
		return nil, err
	}

	res, err := s.buildBill(ctx, s.stores, order, tenantID, req.DiscountID, req.PromoID)
	if err != nil {
		s.logger.Info("Checkout preview failed", logging.Fields{
			"tenant_id": tenantID,
			"order_id":  orderID,
			"error":     err.Error(),
		})
		return nil, err
	}

	bill := res.Bill.Rounded()
	return &bill, nil
}

// ProcessPayment validates the amount against a freshly computed bill,
// appends the payment and advances the order status, all in one transaction.
func (s *PaymentService) ProcessPayment(ctx context.Context, tenantID int64, req *models.ProcessPaymentRequest) (*models.ProcessPaymentResult, error) {
	if err := ValidateProcessPaymentRequest(req); err != nil {
		return nil, err
	}
	req.PaymentMode = NormalizePaymentMode(req.PaymentMode)

	s.logger.Info("Processing payment", logging.Fields{
		"tenant_id":    tenantID,
		"order_id":     req.OrderID,
		"amount":       req.Amount.StringFixed(2),
		"payment_mode": req.PaymentMode,
	})
	defer s.observe("payment", time.Now())

	var result *models.ProcessPaymentResult
	var previous models.OrderStatus

	err := s.tx.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		order, err := stores.Orders.FindOrderForUpdate(ctx, req.OrderID, tenantID)
		if err != nil {
			return err
		}
		if !order.IsOpen || order.Status == models.OrderStatusClosed {
			return errors.ErrOrderClosed
		}
		previous = order.Status

		res, err := s.buildBill(ctx, stores, order, tenantID, req.DiscountID, req.PromoID)
		if err != nil {
			return err
		}

		if !amountMatches(req.Amount, res.Bill.ChargedAmount, s.pricing.PaymentTolerance) {
			return &errors.AmountMismatchError{
				Expected:  res.Bill.ChargedAmount.Round(models.MoneyPlaces),
				Received:  req.Amount,
				Breakdown: res.Bill.Rounded(),
			}
		}

		txnID := strings.TrimSpace(req.TransactionID)
		if txnID == "" {
			txnID = uuid.NewString()
		}

		payment, err := stores.Payments.Insert(ctx, models.NewPayment{
			OrderID:       order.ID,
			TenantID:      tenantID,
			Amount:        req.Amount,
			PaymentMode:   req.PaymentMode,
			TransactionID: txnID,
		})
		if err != nil {
			return err
		}

		totalPaid, err := stores.Payments.TotalPaid(ctx, order.ID, tenantID)
		if err != nil {
			return err
		}

		status, isOpen := DecideOrderStatus(totalPaid, res.Bill.ChargedAmount, s.pricing.PaymentTolerance, order.Status)

		updated, err := stores.Orders.UpdateOrderBillFields(ctx, order.ID, tenantID, models.OrderBillFields{
			Bill:       res.Bill,
			Status:     status,
			IsOpen:     isOpen,
			DiscountID: res.DiscountID,
			PromoID:    res.PromoID,
		})
		if err != nil {
			return err
		}

		result = &models.ProcessPaymentResult{
			Payment:        payment,
			Order:          updated,
			PaymentSummary: Summarize(res.Bill, totalPaid, status),
		}
		return nil
	})
	if err != nil {
		var mismatch *errors.AmountMismatchError
		if errors.As(err, &mismatch) && s.metrics != nil {
			s.metrics.AmountMismatches.Inc()
		}
		s.logger.Info("Payment rejected", logging.Fields{
			"tenant_id": tenantID,
			"order_id":  req.OrderID,
			"error":     err.Error(),
		})
		return nil, err
	}

	s.afterCommit(ctx, result, previous)

	s.logger.Info("Payment processed", logging.Fields{
		"tenant_id":      tenantID,
		"order_id":       req.OrderID,
		"payment_id":     result.Payment.ID,
		"payment_status": result.PaymentSummary.PaymentStatus,
	})
	return result, nil
}

func (s *PaymentService) afterCommit(ctx context.Context, result *models.ProcessPaymentResult, previous models.OrderStatus) {
	closed := result.PaymentSummary.PaymentStatus == models.OrderStatusClosed && previous != models.OrderStatusClosed

	if s.metrics != nil {
		s.metrics.PaymentsRecorded.WithLabelValues(result.Payment.PaymentMode).Inc()
		if closed {
			s.metrics.OrdersClosed.Inc()
		}
	}

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishPaymentRecorded(ctx, result.Payment, result.PaymentSummary); err != nil {
		s.logger.Warn("Failed to publish payment event", logging.Fields{
			"payment_id": result.Payment.ID,
			"error":      err.Error(),
		})
	}
	if closed {
		if err := s.publisher.PublishOrderClosed(ctx, result.Order); err != nil {
			s.logger.Warn("Failed to publish order closed event", logging.Fields{
				"order_id": result.Order.ID,
				"error":    err.Error(),
			})
		}
	}
}

// GetPayment retrieves one payment.
func (s *PaymentService) GetPayment(ctx context.Context, tenantID, paymentID int64) (*models.Payment, error) {
	s.logger.Debug("Getting payment", logging.Fields{"tenant_id": tenantID, "payment_id": paymentID})
	return s.stores.Payments.GetByID(ctx, paymentID, tenantID)
}

// OrderPayments is the payment ledger for one order.
type OrderPayments struct {
	OrderID   int64             `json:"order_id"`
	Payments  []*models.Payment `json:"payments"`
	TotalPaid decimal.Decimal   `json:"total_paid"`
}

// ListOrderPayments returns every payment recorded against an order.
func (s *PaymentService) ListOrderPayments(ctx context.Context, tenantID, orderID int64) (*OrderPayments, error) {
	s.logger.Debug("Listing order payments", logging.Fields{"tenant_id": tenantID, "order_id": orderID})

	if _, err := s.stores.Orders.FindOrder(ctx, orderID, tenantID); err != nil {
		return nil, err
	}

	payments, err := s.stores.Payments.ListByOrder(ctx, orderID, tenantID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}

	return &OrderPayments{
		OrderID:   orderID,
		Payments:  payments,
		TotalPaid: total.Round(models.MoneyPlaces),
	}, nil
}

func (s *PaymentService) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.BillDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
