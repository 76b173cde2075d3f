package events

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
)

var _ service.EventPublisher = (*KafkaPublisher)(nil)

// EventType represents the type of POS event.
type EventType string

const (
	EventTypePaymentRecorded EventType = "payment.recorded"
	EventTypeOrderClosed     EventType = "order.closed"
)

// Event is the envelope written to the payments topic.
type Event struct {
	ID            string            `json:"id"`
	Type          EventType         `json:"type"`
	TenantID      int64             `json:"tenant_id"`
	OrderID       int64             `json:"order_id"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes payment events to Kafka.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *logging.LoggerV2
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logging.LoggerV2) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.PaymentsTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.PaymentsTopic,
		logger: logger,
	}
}

// PublishPaymentRecorded publishes a payment.recorded event.
func (p *KafkaPublisher) PublishPaymentRecorded(ctx context.Context, payment *models.Payment, summary models.PaymentSummary) error {
	p.logger.Debug("Publishing payment recorded event", logging.Fields{
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
	})

	payload := struct {
		Payment *models.Payment       `json:"payment"`
		Summary models.PaymentSummary `json:"payment_summary"`
	}{
		Payment: payment,
		Summary: summary,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := newEvent(ctx, EventTypePaymentRecorded, payment.TenantID, payment.OrderID, data)
	return p.publish(ctx, event)
}

// PublishOrderClosed publishes an order.closed event.
func (p *KafkaPublisher) PublishOrderClosed(ctx context.Context, order *models.Order) error {
	p.logger.Debug("Publishing order closed event", logging.Fields{"order_id": order.ID})

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	event := newEvent(ctx, EventTypeOrderClosed, order.TenantID, order.ID, data)
	return p.publish(ctx, event)
}

func newEvent(ctx context.Context, eventType EventType, tenantID, orderID int64, data []byte) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		TenantID:      tenantID,
		OrderID:       orderID,
		Data:          data,
		Metadata:      map[string]string{"source": "pos-service"},
		Timestamp:     time.Now().UTC(),
		CorrelationID: logging.RequestIDFromContext(ctx),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *Event) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Keyed by order so events for one order stay on one partition.
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "tenant_id", Value: []byte(strconv.FormatInt(event.TenantID, 10))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"order_id":   event.OrderID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"order_id":   event.OrderID,
	})

	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// MockEventPublisher records events in memory for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []*Event
	Err    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]*Event, 0),
	}
}

func (m *MockEventPublisher) PublishPaymentRecorded(ctx context.Context, payment *models.Payment, summary models.PaymentSummary) error {
	return m.record(&Event{Type: EventTypePaymentRecorded, TenantID: payment.TenantID, OrderID: payment.OrderID})
}

func (m *MockEventPublisher) PublishOrderClosed(ctx context.Context, order *models.Order) error {
	return m.record(&Event{Type: EventTypeOrderClosed, TenantID: order.TenantID, OrderID: order.ID})
}

func (m *MockEventPublisher) record(e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, e)
	return nil
}

// Types returns the recorded event types in order.
func (m *MockEventPublisher) Types() []EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EventType, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Type
	}
	return out
}
