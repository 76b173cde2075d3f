package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

// SettingsEventType represents the type of tenant settings event.
type SettingsEventType string

const (
	SettingsEventRatesChanged SettingsEventType = "settings.rates_changed"
)

// SettingsEvent is published by the back office when tenant settings change.
type SettingsEvent struct {
	ID        string            `json:"id"`
	Type      SettingsEventType `json:"type"`
	TenantID  int64             `json:"tenant_id"`
	Timestamp time.Time         `json:"timestamp"`
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// SettingsConsumer evicts cached tenant rates when their settings change.
type SettingsConsumer struct {
	reader messageReader
	cache  repository.RateCache
	logger *logging.LoggerV2
	stopCh chan struct{}
}

// NewSettingsConsumer creates a consumer on the settings topic.
func NewSettingsConsumer(cfg config.KafkaConfig, cache repository.RateCache, logger *logging.LoggerV2) *SettingsConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.SettingsTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return newSettingsConsumer(reader, cache, logger)
}

func newSettingsConsumer(reader messageReader, cache repository.RateCache, logger *logging.LoggerV2) *SettingsConsumer {
	return &SettingsConsumer{
		reader: reader,
		cache:  cache,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start consumes events until ctx is cancelled or Stop is called.
func (c *SettingsConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting settings consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Settings consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				select {
				case <-c.stopCh:
					return nil
				default:
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *SettingsConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *SettingsConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event SettingsEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", logging.Fields{"error": err.Error()})
		return
	}

	switch event.Type {
	case SettingsEventRatesChanged:
		c.handleRatesChanged(ctx, &event)
	default:
		c.logger.Debug("Ignoring unknown event type", logging.Fields{"type": event.Type})
	}
}

func (c *SettingsConsumer) handleRatesChanged(ctx context.Context, event *SettingsEvent) {
	c.logger.Info("Evicting cached rates", logging.Fields{
		"event_id":  event.ID,
		"tenant_id": event.TenantID,
	})

	if err := c.cache.Delete(ctx, event.TenantID); err != nil {
		c.logger.Error("Failed to evict cached rates", logging.Fields{
			"tenant_id": event.TenantID,
			"error":     err.Error(),
		})
	}
}
