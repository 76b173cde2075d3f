package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

const (
	rateKeyPrefix   = "rates:tenant:"
	defaultCacheTTL = 5 * time.Minute
)

// RedisRateCache implements RateCache using Redis.
type RedisRateCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *logging.LoggerV2
}

// NewRedisClient opens a client for the configured Redis instance.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisRateCache creates a rate cache on an existing client.
func NewRedisRateCache(client redis.UniversalClient, ttl time.Duration, logger *logging.LoggerV2) *RedisRateCache {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	return &RedisRateCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func rateKey(tenantID int64) string {
	return rateKeyPrefix + strconv.FormatInt(tenantID, 10)
}

// Get returns the cached rates for a tenant, or nil on a miss.
func (c *RedisRateCache) Get(ctx context.Context, tenantID int64) (*models.TenantRates, error) {
	data, err := c.client.Get(ctx, rateKey(tenantID)).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss", logging.Fields{"tenant_id": tenantID})
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Cache get error", logging.Fields{
			"tenant_id": tenantID,
			"error":     err.Error(),
		})
		return nil, err
	}

	var rates models.TenantRates
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, err
	}

	c.logger.Debug("Cache hit", logging.Fields{"tenant_id": tenantID})
	return &rates, nil
}

// Set stores a tenant's resolved rates.
func (c *RedisRateCache) Set(ctx context.Context, tenantID int64, rates *models.TenantRates) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, rateKey(tenantID), data, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set error", logging.Fields{
			"tenant_id": tenantID,
			"error":     err.Error(),
		})
		return err
	}

	c.logger.Debug("Rates cached", logging.Fields{
		"tenant_id": tenantID,
		"ttl":       c.ttl.String(),
	})
	return nil
}

// Delete drops a tenant's cached rates.
func (c *RedisRateCache) Delete(ctx context.Context, tenantID int64) error {
	if err := c.client.Del(ctx, rateKey(tenantID)).Err(); err != nil {
		c.logger.Error("Cache delete error", logging.Fields{
			"tenant_id": tenantID,
			"error":     err.Error(),
		})
		return err
	}

	c.logger.Debug("Rates evicted", logging.Fields{"tenant_id": tenantID})
	return nil
}
