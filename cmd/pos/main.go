package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	logger := logging.NewLoggerV2("pos-service")
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", logging.Fields{"error": err.Error()})
	}

	logging.Infof("Starting pos-service on port %d", cfg.Server.Port)

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
	}
	defer db.Close()

	m := metrics.New()

	stores := repository.NewPostgresStores(db, logger)
	transactor := repository.NewPostgresTransactor(db, logger)
	tenants := repository.NewPostgresTenantRepository(db)

	var rateCache repository.RateCache
	if cfg.Features.EnableRateCaching {
		redisClient := repository.NewRedisClient(cfg.Redis)
		defer redisClient.Close()
		rateCache = repository.NewRedisRateCache(redisClient, cfg.Redis.TTL, logging.NewLoggerV2("rate-cache"))
	}

	rates := service.NewRateLookup(
		repository.NewPostgresRateRepository(db, logger),
		rateCache,
		cfg.Pricing,
		logging.NewLoggerV2("rate-lookup"),
	).WithMetrics(m)

	var publisher service.EventPublisher
	if cfg.Features.EnablePaymentEvents {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	paymentService := service.NewPaymentService(
		stores,
		transactor,
		service.NewPromotionResolver(logging.NewLoggerV2("promotions")),
		rates,
		publisher,
		m,
		cfg,
	)

	h := handlers.NewHandlers(paymentService, tenants, cfg)

	srv := server.New(h, m, cfg)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":                 cfg.Server.Port,
			"enable_rate_caching":  cfg.Features.EnableRateCaching,
			"enable_payment_event": cfg.Features.EnablePaymentEvents,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	var consumer *events.SettingsConsumer
	if cfg.Features.EnableSettingsConsumer && rateCache != nil {
		consumer = events.NewSettingsConsumer(cfg.Kafka, rateCache, logging.NewLoggerV2("settings-consumer"))
		go func() {
			if err := consumer.Start(context.Background()); err != nil {
				logger.Error("Settings consumer failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if consumer != nil {
		consumer.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logging.Info("Database connected", logging.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	})

	return db, nil
}
