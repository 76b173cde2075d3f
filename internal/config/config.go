package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Pricing  PricingConfig
	Features FeatureFlags
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Environment     string
}

// IsDevelopment reports whether internal error details may be shown to clients.
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development"
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	PaymentsTopic string
	SettingsTopic string
	ConsumerGroup string
}

// PricingConfig holds the bill calculation fallbacks. Rates are fractions
// (0.08 means 8%).
type PricingConfig struct {
	DefaultTaxRate           decimal.Decimal
	DefaultServiceChargeRate decimal.Decimal
	PaymentTolerance         decimal.Decimal
}

type FeatureFlags struct {
	EnableRateCaching      bool
	EnablePaymentEvents    bool
	EnableSettingsConsumer bool
}

// DefaultPricing returns the fallbacks used when no tenant rate is configured.
func DefaultPricing() PricingConfig {
	return PricingConfig{
		DefaultTaxRate:           decimal.RequireFromString("0.08"),
		DefaultServiceChargeRate: decimal.RequireFromString("0.10"),
		PaymentTolerance:         decimal.RequireFromString("0.01"),
	}
}

// Load reads configuration from the environment. A .env file in the working
// directory is honoured when present, and CONFIG_FILE may point to a YAML file
// whose pricing block overrides the defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("SERVER_PORT", 8085),
			ReadTimeout:     time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("SERVER_SHUTDOWN_TIMEOUT", 30)) * time.Second,
			Environment:     getEnvString("APP_ENV", "production"),
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "acme"),
			Password:     getEnvString("DB_PASSWORD", "acme"),
			Name:         getEnvString("DB_NAME", "acme_pos"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_RATE_TTL", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			PaymentsTopic: getEnvString("KAFKA_PAYMENTS_TOPIC", "pos.payments"),
			SettingsTopic: getEnvString("KAFKA_SETTINGS_TOPIC", "pos.settings"),
			ConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "pos-service"),
		},
		Pricing: DefaultPricing(),
		Features: FeatureFlags{
			EnableRateCaching:      getEnvBool("FEATURE_RATE_CACHING", true),
			EnablePaymentEvents:    getEnvBool("FEATURE_PAYMENT_EVENTS", true),
			EnableSettingsConsumer: getEnvBool("FEATURE_SETTINGS_CONSUMER", true),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type fileConfig struct {
	Pricing struct {
		DefaultTaxRate           string `yaml:"default_tax_rate"`
		DefaultServiceChargeRate string `yaml:"default_service_charge_rate"`
		PaymentTolerance         string `yaml:"payment_tolerance"`
	} `yaml:"pricing"`
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	return c.applyYAML(data)
}

func (c *Config) applyYAML(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	overrides := []struct {
		raw    string
		target *decimal.Decimal
		name   string
	}{
		{fc.Pricing.DefaultTaxRate, &c.Pricing.DefaultTaxRate, "default_tax_rate"},
		{fc.Pricing.DefaultServiceChargeRate, &c.Pricing.DefaultServiceChargeRate, "default_service_charge_rate"},
		{fc.Pricing.PaymentTolerance, &c.Pricing.PaymentTolerance, "payment_tolerance"},
	}
	for _, o := range overrides {
		if o.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(o.raw)
		if err != nil {
			return fmt.Errorf("parse pricing.%s: %w", o.name, err)
		}
		*o.target = v
	}
	return nil
}

// Validate rejects pricing values the bill calculator cannot work with.
func (c *Config) Validate() error {
	one := decimal.NewFromInt(1)
	if c.Pricing.DefaultTaxRate.IsNegative() || c.Pricing.DefaultTaxRate.GreaterThan(one) {
		return fmt.Errorf("default tax rate must be a fraction between 0 and 1, got %s", c.Pricing.DefaultTaxRate)
	}
	if c.Pricing.DefaultServiceChargeRate.IsNegative() || c.Pricing.DefaultServiceChargeRate.GreaterThan(one) {
		return fmt.Errorf("default service charge rate must be a fraction between 0 and 1, got %s", c.Pricing.DefaultServiceChargeRate)
	}
	if !c.Pricing.PaymentTolerance.IsPositive() {
		return fmt.Errorf("payment tolerance must be positive, got %s", c.Pricing.PaymentTolerance)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
