package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, "acme_pos", cfg.Database.Name)
	assert.Equal(t, "pos.payments", cfg.Kafka.PaymentsTopic)
	assert.True(t, cfg.Pricing.DefaultTaxRate.Equal(decimal.RequireFromString("0.08")))
	assert.True(t, cfg.Pricing.DefaultServiceChargeRate.Equal(decimal.RequireFromString("0.10")))
	assert.True(t, cfg.Pricing.PaymentTolerance.Equal(decimal.RequireFromString("0.01")))
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("APP_ENV", "development")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("FEATURE_RATE_CACHING", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Features.EnableRateCaching)
}

func TestLoad_PricingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pricing:
  default_tax_rate: "0.11"
  payment_tolerance: 0.05
`), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Pricing.DefaultTaxRate.Equal(decimal.RequireFromString("0.11")))
	assert.True(t, cfg.Pricing.DefaultServiceChargeRate.Equal(decimal.RequireFromString("0.10")))
	assert.True(t, cfg.Pricing.PaymentTolerance.Equal(decimal.RequireFromString("0.05")))
}

func TestLoad_InvalidPricing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pricing:\n  default_tax_rate: \"8\"\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestApplyYAML_Malformed(t *testing.T) {
	cfg := &Config{Pricing: DefaultPricing()}
	assert.Error(t, cfg.applyYAML([]byte("pricing:\n  default_tax_rate: abc\n")))
	assert.Error(t, cfg.applyYAML([]byte("pricing: [")))
}

func TestConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.ConnectionString())
}
