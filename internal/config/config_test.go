package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrussa/order-bridge/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "UPSTREAM_URL", "UPSTREAM_TIMEOUT",
		"MERCHANT_ID", "MERCHANT_NAME", "TERMINAL_STATUSES",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_GROUP",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_ErrWhenAPITokenMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_TOKEN", "")

	_, err := config.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "set API_TOKEN")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_TOKEN", "tok")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "tok", cfg.APIToken)
	require.Empty(t, cfg.UpstreamURL)
	require.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	require.Equal(t,
		[]string{"CONFIRMED", "DISPATCHED", "DELIVERED", "CONCLUDED", "CANCELLED", "CANCELED"},
		cfg.TerminalStatuses)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, "orders", cfg.KafkaTopic)
	require.Equal(t, "order-bridge", cfg.KafkaGroup)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_TOKEN", "tok")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("UPSTREAM_URL", "https://hook.example.com/x")
	t.Setenv("UPSTREAM_TIMEOUT", "2s")
	t.Setenv("MERCHANT_ID", "14104")
	t.Setenv("MERCHANT_NAME", "Restaurante")
	t.Setenv("TERMINAL_STATUSES", "done, closed")
	t.Setenv("KAFKA_BROKERS", "rp:9092")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":9999", cfg.HTTPAddr)
	require.Equal(t, "https://hook.example.com/x", cfg.UpstreamURL)
	require.Equal(t, 2*time.Second, cfg.UpstreamTimeout)
	require.Equal(t, "14104", cfg.MerchantID)
	require.Equal(t, "Restaurante", cfg.MerchantName)
	require.Equal(t, []string{"done", "closed"}, cfg.TerminalStatuses)
	require.Equal(t, "rp:9092", cfg.KafkaBrokers)
}

func TestLoad_InvalidTimeoutFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_TOKEN", "tok")
	t.Setenv("UPSTREAM_TIMEOUT", "nonsense")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
}
