package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	APIToken string

	UpstreamURL     string
	UpstreamTimeout time.Duration

	MerchantID   string
	MerchantName string

	TerminalStatuses []string

	KafkaBrokers string
	KafkaTopic   string
	KafkaGroup   string
}

const defaultTerminalStatuses = "CONFIRMED,DISPATCHED,DELIVERED,CONCLUDED,CANCELLED,CANCELED"

func Load() (Config, error) {
	// .env is optional; real deployments use plain environment variables.
	_ = godotenv.Load()

	var cfg Config

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.APIToken = getEnv("API_TOKEN", "")
	if cfg.APIToken == "" {
		return Config{}, errors.New("set API_TOKEN")
	}

	cfg.UpstreamURL = getEnv("UPSTREAM_URL", "")
	cfg.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second)

	cfg.MerchantID = getEnv("MERCHANT_ID", "")
	cfg.MerchantName = getEnv("MERCHANT_NAME", "")

	cfg.TerminalStatuses = splitCSV(getEnv("TERMINAL_STATUSES", defaultTerminalStatuses))

	cfg.KafkaBrokers = getEnv("KAFKA_BROKERS", "")
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "orders")
	cfg.KafkaGroup = getEnv("KAFKA_GROUP", "order-bridge")

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
