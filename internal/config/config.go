package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RiskConfig tunes the fraud gate. Every limit here is policy, not code.
type RiskConfig struct {
	MaxAmount      decimal.Decimal
	HighAmount     decimal.Decimal
	ScoreThreshold float64
	VelocityWindow time.Duration
	VelocityLimit  int64
	NightHourStart int
	NightHourEnd   int
	MinCardDigits  int
}

// GatewayConfig carries the simulator's per-operation success probabilities
// and latency window.
type GatewayConfig struct {
	Mode                 string // "simulated" or "http"
	BaseURL              string
	AuthorizeSuccessRate float64
	CaptureSuccessRate   float64
	CancelSuccessRate    float64
	RefundSuccessRate    float64
	MinLatency           time.Duration
	MaxLatency           time.Duration
}

type Config struct {
	Port         string
	DatabaseURL  string
	RedisURL     string
	KafkaBrokers string
	NatsURL      string

	Currencies []string
	CacheTTL   time.Duration

	Risk    RiskConfig
	Gateway GatewayConfig
}

func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		Port:         port,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		NatsURL:      os.Getenv("NATS_URL"),

		Currencies: envList("ALLOWED_CURRENCIES", []string{"USD", "EUR", "GBP", "INR", "JPY", "CAD", "AUD"}),
		CacheTTL:   envDuration("PAYMENT_CACHE_TTL", 15*time.Minute),

		Risk: RiskConfig{
			MaxAmount:      envDecimal("RISK_MAX_AMOUNT", "10000.00"),
			HighAmount:     envDecimal("RISK_HIGH_AMOUNT", "1000"),
			ScoreThreshold: envFloat("RISK_SCORE_THRESHOLD", 0.8),
			VelocityWindow: envDuration("RISK_VELOCITY_WINDOW", time.Minute),
			VelocityLimit:  int64(envInt("RISK_VELOCITY_LIMIT", 5)),
			NightHourStart: envInt("RISK_NIGHT_HOUR_START", 22),
			NightHourEnd:   envInt("RISK_NIGHT_HOUR_END", 6),
			MinCardDigits:  envInt("RISK_MIN_CARD_DIGITS", 13),
		},

		Gateway: GatewayConfig{
			Mode:                 envString("GATEWAY_MODE", "simulated"),
			BaseURL:              os.Getenv("GATEWAY_URL"),
			AuthorizeSuccessRate: envFloat("GATEWAY_AUTHORIZE_SUCCESS_RATE", 0.90),
			CaptureSuccessRate:   envFloat("GATEWAY_CAPTURE_SUCCESS_RATE", 0.98),
			CancelSuccessRate:    envFloat("GATEWAY_CANCEL_SUCCESS_RATE", 0.99),
			RefundSuccessRate:    envFloat("GATEWAY_REFUND_SUCCESS_RATE", 0.95),
			MinLatency:           envDuration("GATEWAY_MIN_LATENCY", 50*time.Millisecond),
			MaxLatency:           envDuration("GATEWAY_MAX_LATENCY", 300*time.Millisecond),
		},
	}
}

// AllowsCurrency reports whether code is on the configured allow-list.
func (c *Config) AllowsCurrency(code string) bool {
	for _, cur := range c.Currencies {
		if cur == code {
			return true
		}
	}
	return false
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envDecimal(key, fallback string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(fallback)
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
