// Package config reads the storefront's settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	AppEnv    string
	LogLevel  string
	JWTSecret string
	PublicURL string

	// Store selects the persistence backend: "mongo" or "memory".
	Store    string
	MongoURI string
	MongoDB  string

	// RedisAddr enables the shared idempotency store when set.
	RedisAddr     string
	RedisPassword string

	EmailProvider    string
	PostmarkAPIToken string
	SendGridAPIKey   string
	EmailSender      string

	Currency        string
	GatewayTimeout  time.Duration
	GenerationDelay time.Duration
	PaymentDelay    time.Duration
	FulfillDelay    time.Duration
	SessionTTL      time.Duration
	WalletPrefill   bool
	TraceStdout     bool
}

// Load reads a .env file if there is one and then the process environment.
// The returned bool reports whether a .env file was found.
func Load(files ...string) (Config, bool, error) {
	foundEnv := godotenv.Load(files...) == nil

	cfg := Config{
		Port:             getenv("PORT", "8000"),
		AppEnv:           getenv("APP_ENV", "production"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		PublicURL:        getenv("PUBLIC_URL", "http://localhost:8000"),
		Store:            strings.ToLower(getenv("STORE", "mongo")),
		MongoURI:         getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:          getenv("MONGO_DB", "tote_store"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		EmailProvider:    strings.ToLower(getenv("EMAIL_PROVIDER", "log")),
		PostmarkAPIToken: os.Getenv("POSTMARK_API_TOKEN"),
		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		EmailSender:      getenv("EMAIL_SENDER", "orders@tote.example.com"),
		Currency:         strings.ToLower(getenv("CURRENCY", "usd")),
	}

	var err error
	if cfg.GatewayTimeout, err = duration("GATEWAY_TIMEOUT", 30*time.Second); err != nil {
		return cfg, foundEnv, err
	}
	if cfg.GenerationDelay, err = duration("GENERATION_DELAY", 2*time.Second); err != nil {
		return cfg, foundEnv, err
	}
	if cfg.PaymentDelay, err = duration("PAYMENT_DELAY", time.Second); err != nil {
		return cfg, foundEnv, err
	}
	if cfg.FulfillDelay, err = duration("FULFILLMENT_DELAY", 1500*time.Millisecond); err != nil {
		return cfg, foundEnv, err
	}
	if cfg.SessionTTL, err = duration("SESSION_TTL", 2*time.Hour); err != nil {
		return cfg, foundEnv, err
	}
	if cfg.WalletPrefill, err = boolean("WALLET_PREFILL", false); err != nil {
		return cfg, foundEnv, err
	}
	if cfg.TraceStdout, err = boolean("TRACE_STDOUT", false); err != nil {
		return cfg, foundEnv, err
	}

	if cfg.JWTSecret == "" {
		return cfg, foundEnv, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Store != "mongo" && cfg.Store != "memory" {
		return cfg, foundEnv, fmt.Errorf("STORE must be mongo or memory, got %q", cfg.Store)
	}
	switch cfg.EmailProvider {
	case "postmark", "sendgrid", "log":
	default:
		return cfg, foundEnv, fmt.Errorf("EMAIL_PROVIDER must be postmark, sendgrid or log, got %q", cfg.EmailProvider)
	}
	return cfg, foundEnv, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func boolean(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
