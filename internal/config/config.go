package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress   string
	DatabaseURI  string
	AuthSecret   string
	AuthTokenTTL time.Duration

	PaymentAPIAddress    string
	PaymentKeyID         string
	PaymentKeySecret     string
	PaymentWebhookSecret string
	PaymentPollInterval  time.Duration
	PaymentPollAge       time.Duration

	RedisAddress string
	KafkaBrokers []string
	KafkaTopic   string

	TracingExporter string
	OTLPEndpoint    string

	WorkerPoolSize  int
	MaxOrdersBatch  int
	ShutdownTimeout time.Duration

	Pricing model.PricingRules
}

const (
	defaultRunAddress          = ":8080"
	defaultAuthSecret          = "change-me-in-production"
	defaultAuthTokenTTL        = 24 * time.Hour
	defaultPaymentAPIAddress   = "https://api.razorpay.com"
	defaultPaymentPollInterval = 30 * time.Second
	defaultPaymentPollAge      = 2 * time.Minute
	defaultKafkaTopic          = "freshcart.orders"
	defaultTracingExporter     = TracingNone
	defaultOTLPEndpoint        = "localhost:4317"
	defaultWorkerPoolSize      = 4
	defaultShutdownTimeout     = 10 * time.Second
	defaultMaxOrdersBatch      = 32
)

// Tracing exporters accepted by TRACING_EXPORTER.
const (
	TracingNone   = "none"
	TracingStdout = "stdout"
	TracingOTLP   = "otlp"
)

// Load parses configuration from flags and environment variables. Variables
// from an optional .env file in the working directory never override the
// process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:           getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:          getString(lookup, "DATABASE_URI", ""),
		AuthSecret:           getString(lookup, "AUTH_SECRET", defaultAuthSecret),
		AuthTokenTTL:         getDuration(lookup, "AUTH_TOKEN_TTL", defaultAuthTokenTTL),
		PaymentAPIAddress:    getString(lookup, "PAYMENT_API_ADDRESS", defaultPaymentAPIAddress),
		PaymentKeyID:         getString(lookup, "PAYMENT_KEY_ID", ""),
		PaymentKeySecret:     getString(lookup, "PAYMENT_KEY_SECRET", ""),
		PaymentWebhookSecret: getString(lookup, "PAYMENT_WEBHOOK_SECRET", ""),
		PaymentPollInterval:  getDuration(lookup, "PAYMENT_POLL_INTERVAL", defaultPaymentPollInterval),
		PaymentPollAge:       getDuration(lookup, "PAYMENT_POLL_AGE", defaultPaymentPollAge),
		RedisAddress:         getString(lookup, "REDIS_ADDRESS", ""),
		KafkaTopic:           getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		TracingExporter:      getString(lookup, "TRACING_EXPORTER", defaultTracingExporter),
		OTLPEndpoint:         getString(lookup, "OTEL_EXPORTER_OTLP_ENDPOINT", defaultOTLPEndpoint),
		WorkerPoolSize:       getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:      getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		MaxOrdersBatch:       getInt(lookup, "POLL_BATCH_SIZE", defaultMaxOrdersBatch),
		Pricing:              DefaultPricing(),
	}

	fs := flag.NewFlagSet("freshcart", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.PaymentPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		kafkaBrokers       = getString(lookup, "KAFKA_BROKERS", "")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.PaymentAPIAddress, "p", cfg.PaymentAPIAddress, "Payment provider base URL")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for webhook deduplication")
	fs.StringVar(&kafkaBrokers, "kafka", kafkaBrokers, "Comma separated Kafka brokers for order events")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent payment reconcilers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between payment polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.MaxOrdersBatch, "poll-batch", cfg.MaxOrdersBatch, "Maximum orders per polling batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.PaymentPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("AUTH_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth secret file: %w", err)
		}
		cfg.AuthSecret = strings.TrimSpace(string(content))
	}

	if pricingFile, ok := lookup("PRICING_FILE"); ok && pricingFile != "" {
		if cfg.Pricing, err = LoadPricing(pricingFile); err != nil {
			return nil, err
		}
	}

	cfg.KafkaBrokers = splitList(kafkaBrokers)

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.MaxOrdersBatch <= 0 {
		cfg.MaxOrdersBatch = defaultMaxOrdersBatch
	}

	if cfg.PaymentPollInterval <= 0 {
		cfg.PaymentPollInterval = defaultPaymentPollInterval
	}

	if cfg.PaymentPollAge <= 0 {
		cfg.PaymentPollAge = defaultPaymentPollAge
	}

	if cfg.AuthTokenTTL <= 0 {
		cfg.AuthTokenTTL = defaultAuthTokenTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	switch cfg.TracingExporter {
	case TracingNone, TracingStdout, TracingOTLP:
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", cfg.TracingExporter)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.PaymentKeyID == "" || cfg.PaymentKeySecret == "" {
		return nil, fmt.Errorf("payment key id and secret must be provided")
	}

	if cfg.PaymentWebhookSecret == "" {
		return nil, fmt.Errorf("payment webhook secret must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
