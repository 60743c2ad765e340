package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Environment variables read by LoadAppConfig.
const (
	HTTPAddrEnv       = "RENTAL_HTTP_ADDR"
	AdapterEnv        = "RENTAL_ADAPTER"
	LoanPeriodEnv     = "RENTAL_LOAN_PERIOD"
	ReservationTTLEnv = "RENTAL_RESERVATION_TTL"
	SweepIntervalEnv  = "RENTAL_SWEEP_INTERVAL"
	SweepBatchSizeEnv = "RENTAL_SWEEP_BATCH_SIZE"
	AMQPURLEnv        = "RENTAL_AMQP_URL"
	OTelEndpointEnv   = "RENTAL_OTEL_ENDPOINT"
)

// Storage adapters selectable with RENTAL_ADAPTER.
const (
	AdapterPGX    = "pgx.pool"
	AdapterSQLDB  = "sql.db"
	AdapterSQLX   = "sqlx.db"
	AdapterMemory = "memory"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultSweepInterval  = time.Minute
	defaultSweepBatchSize = 100
)

var (
	// ErrUnknownAdapter is returned when RENTAL_ADAPTER names no supported storage adapter.
	ErrUnknownAdapter = errors.New("unknown storage adapter")

	// ErrInvalidSetting is returned when an environment variable cannot be parsed.
	ErrInvalidSetting = errors.New("invalid setting")
)

// AppConfig is the process configuration of rentald.
// An empty AMQPURL disables audit publishing, an empty OTelEndpoint disables telemetry export.
type AppConfig struct {
	HTTPAddr       string
	Adapter        string
	DatabaseURL    string
	LoanPeriod     time.Duration
	ReservationTTL time.Duration
	SweepInterval  time.Duration
	SweepBatchSize uint
	AMQPURL        string
	OTelEndpoint   string
}

// LoadAppConfig reads the RENTAL_* environment variables, falling back to defaults for unset ones.
func LoadAppConfig() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:       envOr(HTTPAddrEnv, defaultHTTPAddr),
		Adapter:        envOr(AdapterEnv, AdapterPGX),
		DatabaseURL:    PostgresDSN(),
		LoanPeriod:     rental.DefaultLoanPeriod,
		ReservationTTL: rental.DefaultReservationTTL,
		SweepInterval:  defaultSweepInterval,
		SweepBatchSize: defaultSweepBatchSize,
		AMQPURL:        os.Getenv(AMQPURLEnv),
		OTelEndpoint:   os.Getenv(OTelEndpointEnv),
	}

	switch cfg.Adapter {
	case AdapterPGX, AdapterSQLDB, AdapterSQLX, AdapterMemory:
	default:
		return AppConfig{}, fmt.Errorf("%w: %q", ErrUnknownAdapter, cfg.Adapter)
	}

	var err error

	if cfg.LoanPeriod, err = envDuration(LoanPeriodEnv, cfg.LoanPeriod); err != nil {
		return AppConfig{}, err
	}

	if cfg.ReservationTTL, err = envDuration(ReservationTTLEnv, cfg.ReservationTTL); err != nil {
		return AppConfig{}, err
	}

	if cfg.SweepInterval, err = envDuration(SweepIntervalEnv, cfg.SweepInterval); err != nil {
		return AppConfig{}, err
	}

	if raw := os.Getenv(SweepBatchSizeEnv); raw != "" {
		batchSize, parseErr := strconv.ParseUint(raw, 10, 32)
		if parseErr != nil || batchSize == 0 {
			return AppConfig{}, fmt.Errorf("%w: %s=%q", ErrInvalidSetting, SweepBatchSizeEnv, raw)
		}

		cfg.SweepBatchSize = uint(batchSize)
	}

	if err = cfg.HoldPolicy().Validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

// HoldPolicy returns the reservation and loan deadlines configured for the engine.
func (c AppConfig) HoldPolicy() rental.HoldPolicy {
	return rental.HoldPolicy{
		ReservationTTL: c.ReservationTTL,
		LoanPeriod:     c.LoanPeriod,
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	duration, err := time.ParseDuration(raw)
	if err != nil || duration <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidSetting, key, raw)
	}

	return duration, nil
}
