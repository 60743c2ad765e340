package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

func clearRentalEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		DatabaseURLEnv, HTTPAddrEnv, AdapterEnv, LoanPeriodEnv, ReservationTTLEnv,
		SweepIntervalEnv, SweepBatchSizeEnv, AMQPURLEnv, OTelEndpointEnv,
	} {
		t.Setenv(key, "")
	}
}

func Test_LoadAppConfig_Defaults(t *testing.T) {
	// setup
	clearRentalEnv(t)

	// act
	cfg, err := LoadAppConfig()

	// assert
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, AdapterPGX, cfg.Adapter)
	assert.Equal(t, PostgresLocalDSN(), cfg.DatabaseURL)
	assert.Equal(t, rental.DefaultHoldPolicy(), cfg.HoldPolicy())
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, uint(100), cfg.SweepBatchSize)
	assert.Empty(t, cfg.AMQPURL)
	assert.Empty(t, cfg.OTelEndpoint)
}

func Test_LoadAppConfig_FromEnvironment(t *testing.T) {
	// setup
	clearRentalEnv(t)
	t.Setenv(DatabaseURLEnv, "postgres://u:p@db:5432/rental")
	t.Setenv(AdapterEnv, AdapterSQLX)
	t.Setenv(LoanPeriodEnv, "336h")
	t.Setenv(ReservationTTLEnv, "15m")
	t.Setenv(SweepIntervalEnv, "30s")
	t.Setenv(SweepBatchSizeEnv, "25")
	t.Setenv(AMQPURLEnv, "amqp://guest:guest@mq:5672/")

	// act
	cfg, err := LoadAppConfig()

	// assert
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/rental", cfg.DatabaseURL)
	assert.Equal(t, AdapterSQLX, cfg.Adapter)
	assert.Equal(t, 14*24*time.Hour, cfg.LoanPeriod)
	assert.Equal(t, 15*time.Minute, cfg.ReservationTTL)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, uint(25), cfg.SweepBatchSize)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.AMQPURL)
}

func Test_LoadAppConfig_Rejects(t *testing.T) {
	testCases := []struct {
		name     string
		key      string
		value    string
		expected error
	}{
		{"unknown adapter", AdapterEnv, "mysql", ErrUnknownAdapter},
		{"unparsable duration", LoanPeriodEnv, "a week", ErrInvalidSetting},
		{"negative duration", ReservationTTLEnv, "-5m", ErrInvalidSetting},
		{"zero batch size", SweepBatchSizeEnv, "0", ErrInvalidSetting},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			clearRentalEnv(t)
			t.Setenv(tc.key, tc.value)

			// act
			_, err := LoadAppConfig()

			// assert
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}
