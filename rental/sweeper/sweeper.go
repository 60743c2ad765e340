// Package sweeper periodically expires overdue reservations.
//
// Lazy reclaim already keeps items that are being touched correct. The sweeper covers the items nobody
// looks at, so their counts and the audit trail catch up. Several sweepers may run against the same
// database: every expiry re-checks the hold under its row lock and skips holds closed in the meantime.
package sweeper

import (
	"context"
	"time"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const (
	// DefaultInterval is the pause between two sweeps.
	DefaultInterval = time.Minute

	// DefaultBatchSize caps the number of reservations expired per sweep.
	DefaultBatchSize = 100
)

const (
	metricSweepExpired = "rental_sweeper_expired_total"
	metricSweepErrors  = "rental_sweeper_errors_total"
	metricSweepLatency = "rental_sweeper_sweep_duration_seconds"
	logMsgSweepDone    = "sweep finished"
	logMsgSweepFailed  = "sweep failed"
	logMsgSweeperStop  = "sweeper stopped"
	logAttrExpired     = "expired"
	logAttrError       = "error"
	logAttrDurationMS  = "duration_ms"
)

// Expirer is the engine operation the sweeper drives.
type Expirer interface {
	ExpireDue(ctx context.Context, limit uint) (int, error)
}

// Sweeper runs ExpireDue on a fixed interval.
type Sweeper struct {
	expirer          Expirer
	interval         time.Duration
	batchSize        uint
	logger           rental.Logger
	metricsCollector rental.MetricsCollector
}

// Option defines a functional option for configuring Sweeper.
type Option func(*Sweeper) error

// WithInterval sets the pause between sweeps.
func WithInterval(interval time.Duration) Option {
	return func(s *Sweeper) error {
		if interval <= 0 {
			return rental.ErrInvalidDuration
		}

		s.interval = interval

		return nil
	}
}

// WithBatchSize sets how many reservations one sweep may expire.
func WithBatchSize(batchSize uint) Option {
	return func(s *Sweeper) error {
		s.batchSize = batchSize
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger rental.Logger) Option {
	return func(s *Sweeper) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector rental.MetricsCollector) Option {
	return func(s *Sweeper) error {
		s.metricsCollector = collector
		return nil
	}
}

// New creates a Sweeper with the default interval and batch size.
func New(expirer Expirer, options ...Option) (*Sweeper, error) {
	s := &Sweeper{
		expirer:   expirer,
		interval:  DefaultInterval,
		batchSize: DefaultBatchSize,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// SweepOnce expires up to one batch of overdue reservations and returns how many it expired.
// Holds expired by a concurrent request or sweeper are not counted.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	start := time.Now()

	expired, err := s.expirer.ExpireDue(ctx, s.batchSize)
	duration := time.Since(start)

	if s.metricsCollector != nil {
		s.metricsCollector.RecordDuration(metricSweepLatency, duration, nil)

		for range expired {
			s.metricsCollector.IncrementCounter(metricSweepExpired, nil)
		}
	}

	if err != nil {
		if s.metricsCollector != nil {
			s.metricsCollector.IncrementCounter(metricSweepErrors, nil)
		}

		if s.logger != nil {
			s.logger.Error(logMsgSweepFailed, logAttrError, err.Error(), logAttrExpired, expired)
		}

		return expired, err
	}

	if s.logger != nil && expired > 0 {
		s.logger.Info(logMsgSweepDone, logAttrExpired, expired, logAttrDurationMS, duration.Milliseconds())
	}

	return expired, nil
}

// Run sweeps once right away and then on every tick until ctx is done.
// Sweep errors are logged and counted, they never stop the loop.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() == nil {
			_, _ = s.SweepOnce(ctx)
		}

		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.Info(logMsgSweeperStop)
			}

			return nil
		case <-ticker.C:
		}
	}
}
