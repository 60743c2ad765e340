package postgresengine

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Option defines a functional option for configuring Engine.
type Option func(*Engine) error

// WithHoldPolicy sets the reservation TTL and loan period.
func WithHoldPolicy(policy rental.HoldPolicy) Option {
	return func(e *Engine) error {
		if err := policy.Validate(); err != nil {
			return err
		}

		e.policy = policy

		return nil
	}
}

// WithClock replaces the system clock, mainly for tests that need to move time forward.
func WithClock(clock rental.Clock) Option {
	return func(e *Engine) error {
		if clock == nil {
			return rental.ErrNilClock
		}

		e.clock = clock

		return nil
	}
}

// WithLogger sets the logger for the Engine.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Operation outcomes and reclaimed reservations (production-safe)
// Warn level: Reconciliation gaps and best-effort failures like demand signals or audit publishing
// Error level: Failed transactions.
func WithLogger(logger rental.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Engine.
// Records carry the trace and span ids of the active span when tracing is enabled.
func WithContextualLogger(logger rental.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
// It receives operation durations, error counters, out-of-stock and reconciliation gap counters.
func WithMetrics(collector rental.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
func WithTracing(collector rental.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}

// WithAuditPublisher sets a publisher that receives every audit entry after its transaction committed.
func WithAuditPublisher(publisher rental.AuditPublisher) Option {
	return func(e *Engine) error {
		e.auditPublisher = publisher
		return nil
	}
}
