package shell

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

const (
	errorTypeNone             = "none"
	errorTypeTransient        = "transient"
	errorTypeDomainRejection  = "domain_rejection"
	errorTypeContextCanceled  = "context_canceled"
	errorTypeDeadlineExceeded = "context_deadline_exceeded"
	errorTypeOther            = "other"
)

var (
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")
	ErrEmptyCommandType    = errors.New("command type must not be empty")
	ErrInvalidMaxAttempts  = errors.New("max attempts must be positive")
	ErrNegativeBaseDelay   = errors.New("base delay must not be negative")
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc is one attempt of a retried operation.
type RetryableFunc func(ctx context.Context) error

// RetryOption configures RetryWithExponentialBackoff.
type RetryOption func(*retryConfig) error

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector MetricsCollector
	commandType      string
}

// backoff returns the pause before the given attempt; attempt 0 never waits.
func (c *retryConfig) backoff(attempt int) time.Duration {
	if attempt == 0 {
		return 0
	}

	delay := c.baseDelay << (attempt - 1)
	jitter := time.Duration(rand.Float64() * float64(delay) * c.jitterFactor) //nolint:gosec // jitter only

	return delay + jitter
}

func (c *retryConfig) count(ctx context.Context, name string, labels map[string]string) {
	if c.metricsCollector == nil {
		return
	}

	if cc, ok := c.metricsCollector.(ContextualMetricsCollector); ok {
		cc.IncrementCounterContext(ctx, name, labels)
		return
	}

	c.metricsCollector.IncrementCounter(name, labels)
}

func (c *retryConfig) observe(ctx context.Context, name string, d time.Duration, labels map[string]string) {
	if c.metricsCollector == nil {
		return
	}

	if cc, ok := c.metricsCollector.(ContextualMetricsCollector); ok {
		cc.RecordDurationContext(ctx, name, d, labels)
		return
	}

	c.metricsCollector.RecordDuration(name, d, labels)
}

// RetryWithExponentialBackoff calls fn until it succeeds, fails with a non-transient error,
// the context ends or the attempts are used up.
//
// With the defaults the pauses are 10, 20, 40, 80 and 160 ms, each plus up to 30% jitter.
// Only rental.ErrTransient is retried. Out of stock and timeouts fail on the first attempt.
func RetryWithExponentialBackoff(
	ctx context.Context,
	fn RetryableFunc,
	options ...RetryOption,
) (RetryMetrics, error) {
	cfg := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(cfg); err != nil {
			return RetryMetrics{}, err
		}
	}

	metrics := RetryMetrics{LastErrorType: errorTypeNone}

	var err error

	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if pause := cfg.backoff(attempt); pause > 0 {
			cfg.observe(ctx, CommandHandlerRetryDelayMetric, pause, map[string]string{
				LogAttrCommandType:   cfg.commandType,
				LogAttrAttemptNumber: strconv.Itoa(attempt),
			})

			timer := time.NewTimer(pause)
			select {
			case <-timer.C:
				metrics.TotalDelay += pause
			case <-ctx.Done():
				timer.Stop()
				metrics.LastErrorType = getErrorType(ctx.Err())

				return metrics, ctx.Err()
			}
		}

		metrics.Attempts++

		err = fn(ctx)
		metrics.LastErrorType = getErrorType(err)

		if err == nil || !isRetryableError(err) {
			return metrics, err
		}

		// the final attempt is not followed by a retry
		if attempt < cfg.maxAttempts-1 {
			cfg.count(ctx, CommandHandlerRetriesMetric, BuildRetryLabels(cfg.commandType, attempt+1, metrics.LastErrorType))
		}
	}

	metrics.RetriesExhausted = true
	cfg.count(ctx, CommandHandlerMaxRetriesReachedMetric, map[string]string{
		LogAttrCommandType:    cfg.commandType,
		LogAttrFinalErrorType: metrics.LastErrorType,
	})

	return metrics, err
}

func isRetryableError(err error) bool {
	return errors.Is(err, rental.ErrTransient)
}

// getErrorType maps an error to a low-cardinality label value.
func getErrorType(err error) string {
	switch {
	case err == nil:
		return errorTypeNone
	case errors.Is(err, rental.ErrTransient):
		return errorTypeTransient
	case errors.Is(err, context.Canceled):
		return errorTypeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeDeadlineExceeded
	case IsDomainRejection(err):
		return errorTypeDomainRejection
	default:
		return errorTypeOther
	}
}

// WithMaxAttempts sets the number of attempts, the first one included.
func WithMaxAttempts(attempts int) RetryOption {
	return func(cfg *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		cfg.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the first pause. Every further pause doubles it.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(cfg *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		cfg.baseDelay = delay

		return nil
	}
}

func WithJitterFactor(factor float64) RetryOption {
	return func(cfg *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		cfg.jitterFactor = factor

		return nil
	}
}

// WithMetrics reports retries, pauses and exhaustion to collector, labeled with commandType.
func WithMetrics(collector MetricsCollector, commandType string) RetryOption {
	return func(cfg *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if commandType == "" {
			return ErrEmptyCommandType
		}

		cfg.metricsCollector = collector
		cfg.commandType = commandType

		return nil
	}
}
