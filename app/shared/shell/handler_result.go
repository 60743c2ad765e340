package shell

import "time"

// RetryMetrics describes how RetryWithExponentialBackoff got to its outcome.
type RetryMetrics struct {
	// Attempts is the number of times the function ran (1 without retries).
	Attempts int

	// TotalDelay is the time spent in backoff sleeps only.
	TotalDelay time.Duration

	// LastErrorType is the error type of the last attempt, "none" on success.
	LastErrorType string

	// RetriesExhausted is true when every attempt failed with a transient error.
	RetriesExhausted bool
}

// HandlerResult represents the outcome of a command handler execution.
// It captures the business outcome (idempotency) and execution metadata (retries)
// without coupling the handler to an observability implementation.
type HandlerResult struct {
	// Idempotent is true when the target state was already reached, like returning a returned loan.
	Idempotent bool

	RetryAttempts    int
	TotalRetryDelay  time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

// NewSuccessResult creates a HandlerResult for a state-changing success.
func NewSuccessResult(retryMetrics RetryMetrics) HandlerResult {
	return newResult(false, retryMetrics)
}

// NewIdempotentResult creates a HandlerResult for an operation that changed nothing.
func NewIdempotentResult(retryMetrics RetryMetrics) HandlerResult {
	return newResult(true, retryMetrics)
}

// NewErrorResult creates a HandlerResult for a failed operation, keeping its retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return newResult(false, retryMetrics)
}

func newResult(idempotent bool, retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		Idempotent:       idempotent,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
