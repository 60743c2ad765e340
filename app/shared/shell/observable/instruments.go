package observable

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell"
)

// instruments are the optional observability sinks of a wrapper. Any of them may be nil.
type instruments struct {
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// queryStatusFromError maps a failed query to its status. Queries have no business rejections.
func queryStatusFromError(err error) string {
	switch {
	case shell.IsCancellationError(err):
		return shell.StatusCanceled
	case shell.IsTimeoutError(err):
		return shell.StatusTimeout
	default:
		return shell.StatusError
	}
}
