package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Command handler metrics. Durations are histograms in seconds, everything else counts calls.
const (
	CommandHandlerDurationMetric   = "rental_commandhandler_handle_duration_seconds"
	CommandHandlerCallsMetric      = "rental_commandhandler_handle_calls_total"
	CommandHandlerIdempotentMetric = "rental_commandhandler_idempotent_operations_total"
	CommandHandlerCanceledMetric   = "rental_commandhandler_canceled_operations_total"
	CommandHandlerTimeoutMetric    = "rental_commandhandler_timeout_operations_total"
	CommandHandlerRejectedMetric   = "rental_commandhandler_rejected_operations_total"
	CommandHandlerTransientMetric  = "rental_commandhandler_transient_failures_total"
)

// Retry metrics, labeled with command_type and attempt_number.
// A steady rate of CommandHandlerRetriesMetric on one command type usually means a hot item.
const (
	CommandHandlerRetriesMetric           = "rental_commandhandler_retries_total"
	CommandHandlerRetryDelayMetric        = "rental_commandhandler_retry_delay_seconds"
	CommandHandlerMaxRetriesReachedMetric = "rental_commandhandler_max_retries_reached_total"
)

// Query handler metrics.
const (
	QueryHandlerDurationMetric = "rental_queryhandler_handle_duration_seconds"
	QueryHandlerCallsMetric    = "rental_queryhandler_handle_calls_total"
	QueryHandlerCanceledMetric = "rental_queryhandler_canceled_operations_total"
	QueryHandlerTimeoutMetric  = "rental_queryhandler_timeout_operations_total"
)

// Handler outcome, used as the status label, span status and log attribute.
const (
	StatusSuccess    = "success"
	StatusError      = "error"
	StatusIdempotent = "idempotent"
	StatusCanceled   = "canceled"
	StatusTimeout    = "timeout"
	StatusRejected   = "rejected"  // a business rule refused the operation
	StatusTransient  = "transient" // serialization failure or deadlock that outlived the retries
)

const (
	LogMsgCommandStarted   = "command handler started"
	LogMsgCommandCompleted = "command handler completed"
	LogMsgCommandRejected  = "command handler rejected"
	LogMsgCommandFailed    = "command handler failed"
	LogMsgQueryStarted     = "query handler started"
	LogMsgQueryCompleted   = "query handler completed"
	LogMsgQueryFailed      = "query handler failed"
)

const (
	LogAttrCommandType     = "command_type"
	LogAttrQueryType       = "query_type"
	LogAttrStatus          = "status"
	LogAttrDurationMS      = "duration_ms"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrError           = "error"
	LogAttrAttemptNumber   = "attempt_number"
	LogAttrErrorType       = "error_type"
	LogAttrFinalErrorType  = "final_error_type"
)

const (
	SpanNameCommandHandle = "commandhandler.handle"
	SpanNameQueryHandle   = "queryhandler.handle"
)

// The handler layer reuses the engine's observability interfaces, so one set of adapters serves both.
type (
	MetricsCollector           = rental.MetricsCollector
	ContextualMetricsCollector = rental.ContextualMetricsCollector
	TracingCollector           = rental.TracingCollector
	SpanContext                = rental.SpanContext
	ContextualLogger           = rental.ContextualLogger
	Logger                     = rental.Logger
)

// handlerKind holds the names that differ between command and query observability.
type handlerKind struct {
	typeAttr       string
	durationMetric string
	callsMetric    string
	outcomeMetrics map[string]string
	spanName       string
	msgStarted     string
	msgCompleted   string
	msgFailed      string
	msgRejected    string
}

var (
	commandKind = handlerKind{
		typeAttr:       LogAttrCommandType,
		durationMetric: CommandHandlerDurationMetric,
		callsMetric:    CommandHandlerCallsMetric,
		outcomeMetrics: map[string]string{
			StatusIdempotent: CommandHandlerIdempotentMetric,
			StatusCanceled:   CommandHandlerCanceledMetric,
			StatusTimeout:    CommandHandlerTimeoutMetric,
			StatusRejected:   CommandHandlerRejectedMetric,
			StatusTransient:  CommandHandlerTransientMetric,
		},
		spanName:     SpanNameCommandHandle,
		msgStarted:   LogMsgCommandStarted,
		msgCompleted: LogMsgCommandCompleted,
		msgFailed:    LogMsgCommandFailed,
		msgRejected:  LogMsgCommandRejected,
	}

	queryKind = handlerKind{
		typeAttr:       LogAttrQueryType,
		durationMetric: QueryHandlerDurationMetric,
		callsMetric:    QueryHandlerCallsMetric,
		outcomeMetrics: map[string]string{
			StatusCanceled: QueryHandlerCanceledMetric,
			StatusTimeout:  QueryHandlerTimeoutMetric,
		},
		spanName:     SpanNameQueryHandle,
		msgStarted:   LogMsgQueryStarted,
		msgCompleted: LogMsgQueryCompleted,
		msgFailed:    LogMsgQueryFailed,
	}
)

func (k handlerKind) labels(handlerType, status string) map[string]string {
	return map[string]string{
		k.typeAttr:    handlerType,
		LogAttrStatus: status,
	}
}

func (k handlerKind) recordMetrics(
	ctx context.Context,
	collector MetricsCollector,
	handlerType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	recordDuration(ctx, collector, k.durationMetric, duration, k.labels(handlerType, status))
	incrementCounter(ctx, collector, k.callsMetric, k.labels(handlerType, status))

	// Outcome counters are separate series
	if metric, ok := k.outcomeMetrics[status]; ok {
		incrementCounter(ctx, collector, metric, k.labels(handlerType, status))
	}
}

func (k handlerKind) startSpan(ctx context.Context, collector TracingCollector, handlerType string) (context.Context, SpanContext) {
	if collector == nil {
		return ctx, nil
	}

	return collector.StartSpan(ctx, k.spanName, map[string]string{k.typeAttr: handlerType})
}

func (k handlerKind) logStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, handlerType string) {
	logAt(ctx, logger, contextualLogger, levelInfo, k.msgStarted, k.typeAttr, handlerType)
}

func (k handlerKind) logSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	handlerType string,
	businessOutcome string,
	duration time.Duration,
) {
	logAt(ctx, logger, contextualLogger, levelInfo, k.msgCompleted,
		k.typeAttr, handlerType,
		LogAttrBusinessOutcome, businessOutcome,
		LogAttrDurationMS, ToMilliseconds(duration),
	)
}

// logError writes business rejections at warn level when the kind has a rejection message.
func (k handlerKind) logError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, handlerType string, err error) {
	if k.msgRejected != "" && IsDomainRejection(err) {
		logAt(ctx, logger, contextualLogger, levelWarn, k.msgRejected, k.typeAttr, handlerType, LogAttrError, err.Error())
		return
	}

	logAt(ctx, logger, contextualLogger, levelError, k.msgFailed, k.typeAttr, handlerType, LogAttrError, err.Error())
}

// BuildRetryLabels creates the metric labels of one retry attempt.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType:   commandType,
		LogAttrAttemptNumber: fmt.Sprintf("%d", attemptNumber),
		LogAttrErrorType:     errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// CommandStatusFromError maps a failed command to the status used for metrics, spans and logs.
func CommandStatusFromError(err error) string {
	switch {
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsTransientError(err):
		return StatusTransient
	case IsDomainRejection(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// RecordCommandMetrics records the duration and call counters of one command, plus its outcome counter.
func RecordCommandMetrics(ctx context.Context, collector MetricsCollector, commandType, status string, duration time.Duration) {
	commandKind.recordMetrics(ctx, collector, commandType, status, duration)
}

// RecordQueryMetrics records the duration and call counters of one query.
func RecordQueryMetrics(ctx context.Context, collector MetricsCollector, queryType, status string, duration time.Duration) {
	queryKind.recordMetrics(ctx, collector, queryType, status, duration)
}

// StartCommandSpan returns ctx and a nil span when tracing is disabled.
func StartCommandSpan(ctx context.Context, collector TracingCollector, commandType string) (context.Context, SpanContext) {
	return commandKind.startSpan(ctx, collector, commandType)
}

// StartQuerySpan returns ctx and a nil span when tracing is disabled.
func StartQuerySpan(ctx context.Context, collector TracingCollector, queryType string) (context.Context, SpanContext) {
	return queryKind.startSpan(ctx, collector, queryType)
}

func FinishCommandSpan(collector TracingCollector, span SpanContext, status string, duration time.Duration, err error) {
	finishSpan(collector, span, status, duration, err)
}

func FinishQuerySpan(collector TracingCollector, span SpanContext, status string, duration time.Duration, err error) {
	finishSpan(collector, span, status, duration, err)
}

func LogCommandStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, commandType string) {
	commandKind.logStart(ctx, logger, contextualLogger, commandType)
}

func LogCommandSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	businessOutcome string,
	duration time.Duration,
) {
	commandKind.logSuccess(ctx, logger, contextualLogger, commandType, businessOutcome, duration)
}

// LogCommandError logs business rejections as warnings and everything else as errors.
func LogCommandError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, commandType string, err error) {
	commandKind.logError(ctx, logger, contextualLogger, commandType, err)
}

func LogQueryStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, queryType string) {
	queryKind.logStart(ctx, logger, contextualLogger, queryType)
}

func LogQuerySuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	businessOutcome string,
	duration time.Duration,
) {
	queryKind.logSuccess(ctx, logger, contextualLogger, queryType, businessOutcome, duration)
}

func LogQueryError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, queryType string, err error) {
	queryKind.logError(ctx, logger, contextualLogger, queryType, err)
}

func recordDuration(
	ctx context.Context,
	collector MetricsCollector,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	collector.RecordDuration(metric, duration, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

func finishSpan(collector TracingCollector, span SpanContext, status string, duration time.Duration, err error) {
	if collector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	collector.FinishSpan(span, status, attrs)
}

type logLevel int

const (
	levelInfo logLevel = iota
	levelWarn
	levelError
)

// logAt prefers the contextual logger so trace ids end up in the record.
func logAt(ctx context.Context, logger Logger, contextualLogger ContextualLogger, level logLevel, msg string, args ...any) {
	switch {
	case contextualLogger != nil:
		switch level {
		case levelWarn:
			contextualLogger.WarnContext(ctx, msg, args...)
		case levelError:
			contextualLogger.ErrorContext(ctx, msg, args...)
		default:
			contextualLogger.InfoContext(ctx, msg, args...)
		}
	case logger != nil:
		switch level {
		case levelWarn:
			logger.Warn(msg, args...)
		case levelError:
			logger.Error(msg, args...)
		default:
			logger.Info(msg, args...)
		}
	}
}

// IsCancellationError reports whether err comes from a canceled context.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError reports whether err comes from an exceeded context deadline.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsTransientError reports whether err is a serialization failure or deadlock reported by the engine.
func IsTransientError(err error) bool {
	return errors.Is(err, rental.ErrTransient)
}
