package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const (
	metricOperationDuration  = "rental_engine_operation_duration_seconds"
	metricOperationErrors    = "rental_engine_errors_total"
	metricOutOfStock         = "rental_out_of_stock_total"
	metricReconciliationGaps = "rental_reconciliation_gaps_total"
	metricHoldsReclaimed     = "rental_holds_reclaimed_total"
	metricAvailableCount     = "rental_available_count"
	spanNamePrefix           = "rental."
	spanAttrOperation        = "operation"
	spanAttrItemID           = "item_id"
	spanAttrHoldID           = "hold_id"
	spanAttrHoldKind         = "hold_kind"
	spanAttrErrorType        = "error_type"
	spanAttrDurationMS       = "duration_ms"
	labelStatus              = "status"
	labelErrorType           = "error_type"
	labelItemID              = "item_id"
	statusSuccess            = "success"
	statusError              = "error"
	statusConflict           = "conflict"
	statusCanceled           = "canceled"
	statusTimeout            = "timeout"
)

const (
	operationReserve         = "reserve"
	operationDirectLoan      = "direct_loan"
	operationConvertToLoan   = "convert_to_loan"
	operationReturn          = "return"
	operationReturnByHolder  = "return_by_holder"
	operationCancel          = "cancel"
	operationCancelByHolder  = "cancel_by_holder"
	operationExpire          = "expire"
	operationExpireDue       = "expire_due"
	operationLazyReclaim     = "lazy_reclaim"
	operationResolveStatus   = "resolve_status"
	operationRegisterItem    = "register_item"
	operationGetItem         = "get_item"
	operationSetManualStatus = "set_manual_status"
	operationListAuditLog    = "list_audit_log"
	operationHolderHolds     = "holder_holds"
	operationItemHolds       = "item_holds"
	operationGetHold         = "get_hold"
	operationCheckInvariants = "check_invariants"
	operationMigrate         = "migrate"
)

// errorTypeFor maps an operation error to a low-cardinality label value.
func errorTypeFor(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, rental.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, rental.ErrDuplicateHold):
		return "duplicate_hold"
	case errors.Is(err, rental.ErrHoldNotFound):
		return "hold_not_found"
	case errors.Is(err, rental.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, rental.ErrWrongKind):
		return "wrong_kind"
	case errors.Is(err, rental.ErrAlreadyClosed):
		return "already_closed"
	case errors.Is(err, rental.ErrReservationExpired):
		return "reservation_expired"
	case errors.Is(err, rental.ErrNotYetExpired):
		return "not_yet_expired"
	case errors.Is(err, rental.ErrItemWithdrawn):
		return "item_withdrawn"
	case errors.Is(err, rental.ErrInvalidHolder), errors.Is(err, rental.ErrEmptyItemID),
		errors.Is(err, rental.ErrEmptyActor), errors.Is(err, rental.ErrInvalidQuantity),
		errors.Is(err, rental.ErrInvalidManualStatus):
		return "validation"
	case errors.Is(err, rental.ErrLedgerInvariant):
		return "ledger_invariant"
	case errors.Is(err, rental.ErrTransient):
		return "transient"
	default:
		return "database"
	}
}

// statusFor maps an operation error to the span and metric status.
// Domain rejections are conflicts with the current state, not failures of the engine.
func statusFor(err error) string {
	switch errorTypeFor(err) {
	case "canceled":
		return statusCanceled
	case "timeout":
		return statusTimeout
	case "database", "ledger_invariant", "transient":
		return statusError
	default:
		return statusConflict
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (e Engine) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (e Engine) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	if e.logger != nil {
		e.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, e.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, e.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level.
func (e Engine) logOperation(ctx context.Context, action string, args ...any) {
	if e.logger != nil {
		e.logger.Info(logMsgOperation+action, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level.
func (e Engine) logWarn(ctx context.Context, message string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(message, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.WarnContext(ctx, message, args...)
	}
}

// logError logs error information at the error level.
func (e Engine) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if e.logger != nil {
		e.logger.Error(message, allArgs...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// recordDurationMetricsContext records duration metrics with context if the collector supports it.
func (e Engine) recordDurationMetricsContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	labels map[string]string,
) {
	if e.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := e.metricsCollector.(rental.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
		return
	}

	e.metricsCollector.RecordDuration(metricName, duration, labels)
}

// incrementCounterContext increments a counter with context if the collector supports it.
func (e Engine) incrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := e.metricsCollector.(rental.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricName, labels)
		return
	}

	e.metricsCollector.IncrementCounter(metricName, labels)
}

// recordValueMetricsContext records a gauge value with context if the collector supports it.
func (e Engine) recordValueMetricsContext(
	ctx context.Context,
	metricName string,
	value float64,
	labels map[string]string,
) {
	if e.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := e.metricsCollector.(rental.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
		return
	}

	e.metricsCollector.RecordValue(metricName, value, labels)
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (e Engine) startTraceSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, rental.SpanContext) {
	if e.tracingCollector != nil {
		return e.tracingCollector.StartSpan(ctx, name, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (e Engine) finishTraceSpan(spanCtx rental.SpanContext, status string, attrs map[string]string) {
	if e.tracingCollector != nil && spanCtx != nil {
		e.tracingCollector.FinishSpan(spanCtx, status, attrs)
	}
}

// === Operation Observer Pattern ===
// One observer per engine call bundles the span, the duration metric and the outcome logging.

// operationObserver encapsulates span lifecycle and metrics recording for one engine operation.
type operationObserver struct {
	e         Engine
	ctx       context.Context
	operation string
	span      rental.SpanContext
	start     time.Time
}

// observe starts the span of an operation and returns the observer plus the span's context.
func (e Engine) observe(ctx context.Context, operation string, attrs map[string]string) (*operationObserver, context.Context) {
	spanAttrs := map[string]string{spanAttrOperation: operation}
	for key, value := range attrs {
		if value != "" {
			spanAttrs[key] = value
		}
	}

	spanCtx, span := e.startTraceSpan(ctx, spanNamePrefix+operation, spanAttrs)

	return &operationObserver{
		e:         e,
		ctx:       spanCtx,
		operation: operation,
		span:      span,
		start:     time.Now(),
	}, spanCtx
}

// finish records the outcome of the operation. err may be nil.
func (o *operationObserver) finish(err error, attrs map[string]string) {
	duration := time.Since(o.start)

	if err == nil {
		o.finishSuccess(duration, attrs)
		return
	}

	o.finishError(err, duration)
}

func (o *operationObserver) finishSuccess(duration time.Duration, attrs map[string]string) {
	o.e.recordDurationMetricsContext(o.ctx, metricOperationDuration, duration, map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       statusSuccess,
	})

	if o.span != nil {
		o.span.AddAttribute(spanAttrDurationMS, o.formatDuration(duration))
	}

	o.e.finishTraceSpan(o.span, statusSuccess, attrs)
}

func (o *operationObserver) finishError(err error, duration time.Duration) {
	errorType := errorTypeFor(err)
	status := statusFor(err)

	o.e.recordDurationMetricsContext(o.ctx, metricOperationDuration, duration, map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       status,
	})

	o.e.incrementCounterContext(o.ctx, metricOperationErrors, map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       status,
		labelErrorType:    errorType,
	})

	if errors.Is(err, rental.ErrOutOfStock) {
		o.e.incrementCounterContext(o.ctx, metricOutOfStock, map[string]string{spanAttrOperation: o.operation})
	}

	switch status {
	case statusError:
		o.e.logError(o.ctx, logMsgOperationFailed, err, spanAttrOperation, o.operation)
	default:
		o.e.logOperation(o.ctx, logMsgOperationRejected, spanAttrOperation, o.operation, logAttrReason, errorType)
	}

	if o.span != nil {
		o.span.AddAttribute(spanAttrErrorType, errorType)
		o.span.AddAttribute(spanAttrDurationMS, o.formatDuration(duration))
	}

	o.e.finishTraceSpan(o.span, status, map[string]string{spanAttrErrorType: errorType})
}

// formatDuration formats a duration for span attributes.
func (o *operationObserver) formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.2f", o.e.toMilliseconds(duration))
}
