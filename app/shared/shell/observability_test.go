package shell

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/testutil/observability/testdoubles"
)

func Test_CommandStatusFromError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{"canceled", fmt.Errorf("reserve: %w", context.Canceled), StatusCanceled},
		{"timeout", context.DeadlineExceeded, StatusTimeout},
		{"transient", fmt.Errorf("reserve: %w", rental.ErrTransient), StatusTransient},
		{"out of stock", rental.ErrOutOfStock, StatusRejected},
		{"duplicate hold", rental.ErrDuplicateHold, StatusRejected},
		{"infrastructure", errors.New("connection refused"), StatusError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CommandStatusFromError(tc.err))
		})
	}
}

func Test_RecordCommandMetrics_CountsOutcomeSeparately(t *testing.T) {
	// setup
	metrics := testdoubles.NewMetricsCollectorSpy()
	ctx := context.Background()

	// act
	RecordCommandMetrics(ctx, metrics, "Reserve", StatusRejected, 3*time.Millisecond)
	RecordCommandMetrics(ctx, metrics, "ReturnLoan", StatusIdempotent, time.Millisecond)

	// assert
	assert.Equal(t, 2, metrics.CountDuration(CommandHandlerDurationMetric))
	assert.Equal(t, 2, metrics.CountCounter(CommandHandlerCallsMetric))
	assert.True(t, metrics.HasCounter(CommandHandlerRejectedMetric).
		WithLabel(LogAttrCommandType, "Reserve").Assert())
	assert.True(t, metrics.HasCounter(CommandHandlerIdempotentMetric).
		WithLabel(LogAttrCommandType, "ReturnLoan").Assert())
	assert.Zero(t, metrics.CountCounter(CommandHandlerTimeoutMetric))
}

func Test_RecordCommandMetrics_NilCollector(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordCommandMetrics(context.Background(), nil, "Reserve", StatusSuccess, time.Millisecond)
	})
}

func Test_LogCommandError_RejectionIsWarning(t *testing.T) {
	// setup
	logger := testdoubles.NewContextualLoggerSpy()
	ctx := context.Background()

	// act
	LogCommandError(ctx, nil, logger, "Reserve", rental.ErrOutOfStock)
	LogCommandError(ctx, nil, logger, "Reserve", errors.New("connection refused"))

	// assert
	assert.True(t, logger.HasLog(testdoubles.LevelWarn, LogMsgCommandRejected))
	assert.True(t, logger.HasLog(testdoubles.LevelError, LogMsgCommandFailed))
}

func Test_FinishCommandSpan_AddsErrorAttribute(t *testing.T) {
	// setup
	tracing := testdoubles.NewTracingCollectorSpy()

	// act
	_, span := StartCommandSpan(context.Background(), tracing, "Reserve")
	FinishCommandSpan(tracing, span, StatusRejected, time.Millisecond, rental.ErrOutOfStock)

	// assert
	assert.True(t, tracing.HasSpan(SpanNameCommandHandle).
		WithStartAttribute(LogAttrCommandType, "Reserve").
		WithStatus(StatusRejected).
		WithEndAttribute(LogAttrError, rental.ErrOutOfStock.Error()).
		Assert())
}
