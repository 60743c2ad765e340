package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/oteladapters"
)

func newTracing() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("rental-test")), exporter
}

func spanAttribute(span tracetest.SpanStub, key string) (string, bool) {
	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			return attr.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// setup
	collector, exporter := newTracing()

	// act
	ctx, spanCtx := collector.StartSpan(context.Background(), "rental.reserve", map[string]string{"item_id": "catan"})
	spanCtx.AddAttribute("holder", "user:u-1")
	collector.FinishSpan(spanCtx, "success", map[string]string{"hold_id": "h-1"})

	// assert
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid(), "the returned context should carry the span")

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "rental.reserve", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	for key, want := range map[string]string{"item_id": "catan", "holder": "user:u-1", "hold_id": "h-1"} {
		got, found := spanAttribute(spans[0], key)
		assert.True(t, found, "attribute %s missing", key)
		assert.Equal(t, want, got)
	}
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status string
		code   codes.Code
	}{
		{status: "success", code: codes.Ok},
		{status: "idempotent", code: codes.Ok},
		{status: "error", code: codes.Error},
		{status: "canceled", code: codes.Error},
		{status: "timeout", code: codes.Error},
		{status: "conflict", code: codes.Unset},
		{status: "something-else", code: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			collector, exporter := newTracing()

			_, spanCtx := collector.StartSpan(context.Background(), "rental.op", nil)
			collector.FinishSpan(spanCtx, tc.status, nil)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.code, spans[0].Status.Code)
		})
	}
}

type foreignSpanContext struct{}

func (foreignSpanContext) SetStatus(string)            {}
func (foreignSpanContext) AddAttribute(string, string) {}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpanContexts(t *testing.T) {
	collector, exporter := newTracing()

	assert.NotPanics(t, func() {
		collector.FinishSpan(foreignSpanContext{}, "success", nil)
		collector.FinishSpan(nil, "success", nil)
	})

	assert.Empty(t, exporter.GetSpans())
}
