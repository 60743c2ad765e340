package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

var (
	_ rental.TracingCollector = (*TracingCollector)(nil)
	_ rental.SpanContext      = (*OTelSpanContext)(nil)
)

// spanOutcomes maps operation statuses to span status codes. Statuses not listed
// leave the code unset and are recorded as a "status" attribute instead.
var spanOutcomes = map[string]struct {
	code        codes.Code
	description string
}{
	"ok":         {codes.Ok, ""},
	"success":    {codes.Ok, ""},
	"idempotent": {codes.Ok, ""},
	"error":      {codes.Error, "rental operation failed"},
	"failed":     {codes.Error, "rental operation failed"},
	"canceled":   {codes.Error, "rental operation canceled"},
	"cancelled":  {codes.Error, "rental operation canceled"},
	"timeout":    {codes.Error, "rental operation timed out"},
}

// TracingCollector opens one OpenTelemetry span per rental operation.
type TracingCollector struct {
	tracer trace.Tracer
}

func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, rental.SpanContext) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return ctx, &OTelSpanContext{span: span}
}

// FinishSpan is a no-op for span contexts that did not come from StartSpan.
func (t *TracingCollector) FinishSpan(spanCtx rental.SpanContext, status string, attrs map[string]string) {
	sc, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	sc.span.SetAttributes(toAttributes(attrs)...)
	sc.SetStatus(status)
	sc.span.End()
}

type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps status onto the span. A "conflict", such as out of stock, is not a span error.
func (s *OTelSpanContext) SetStatus(status string) {
	outcome, known := spanOutcomes[status]
	if !known {
		s.span.SetAttributes(attribute.String("status", status))
		return
	}

	s.span.SetStatus(outcome.code, outcome.description)
}

func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}
