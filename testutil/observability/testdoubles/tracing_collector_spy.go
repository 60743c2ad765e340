package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// SpySpanContext is the span handed out by TracingCollectorSpy.
type SpySpanContext struct {
	mu         sync.Mutex
	status     string
	attributes map[string]string
}

// SetStatus implements rental.SpanContext.
func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = status
}

// AddAttribute implements rental.SpanContext.
func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}

	c.attributes[key] = value
}

// Status returns the status set on the span.
func (c *SpySpanContext) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

// Attributes returns a copy of the attributes added to the span.
func (c *SpySpanContext) Attributes() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return maps.Clone(c.attributes)
}

// SpySpanRecord is one span, updated in place when it is finished.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Finished        bool
	Status          string
	EndAttributes   map[string]string
	SpanContext     *SpySpanContext
}

// TracingCollectorSpy captures tracing calls for testing.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []SpySpanRecord
}

var _ rental.TracingCollector = (*TracingCollectorSpy)(nil)

// NewTracingCollectorSpy creates an empty TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

// StartSpan implements rental.TracingCollector.
func (s *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, rental.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spanCtx := &SpySpanContext{}

	s.spans = append(s.spans, SpySpanRecord{
		Name:            name,
		StartAttributes: maps.Clone(attrs),
		SpanContext:     spanCtx,
	})

	return ctx, spanCtx
}

// FinishSpan implements rental.TracingCollector.
func (s *TracingCollectorSpy) FinishSpan(spanCtx rental.SpanContext, status string, attrs map[string]string) {
	spySpan, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.spans {
		if s.spans[i].SpanContext == spySpan {
			s.spans[i].Finished = true
			s.spans[i].Status = status
			s.spans[i].EndAttributes = maps.Clone(attrs)

			return
		}
	}
}

// Spans returns a copy of all captured spans in start order.
func (s *TracingCollectorSpy) Spans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	spans := make([]SpySpanRecord, len(s.spans))
	copy(spans, s.spans)

	return spans
}

// Reset drops all captured spans.
func (s *TracingCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spans = nil
}

// HasSpan starts a fluent check for a span with the name.
func (s *TracingCollectorSpy) HasSpan(name string) *SpanRecordMatcher {
	var candidates []SpySpanRecord

	for _, span := range s.Spans() {
		if span.Name == name {
			candidates = append(candidates, span)
		}
	}

	return &SpanRecordMatcher{candidates: candidates}
}

// SpanRecordMatcher narrows candidate spans until Assert is called.
type SpanRecordMatcher struct {
	candidates []SpySpanRecord
}

func (m *SpanRecordMatcher) keep(predicate func(SpySpanRecord) bool) *SpanRecordMatcher {
	kept := m.candidates[:0:0]

	for _, span := range m.candidates {
		if predicate(span) {
			kept = append(kept, span)
		}
	}

	m.candidates = kept

	return m
}

// WithStatus keeps the finished spans with the status.
func (m *SpanRecordMatcher) WithStatus(status string) *SpanRecordMatcher {
	return m.keep(func(span SpySpanRecord) bool {
		return span.Finished && span.Status == status
	})
}

// WithStartAttribute keeps the spans started with the attribute.
func (m *SpanRecordMatcher) WithStartAttribute(key, value string) *SpanRecordMatcher {
	return m.keep(func(span SpySpanRecord) bool {
		return span.StartAttributes[key] == value
	})
}

// WithEndAttribute keeps the spans finished with the attribute.
func (m *SpanRecordMatcher) WithEndAttribute(key, value string) *SpanRecordMatcher {
	return m.keep(func(span SpySpanRecord) bool {
		return span.EndAttributes[key] == value
	})
}

// WithEndAttributeKey keeps the spans finished with the attribute set to anything.
func (m *SpanRecordMatcher) WithEndAttributeKey(key string) *SpanRecordMatcher {
	return m.keep(func(span SpySpanRecord) bool {
		_, ok := span.EndAttributes[key]
		return ok
	})
}

// Assert reports whether any span survived the chain.
func (m *SpanRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}
