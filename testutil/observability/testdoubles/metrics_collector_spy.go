package testdoubles

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// MetricKind tells duration, counter and value records apart.
type MetricKind string

// Metric kinds captured by MetricsCollectorSpy.
const (
	MetricKindDuration MetricKind = "duration"
	MetricKindCounter  MetricKind = "counter"
	MetricKindValue    MetricKind = "value"
)

// SpyMetricRecord is one captured metrics call.
type SpyMetricRecord struct {
	Kind     MetricKind
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
	Context  bool
}

// MetricsCollectorSpy captures metrics calls for testing.
// It implements rental.ContextualMetricsCollector, so instrumented code takes the context-aware path.
type MetricsCollectorSpy struct {
	mu      sync.Mutex
	records []SpyMetricRecord
}

var _ rental.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)

// NewMetricsCollectorSpy creates an empty MetricsCollectorSpy.
func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

// RecordDuration implements rental.MetricsCollector.
func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: MetricKindDuration, Metric: metric, Duration: duration, Labels: labels})
}

// IncrementCounter implements rental.MetricsCollector.
func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: MetricKindCounter, Metric: metric, Labels: labels})
}

// RecordValue implements rental.MetricsCollector.
func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: MetricKindValue, Metric: metric, Value: value, Labels: labels})
}

// RecordDurationContext implements rental.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) RecordDurationContext(
	_ context.Context,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {
	s.add(SpyMetricRecord{Kind: MetricKindDuration, Metric: metric, Duration: duration, Labels: labels, Context: true})
}

// IncrementCounterContext implements rental.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: MetricKindCounter, Metric: metric, Labels: labels, Context: true})
}

// RecordValueContext implements rental.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) RecordValueContext(
	_ context.Context,
	metric string,
	value float64,
	labels map[string]string,
) {
	s.add(SpyMetricRecord{Kind: MetricKindValue, Metric: metric, Value: value, Labels: labels, Context: true})
}

func (s *MetricsCollectorSpy) add(record SpyMetricRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Callers may reuse their label maps
	record.Labels = maps.Clone(record.Labels)
	s.records = append(s.records, record)
}

// Records returns a copy of all captured records in call order.
func (s *MetricsCollectorSpy) Records() []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyMetricRecord, len(s.records))
	copy(records, s.records)

	return records
}

// RecordsFor returns the captured records of one kind for one metric.
func (s *MetricsCollectorSpy) RecordsFor(kind MetricKind, metric string) []SpyMetricRecord {
	var found []SpyMetricRecord

	for _, record := range s.Records() {
		if record.Kind == kind && record.Metric == metric {
			found = append(found, record)
		}
	}

	return found
}

// CountCounter returns how often the counter metric was incremented.
func (s *MetricsCollectorSpy) CountCounter(metric string) int {
	return len(s.RecordsFor(MetricKindCounter, metric))
}

// CountDuration returns how many durations were recorded for the metric.
func (s *MetricsCollectorSpy) CountDuration(metric string) int {
	return len(s.RecordsFor(MetricKindDuration, metric))
}

// Reset drops all captured records.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
}

// HasCounter starts a fluent check for a counter record of the metric.
func (s *MetricsCollectorSpy) HasCounter(metric string) *MetricRecordMatcher {
	return &MetricRecordMatcher{candidates: s.RecordsFor(MetricKindCounter, metric)}
}

// HasDuration starts a fluent check for a duration record of the metric.
func (s *MetricsCollectorSpy) HasDuration(metric string) *MetricRecordMatcher {
	return &MetricRecordMatcher{candidates: s.RecordsFor(MetricKindDuration, metric)}
}

// HasValue starts a fluent check for a value record of the metric.
func (s *MetricsCollectorSpy) HasValue(metric string) *MetricRecordMatcher {
	return &MetricRecordMatcher{candidates: s.RecordsFor(MetricKindValue, metric)}
}

// MetricRecordMatcher narrows candidate records by label until Assert is called.
type MetricRecordMatcher struct {
	candidates []SpyMetricRecord
}

// WithLabel keeps the records that carry the label with the given value.
func (m *MetricRecordMatcher) WithLabel(key, value string) *MetricRecordMatcher {
	kept := m.candidates[:0:0]

	for _, record := range m.candidates {
		if record.Labels[key] == value {
			kept = append(kept, record)
		}
	}

	m.candidates = kept

	return m
}

// WithStatus keeps the records labeled with the status.
func (m *MetricRecordMatcher) WithStatus(status string) *MetricRecordMatcher {
	return m.WithLabel("status", status)
}

// WithOperation keeps the records labeled with the operation.
func (m *MetricRecordMatcher) WithOperation(operation string) *MetricRecordMatcher {
	return m.WithLabel("operation", operation)
}

// Assert reports whether any record survived the chain.
func (m *MetricRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}

// Count returns how many records survived the chain.
func (m *MetricRecordMatcher) Count() int {
	return len(m.candidates)
}
