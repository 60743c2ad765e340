package oteladapters

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// MetricsCollector records rental metrics through an OpenTelemetry meter.
// Durations become second-based histograms, counters Int64Counters and values Float64Gauges.
// Instruments are created lazily and cached by metric name.
type MetricsCollector struct {
	meter metric.Meter

	mu         sync.Mutex
	histograms map[string]metric.Float64Histogram
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Float64Gauge
}

func NewMetricsCollector(meter metric.Meter) *MetricsCollector {
	return &MetricsCollector{
		meter:      meter,
		histograms: make(map[string]metric.Float64Histogram),
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	m.RecordDurationContext(context.Background(), metricName, duration, labels)
}

func (m *MetricsCollector) RecordDurationContext(ctx context.Context, metricName string, duration time.Duration, labels map[string]string) {
	h, ok := cached(&m.mu, m.histograms, metricName, func(name string) (metric.Float64Histogram, error) {
		return m.meter.Float64Histogram(name, metric.WithDescription("Rental operation duration"), metric.WithUnit("s"))
	})
	if ok {
		h.Record(ctx, duration.Seconds(), metric.WithAttributes(toAttributes(labels)...))
	}
}

func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	m.IncrementCounterContext(context.Background(), metricName, labels)
}

func (m *MetricsCollector) IncrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	c, ok := cached(&m.mu, m.counters, metricName, func(name string) (metric.Int64Counter, error) {
		return m.meter.Int64Counter(name, metric.WithDescription("Rental operation counter"))
	})
	if ok {
		c.Add(ctx, 1, metric.WithAttributes(toAttributes(labels)...))
	}
}

// RecordValue sets a gauge, e.g. the available count of an item.
func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	m.RecordValueContext(context.Background(), metricName, value, labels)
}

func (m *MetricsCollector) RecordValueContext(ctx context.Context, metricName string, value float64, labels map[string]string) {
	g, ok := cached(&m.mu, m.gauges, metricName, func(name string) (metric.Float64Gauge, error) {
		return m.meter.Float64Gauge(name, metric.WithDescription("Rental current value"))
	})
	if ok {
		g.Record(ctx, value, metric.WithAttributes(toAttributes(labels)...))
	}
}

// cached returns the instrument registered under name, creating it on first use.
// A creation error drops the measurement.
func cached[T any](mu *sync.Mutex, cache map[string]T, name string, create func(string) (T, error)) (T, bool) {
	mu.Lock()
	defer mu.Unlock()

	if instrument, exists := cache[name]; exists {
		return instrument, true
	}

	instrument, err := create(name)
	if err != nil {
		var zero T
		return zero, false
	}

	cache[name] = instrument

	return instrument, true
}

func toAttributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}

var _ rental.ContextualMetricsCollector = (*MetricsCollector)(nil)
