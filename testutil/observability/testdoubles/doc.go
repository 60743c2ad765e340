// Package testdoubles provides spies for the rental observability interfaces.
//
// The spies record every call so tests can assert on emitted telemetry
// without running an OpenTelemetry backend:
//   - MetricsCollectorSpy: duration, counter and value records
//   - TracingCollectorSpy: started and finished spans
//   - ContextualLoggerSpy: plain and context-aware log calls
//   - LogHandlerSpy: slog records, for code that is handed a *slog.Logger
package testdoubles
