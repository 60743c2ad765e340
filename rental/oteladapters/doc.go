// Package oteladapters provides OpenTelemetry implementations of the rental observability interfaces.
//
// Wire them into an engine with the engine's options:
//
//	engine, err := postgresengine.NewEngineFromPGXPool(pool,
//		postgresengine.WithMetrics(oteladapters.NewMetricsCollector(meter)),
//		postgresengine.WithTracing(oteladapters.NewTracingCollector(tracer)),
//		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("rental")),
//	)
package oteladapters
