// Package config provides the runtime configuration of the rental service.
//
// It contains factory functions for PostgreSQL connections using the three
// supported drivers (pgx.Pool, sql.DB via lib/pq, sqlx.DB), the AppConfig
// loaded from RENTAL_* environment variables, and the OpenTelemetry providers
// that export traces and metrics over OTLP gRPC.
//
// This package is part of the shell (infrastructure) layer.
package config
