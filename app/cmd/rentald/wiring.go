package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/auditpublisher"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/httpapi"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell/config"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/memengine"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/oteladapters"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/postgresengine"
)

// dependencies collects what the engine and the handlers are wired with.
type dependencies struct {
	logger           *slog.Logger
	contextualLogger rental.ContextualLogger
	metrics          rental.MetricsCollector
	tracing          rental.TracingCollector
	publisher        rental.AuditPublisher
	policy           rental.HoldPolicy
}

func (d dependencies) httpObservability() httpapi.Observability {
	return httpapi.Observability{
		Metrics:          d.metrics,
		Tracing:          d.tracing,
		ContextualLogger: d.contextualLogger,
		Logger:           d.logger,
	}
}

type closer func()

// setupObservability creates the OTLP providers and the otel adapters when an endpoint is configured.
func setupObservability(ctx context.Context, cfg config.AppConfig, deps *dependencies) (closer, error) {
	if cfg.OTelEndpoint == "" {
		return func() {}, nil
	}

	providers, err := config.NewObservabilityProviders(ctx, cfg.OTelEndpoint, version)
	if err != nil {
		return nil, err
	}

	deps.metrics = oteladapters.NewMetricsCollector(otel.Meter(config.ServiceName))
	deps.tracing = oteladapters.NewTracingCollector(otel.Tracer(config.ServiceName))
	deps.contextualLogger = oteladapters.NewSlogBridgeLogger(config.ServiceName)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if shutdownErr := providers.Shutdown(shutdownCtx); shutdownErr != nil {
			deps.logger.Error("shutting down observability providers failed", "error", shutdownErr.Error())
		}
	}, nil
}

// setupAuditPublisher connects to RabbitMQ when a URL is configured.
func setupAuditPublisher(cfg config.AppConfig, deps *dependencies) (closer, error) {
	if cfg.AMQPURL == "" {
		return func() {}, nil
	}

	conn, err := auditpublisher.Dial(cfg.AMQPURL, auditpublisher.DefaultExchange)
	if err != nil {
		return nil, err
	}

	publisher, err := auditpublisher.NewPublisher(conn.Channel(), auditpublisher.WithLogger(deps.logger))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	deps.publisher = publisher

	return func() {
		if closeErr := conn.Close(); closeErr != nil {
			deps.logger.Warn("closing the amqp connection failed", "error", closeErr.Error())
		}
	}, nil
}

// openEngine creates the engine of the configured adapter. Postgres engines get their schema migrated.
func openEngine(ctx context.Context, cfg config.AppConfig, deps dependencies) (rental.Engine, closer, error) {
	if cfg.Adapter == config.AdapterMemory {
		engine, err := memengine.NewEngine(memengineOptions(deps)...)
		if err != nil {
			return nil, nil, err
		}

		return engine, func() {}, nil
	}

	var (
		engine  postgresengine.Engine
		closeDB closer
		err     error
	)

	options := postgresengineOptions(deps)

	switch cfg.Adapter {
	case config.AdapterPGX:
		pool, poolErr := config.NewPGXPool(ctx, cfg.DatabaseURL)
		if poolErr != nil {
			return nil, nil, poolErr
		}

		closeDB = pool.Close
		engine, err = postgresengine.NewEngineFromPGXPool(pool, options...)

	case config.AdapterSQLDB:
		db, dbErr := config.NewSQLDB(ctx, cfg.DatabaseURL)
		if dbErr != nil {
			return nil, nil, dbErr
		}

		closeDB = func() { _ = db.Close() }
		engine, err = postgresengine.NewEngineFromSQLDB(db, options...)

	case config.AdapterSQLX:
		db, dbErr := config.NewSQLX(ctx, cfg.DatabaseURL)
		if dbErr != nil {
			return nil, nil, dbErr
		}

		closeDB = func() { _ = db.Close() }
		engine, err = postgresengine.NewEngineFromSQLX(db, options...)

	default:
		return nil, nil, fmt.Errorf("%w: %s", config.ErrUnknownAdapter, cfg.Adapter)
	}

	if err != nil {
		closeDB()
		return nil, nil, err
	}

	if err = engine.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, errors.Join(errors.New("migrating the rental schema failed"), err)
	}

	return engine, closeDB, nil
}

func memengineOptions(deps dependencies) []memengine.Option {
	options := []memengine.Option{
		memengine.WithHoldPolicy(deps.policy),
		memengine.WithLogger(deps.logger),
	}

	if deps.publisher != nil {
		options = append(options, memengine.WithAuditPublisher(deps.publisher))
	}

	return options
}

func postgresengineOptions(deps dependencies) []postgresengine.Option {
	options := []postgresengine.Option{
		postgresengine.WithHoldPolicy(deps.policy),
		postgresengine.WithLogger(deps.logger),
	}

	if deps.contextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(deps.contextualLogger))
	}

	if deps.metrics != nil {
		options = append(options, postgresengine.WithMetrics(deps.metrics))
	}

	if deps.tracing != nil {
		options = append(options, postgresengine.WithTracing(deps.tracing))
	}

	if deps.publisher != nil {
		options = append(options, postgresengine.WithAuditPublisher(deps.publisher))
	}

	return options
}
