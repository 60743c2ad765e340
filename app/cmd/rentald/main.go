// Command rentald runs the rental HTTP API and the reservation sweeper.
//
// Configuration comes from RENTAL_* environment variables, see config.LoadAppConfig.
// The process stops gracefully on SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/httpapi"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell/config"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/bulk"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/sweeper"
)

const (
	version         = "0.1.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(logger); err != nil {
		logger.Error("rentald stopped with an error", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("rentald stopped")
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := dependencies{
		logger: logger,
		policy: cfg.HoldPolicy(),
	}

	closeObservability, err := setupObservability(ctx, cfg, &deps)
	if err != nil {
		return err
	}
	defer closeObservability()

	closePublisher, err := setupAuditPublisher(cfg, &deps)
	if err != nil {
		return err
	}
	defer closePublisher()

	engine, closeEngine, err := openEngine(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer closeEngine()

	coordinator := bulk.NewCoordinator(engine, bulk.WithLogger(logger))

	handlers, err := httpapi.NewHandlers(engine, coordinator, rental.SystemClock(), deps.httpObservability())
	if err != nil {
		return err
	}

	app := httpapi.NewServer(handlers, httpapi.WithLogger(logger)).App()

	sweeperOptions := []sweeper.Option{
		sweeper.WithInterval(cfg.SweepInterval),
		sweeper.WithBatchSize(cfg.SweepBatchSize),
		sweeper.WithLogger(logger),
	}
	if deps.metrics != nil {
		sweeperOptions = append(sweeperOptions, sweeper.WithMetrics(deps.metrics))
	}

	reservationSweeper, err := sweeper.New(engine, sweeperOptions...)
	if err != nil {
		return err
	}

	logger.Info("rentald starting",
		"version", version,
		"adapter", cfg.Adapter,
		"http_addr", cfg.HTTPAddr,
		"reservation_ttl", cfg.ReservationTTL.String(),
		"loan_period", cfg.LoanPeriod.String(),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.Listen(cfg.HTTPAddr)
	})

	g.Go(func() error {
		return reservationSweeper.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
