// Command loadgen races concurrent reservations against one item and verifies the inventory ledger afterwards.
//
// Without -dsn it runs against the in-memory engine, with -dsn against PostgreSQL through a pgx pool.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell/config"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/memengine"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/postgresengine"
)

const (
	defaultQuantity    = 3
	defaultHolders     = 50
	defaultConcurrency = 16
	defaultRounds      = 10
)

type Config struct {
	DSN         string
	ItemID      string
	Quantity    int
	Holders     int
	Concurrency int
	Rounds      int
}

func main() {
	cfg := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, closeEngine, err := openEngine(ctx, cfg.DSN)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer closeEngine()

	log.Printf("Reservation storm: item=%s quantity=%d holders=%d concurrency=%d rounds=%d",
		cfg.ItemID, cfg.Quantity, cfg.Holders, cfg.Concurrency, cfg.Rounds)

	report, err := NewLoadGenerator(engine, cfg).Run(ctx)
	if err != nil {
		log.Printf("Load generator failed after %d rounds: %v", report.Rounds, err)
		closeEngine()
		log.Fatal("ledger verification failed")
	}

	log.Printf("Done: rounds=%d granted=%d out_of_stock=%d other_errors=%d",
		report.Rounds, report.Granted, report.OutOfStock, report.OtherErrors)
}

func parseFlags() Config {
	var (
		dsn         = flag.String("dsn", "", "PostgreSQL DSN, empty runs against the in-memory engine")
		itemID      = flag.String("item", "loadgen-item", "Catalog item id used for the storm")
		quantity    = flag.Int("quantity", defaultQuantity, "Copies of the item")
		holders     = flag.Int("holders", defaultHolders, "Distinct guests reserving per round")
		concurrency = flag.Int("concurrency", defaultConcurrency, "Reservations in flight at the same time")
		rounds      = flag.Int("rounds", defaultRounds, "Storm rounds")
	)

	flag.Parse()

	if *quantity < 0 || *holders < 1 || *concurrency < 1 || *rounds < 1 {
		log.Fatalf("quantity must be >= 0, holders, concurrency and rounds must be >= 1")
	}

	return Config{
		DSN:         *dsn,
		ItemID:      *itemID,
		Quantity:    *quantity,
		Holders:     *holders,
		Concurrency: *concurrency,
		Rounds:      *rounds,
	}
}

func openEngine(ctx context.Context, dsn string) (rental.Engine, func(), error) {
	if dsn == "" {
		engine, err := memengine.NewEngine()
		if err != nil {
			return nil, nil, err
		}

		return engine, func() {}, nil
	}

	pool, err := config.NewPGXPool(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}

	engine, err := postgresengine.NewEngineFromPGXPool(pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	if err = engine.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return engine, pool.Close, nil
}
