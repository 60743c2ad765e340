package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const loadgenActor = "loadgen"

// Report sums up the outcomes of all rounds.
type Report struct {
	Rounds      int
	Granted     int64
	OutOfStock  int64
	OtherErrors int64
}

// LoadGenerator runs reservation storms against one engine.
type LoadGenerator struct {
	engine rental.Engine
	cfg    Config
}

func NewLoadGenerator(engine rental.Engine, cfg Config) *LoadGenerator {
	return &LoadGenerator{engine: engine, cfg: cfg}
}

// Run executes the configured rounds. Every round resets the item, lets all holders race for a copy
// and then checks that no more copies were granted than exist and that the counters match the open holds.
func (g *LoadGenerator) Run(ctx context.Context) (Report, error) {
	var report Report

	for round := 1; round <= g.cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		granted, outOfStock, other, err := g.storm(ctx, round)
		report.Rounds = round
		report.Granted += granted
		report.OutOfStock += outOfStock
		report.OtherErrors += other

		if err != nil {
			return report, err
		}

		if err = g.verify(ctx, granted); err != nil {
			return report, fmt.Errorf("round %d: %w", round, err)
		}

		if err = g.release(ctx); err != nil {
			return report, fmt.Errorf("round %d: %w", round, err)
		}
	}

	return report, nil
}

func (g *LoadGenerator) storm(ctx context.Context, round int) (granted, outOfStock, other int64, err error) {
	if _, err = g.engine.RegisterItem(ctx, g.cfg.ItemID, "Load generator item", g.cfg.Quantity); err != nil {
		return 0, 0, 0, err
	}

	var grantedCount, outOfStockCount, otherCount atomic.Int64

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Concurrency)

	for i := 0; i < g.cfg.Holders; i++ {
		holder := rental.GuestHolder(fmt.Sprintf("guest-%d-%d", round, i))

		eg.Go(func() error {
			_, reserveErr := g.engine.Reserve(egCtx, g.cfg.ItemID, holder)

			switch {
			case reserveErr == nil:
				grantedCount.Add(1)
			case errors.Is(reserveErr, rental.ErrOutOfStock):
				outOfStockCount.Add(1)
			case errors.Is(reserveErr, context.Canceled):
				return reserveErr
			default:
				otherCount.Add(1)
			}

			return nil
		})
	}

	err = eg.Wait()

	return grantedCount.Load(), outOfStockCount.Load(), otherCount.Load(), err
}

func (g *LoadGenerator) verify(ctx context.Context, granted int64) error {
	if granted > int64(g.cfg.Quantity) {
		return fmt.Errorf("%w: granted %d reservations for %d copies", rental.ErrLedgerInvariant, granted, g.cfg.Quantity)
	}

	if err := g.engine.CheckInvariants(ctx, g.cfg.ItemID); err != nil {
		return err
	}

	item, err := g.engine.GetItem(ctx, g.cfg.ItemID)
	if err != nil {
		return err
	}

	if int64(item.AvailableCount) != int64(item.Quantity)-granted {
		return fmt.Errorf("%w: available %d, quantity %d, granted %d",
			rental.ErrLedgerInvariant, item.AvailableCount, item.Quantity, granted)
	}

	return nil
}

func (g *LoadGenerator) release(ctx context.Context) error {
	open, err := g.engine.OpenHoldsForItem(ctx, g.cfg.ItemID)
	if err != nil {
		return err
	}

	for _, hold := range open {
		if _, err = g.engine.Cancel(ctx, hold.ID, loadgenActor); err != nil && !errors.Is(err, rental.ErrAlreadyClosed) {
			return err
		}
	}

	return nil
}
