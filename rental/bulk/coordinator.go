// Package bulk runs one transition over all open holds of a holder with partial success.
package bulk

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// DefaultParallelism bounds how many holds are transitioned at the same time.
const DefaultParallelism = 4

const (
	logMsgBulkFinished = "bulk operation finished"
	logAttrOperation   = "operation"
	logAttrHolder      = "holder"
	logAttrSucceeded   = "succeeded"
	logAttrFailed      = "failed"
)

// Engine is the subset of a rental engine the coordinator needs.
type Engine interface {
	OpenHoldsForHolder(ctx context.Context, holder rental.Holder) (rental.Holds, error)
	ConvertToLoan(ctx context.Context, holdID string, actor string) (rental.Hold, error)
	Return(ctx context.Context, holdID string, actor string) (rental.Hold, error)
}

// Coordinator fans a transition out over holds, each in its own engine transaction.
type Coordinator struct {
	engine      Engine
	parallelism int
	logger      rental.Logger
}

// Option defines a functional option for configuring Coordinator.
type Option func(*Coordinator)

// WithParallelism sets the number of concurrent transitions. Values below 1 are ignored.
func WithParallelism(n int) Option {
	return func(c *Coordinator) {
		if n >= 1 {
			c.parallelism = n
		}
	}
}

// WithLogger sets the logger for bulk outcomes.
func WithLogger(logger rental.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(engine Engine, opts ...Option) *Coordinator {
	c := &Coordinator{
		engine:      engine,
		parallelism: DefaultParallelism,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ApproveAllReservations converts every open reservation of holder into a loan.
// Succeeded lists the item ids that were converted. Expired reservations fail with reason EXPIRED.
func (c *Coordinator) ApproveAllReservations(ctx context.Context, holder rental.Holder, actor string) (rental.BulkResult, error) {
	return c.run(ctx, "approve_all", holder, rental.KindReservation, func(ctx context.Context, hold rental.Hold) error {
		_, err := c.engine.ConvertToLoan(ctx, hold.ID, actor)
		return err
	})
}

// ReturnAllLoans returns every open loan of holder.
func (c *Coordinator) ReturnAllLoans(ctx context.Context, holder rental.Holder, actor string) (rental.BulkResult, error) {
	return c.run(ctx, "return_all", holder, rental.KindLoan, func(ctx context.Context, hold rental.Hold) error {
		_, err := c.engine.Return(ctx, hold.ID, actor)
		return err
	})
}

func (c *Coordinator) run(
	ctx context.Context,
	operation string,
	holder rental.Holder,
	kind rental.HoldKind,
	transition func(ctx context.Context, hold rental.Hold) error,
) (rental.BulkResult, error) {
	if err := ctx.Err(); err != nil {
		return rental.BulkResult{}, err
	}

	holds, err := c.engine.OpenHoldsForHolder(ctx, holder)
	if err != nil {
		return rental.BulkResult{}, err
	}

	result := rental.NewBulkResult()

	var mu sync.Mutex

	// Per-hold errors go into the result, the group never sees them.
	g := new(errgroup.Group)
	g.SetLimit(c.parallelism)

	for _, hold := range holds.OfKind(kind) {
		g.Go(func() error {
			transitionErr := ctx.Err()
			if transitionErr == nil {
				transitionErr = transition(ctx, hold)
			}

			mu.Lock()
			defer mu.Unlock()

			if transitionErr != nil {
				result.AddFailure(hold, transitionErr)
				return nil
			}

			result.AddSuccess(hold.ItemID)

			return nil
		})
	}

	_ = g.Wait()

	result.Sort()

	if c.logger != nil {
		c.logger.Info(logMsgBulkFinished,
			logAttrOperation, operation,
			logAttrHolder, holder.Key(),
			logAttrSucceeded, result.SucceededCount(),
			logAttrFailed, result.FailedCount(),
		)
	}

	return result, nil
}
