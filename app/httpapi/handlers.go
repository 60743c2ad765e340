package httpapi

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/bulkapprove"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/bulkreturn"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/cancelreservation"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/converttoloan"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/directloan"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/registeritem"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/reserve"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/returnloan"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/setmanualstatus"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/query/auditlog"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/query/holderholds"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/query/itemstatus"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell/observable"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/bulk"
)

// Handlers bundles the command and query handlers served by the API.
type Handlers struct {
	Reserve           shell.CoreCommandHandler[reserve.Command, rental.Hold]
	DirectLoan        shell.CoreCommandHandler[directloan.Command, rental.Hold]
	ConvertToLoan     shell.CoreCommandHandler[converttoloan.Command, rental.Hold]
	ReturnLoan        shell.CoreCommandHandler[returnloan.Command, rental.Hold]
	CancelReservation shell.CoreCommandHandler[cancelreservation.Command, rental.Hold]
	BulkApprove       shell.CoreCommandHandler[bulkapprove.Command, rental.BulkResult]
	BulkReturn        shell.CoreCommandHandler[bulkreturn.Command, rental.BulkResult]
	SetManualStatus   shell.CoreCommandHandler[setmanualstatus.Command, rental.CatalogItem]
	RegisterItem      shell.CoreCommandHandler[registeritem.Command, rental.CatalogItem]

	ItemStatus  shell.QueryHandler[itemstatus.Query, rental.Resolution]
	AuditLog    shell.QueryHandler[auditlog.Query, auditlog.AuditTrail]
	HolderHolds shell.QueryHandler[holderholds.Query, holderholds.HolderHolds]
}

// Observability holds the optional collectors every handler gets wrapped with. Nil fields are skipped.
type Observability struct {
	Metrics          shell.MetricsCollector
	Tracing          shell.TracingCollector
	ContextualLogger shell.ContextualLogger
	Logger           shell.Logger
}

// NewHandlers builds all feature handlers on top of engine and wraps them with observability.
func NewHandlers(
	engine rental.Engine,
	coordinator *bulk.Coordinator,
	clock rental.Clock,
	obs Observability,
	retryOptions ...shell.RetryOption,
) (Handlers, error) {
	var (
		handlers Handlers
		err      error
	)

	if handlers.Reserve, err = wrapCommand[reserve.Command, rental.Hold](
		reserve.NewCommandHandler(engine, reserve.WithRetryOptions(retryOptions...)), obs); err != nil {
		return Handlers{}, err
	}

	if handlers.DirectLoan, err = wrapCommand[directloan.Command, rental.Hold](
		directloan.NewCommandHandler(engine, directloan.WithRetryOptions(retryOptions...)), obs); err != nil {
		return Handlers{}, err
	}

	if handlers.ConvertToLoan, err = wrapCommand[converttoloan.Command, rental.Hold](
		converttoloan.NewCommandHandler(engine, converttoloan.WithRetryOptions(retryOptions...)), obs); err != nil {
		return Handlers{}, err
	}

	if handlers.ReturnLoan, err = wrapCommand[returnloan.Command, rental.Hold](
		returnloan.NewCommandHandler(engine, returnloan.WithRetryOptions(retryOptions...)), obs); err != nil {
		return Handlers{}, err
	}

	if handlers.CancelReservation, err = wrapCommand[cancelreservation.Command, rental.Hold](
		cancelreservation.NewCommandHandler(engine, cancelreservation.WithRetryOptions(retryOptions...)), obs); err != nil {
		return Handlers{}, err
	}

	if handlers.BulkApprove, err = wrapCommand[bulkapprove.Command, rental.BulkResult](
		bulkapprove.NewCommandHandler(coordinator, bulkapprove.WithRetryOptions(retryOptions...)), obs); err != nil {
		return Handlers{}, err
	}

	if handlers.BulkReturn, err = wrapCommand[bulkreturn.Command, rental.BulkResult](
		bulkreturn.NewCommandHandler(coordinator, bulkreturn.WithRetryOptions(retryOptions...)), obs); err != nil {
		return Handlers{}, err
	}

	if handlers.SetManualStatus, err = wrapCommand[setmanualstatus.Command, rental.CatalogItem](
		setmanualstatus.NewCommandHandler(engine, setmanualstatus.WithRetryOptions(retryOptions...)), obs); err != nil {
		return Handlers{}, err
	}

	if handlers.RegisterItem, err = wrapCommand[registeritem.Command, rental.CatalogItem](
		registeritem.NewCommandHandler(engine, registeritem.WithRetryOptions(retryOptions...)), obs); err != nil {
		return Handlers{}, err
	}

	if handlers.ItemStatus, err = wrapQuery[itemstatus.Query, rental.Resolution](
		itemstatus.NewQueryHandler(engine), obs); err != nil {
		return Handlers{}, err
	}

	if handlers.AuditLog, err = wrapQuery[auditlog.Query, auditlog.AuditTrail](
		auditlog.NewQueryHandler(engine), obs); err != nil {
		return Handlers{}, err
	}

	if handlers.HolderHolds, err = wrapQuery[holderholds.Query, holderholds.HolderHolds](
		holderholds.NewQueryHandler(engine, holderholds.WithClock(clock)), obs); err != nil {
		return Handlers{}, err
	}

	return handlers, nil
}

func wrapCommand[C shell.Command, R any](
	core shell.CoreCommandHandler[C, R],
	obs Observability,
) (shell.CoreCommandHandler[C, R], error) {
	return observable.NewCommandWrapper(core,
		observable.WithCommandMetrics[C, R](obs.Metrics),
		observable.WithCommandTracing[C, R](obs.Tracing),
		observable.WithCommandContextualLogging[C, R](obs.ContextualLogger),
		observable.WithCommandLogging[C, R](obs.Logger),
	)
}

func wrapQuery[Q shell.Query, R any](
	core shell.QueryHandler[Q, R],
	obs Observability,
) (shell.QueryHandler[Q, R], error) {
	return observable.NewQueryWrapper(core,
		observable.WithQueryMetrics[Q, R](obs.Metrics),
		observable.WithQueryTracing[Q, R](obs.Tracing),
		observable.WithQueryContextualLogging[Q, R](obs.ContextualLogger),
		observable.WithQueryLogging[Q, R](obs.Logger),
	)
}
