// Package observable provides wrappers that instrument command and query handlers
// with metrics, tracing and logging while the handlers keep only business logic.
//
// Wrappers are applied at wiring time, not inside handler constructors:
//
//	coreHandler := reserve.NewCommandHandler(engine)
//
//	handler, err := observable.NewCommandWrapper[reserve.Command, rental.Hold](
//		coreHandler,
//		observable.WithCommandMetrics[reserve.Command, rental.Hold](metricsCollector),
//		observable.WithCommandTracing[reserve.Command, rental.Hold](tracingCollector),
//		observable.WithCommandContextualLogging[reserve.Command, rental.Hold](contextualLogger),
//	)
//
//	hold, handlerResult, err := handler.Handle(ctx, command)
//
// Unit tests of the business logic use the core handlers directly.
package observable
