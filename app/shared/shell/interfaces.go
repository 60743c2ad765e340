package shell

import (
	"context"
)

// Command is implemented by every command of the rental application.
// CommandType names the command for metrics, spans and logs.
type Command interface {
	CommandType() string
}

// CoreCommandHandler processes a command and returns its payload together with the HandlerResult,
// which carries the idempotency outcome and the retry metadata.
type CoreCommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, command C) (R, HandlerResult, error)
}

// Query is implemented by every query of the rental application.
type Query interface {
	QueryType() string
}

// QueryHandler processes a query and returns its result.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
