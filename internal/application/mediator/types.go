package mediator

import "context"

// Request is a command or query sent through the mediator. Commands change
// empire state (StartProductionCommand, AccruePayoutsCommand); queries only
// read it (ListQueueQuery, GetCreditHistoryQuery).
type Request any

// Response is whatever the handler of a request returns
type Response any

// RequestHandler serves one concrete request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc is the next step of a middleware chain
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Middleware wraps every request, e.g. request metrics or logging
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)
