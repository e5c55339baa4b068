// Package middleware composes cross-cutting behavior around a
// Generator: structured logging, Prometheus metrics, and response
// caching. Middleware wrap both the buffered and streaming operations
// and leave event semantics untouched.
package middleware

import (
	"context"

	"github.com/blazorly/aisdk-go/pkg/api"
)

// Generator is the generation surface middleware wrap. *engine.Engine
// satisfies it, as does any wrapped Generator, so chains compose.
type Generator interface {
	Generate(ctx context.Context, req *api.Request) (*api.Result, error)
	Stream(ctx context.Context, req *api.Request) (<-chan api.Event, error)
}

// Middleware wraps a Generator to add cross-cutting behavior.
// Middleware is applied in order: the first middleware in the chain is
// the outermost wrapper (executes first on the way in, last on the way out).
type Middleware func(Generator) Generator

// Chain composes multiple middleware into a single middleware.
// Middleware are applied in order: Chain(a, b, c) produces a(b(c(generator))).
func Chain(middlewares ...Middleware) Middleware {
	return func(next Generator) Generator {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
