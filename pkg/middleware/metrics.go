package middleware

import (
	"context"
	"time"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/observability"
	"github.com/blazorly/aisdk-go/pkg/provider"
)

// Metrics returns middleware recording chain-level Prometheus metrics
// for both operations. Unlike the engine's generation metrics, chain
// metrics count every request through this point of the chain,
// including those answered by an inner cache.
func Metrics() Middleware {
	return func(next Generator) Generator {
		return &metricsGenerator{next: next}
	}
}

type metricsGenerator struct {
	next Generator
}

func (g *metricsGenerator) Generate(ctx context.Context, req *api.Request) (*api.Result, error) {
	start := time.Now()
	res, err := g.next.Generate(ctx, req)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.ChainRequestsTotal.WithLabelValues("generate", outcome).Inc()
	observability.ChainRequestDuration.WithLabelValues("generate").Observe(time.Since(start).Seconds())
	return res, err
}

func (g *metricsGenerator) Stream(ctx context.Context, req *api.Request) (<-chan api.Event, error) {
	start := time.Now()
	in, err := g.next.Stream(ctx, req)
	if err != nil {
		observability.ChainRequestsTotal.WithLabelValues("stream", "error").Inc()
		return nil, err
	}

	out := make(chan api.Event, provider.EventBuffer)
	go func() {
		defer close(out)

		outcome := "success"
		for ev := range in {
			if ev.Type == api.EventError {
				outcome = "error"
			}
			if !provider.Send(ctx, out, ev) {
				outcome = "abandoned"
				break
			}
		}
		observability.ChainRequestsTotal.WithLabelValues("stream", outcome).Inc()
		observability.ChainRequestDuration.WithLabelValues("stream").Observe(time.Since(start).Seconds())
	}()
	return out, nil
}
