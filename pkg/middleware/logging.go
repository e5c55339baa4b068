package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/provider"
)

// Logging returns middleware that emits structured log entries for each
// generation: model, message count, duration, finish reason, and token
// usage, or the error on failure. Streamed generations are logged when
// the stream ends; events pass through unaltered.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Generator) Generator {
		return &loggingGenerator{next: next, logger: logger}
	}
}

type loggingGenerator struct {
	next   Generator
	logger *slog.Logger
}

func (g *loggingGenerator) Generate(ctx context.Context, req *api.Request) (*api.Result, error) {
	start := time.Now()
	res, err := g.next.Generate(ctx, req)

	attrs := []slog.Attr{
		slog.String("model", req.Model),
		slog.Int("messages", len(req.Messages)),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		g.logger.LogAttrs(ctx, slog.LevelError, "generation failed", attrs...)
		return nil, err
	}

	attrs = append(attrs,
		slog.String("finish_reason", string(res.FinishReason)),
		slog.Int("steps", len(res.Steps)),
		slog.Int("total_tokens", res.Usage.TotalTokens),
	)
	g.logger.LogAttrs(ctx, slog.LevelInfo, "generation completed", attrs...)
	return res, nil
}

func (g *loggingGenerator) Stream(ctx context.Context, req *api.Request) (<-chan api.Event, error) {
	start := time.Now()
	in, err := g.next.Stream(ctx, req)
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelError, "stream failed",
			slog.String("model", req.Model),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	out := make(chan api.Event, provider.EventBuffer)
	go func() {
		defer close(out)

		var events int
		var reason api.FinishReason
		var streamErr error
		for ev := range in {
			events++
			switch ev.Type {
			case api.EventFinish:
				reason = ev.FinishReason
			case api.EventError:
				streamErr = ev.Err
			}
			if !provider.Send(ctx, out, ev) {
				g.logger.LogAttrs(ctx, slog.LevelDebug, "stream abandoned",
					slog.String("model", req.Model),
					slog.Int("events", events),
				)
				return
			}
		}

		attrs := []slog.Attr{
			slog.String("model", req.Model),
			slog.Int("events", events),
			slog.Duration("duration", time.Since(start)),
		}
		if streamErr != nil {
			attrs = append(attrs, slog.String("error", streamErr.Error()))
			g.logger.LogAttrs(ctx, slog.LevelError, "stream failed", attrs...)
			return
		}
		attrs = append(attrs, slog.String("finish_reason", string(reason)))
		g.logger.LogAttrs(ctx, slog.LevelInfo, "stream completed", attrs...)
	}()
	return out, nil
}
