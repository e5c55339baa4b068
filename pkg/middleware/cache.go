package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/cache"
	"github.com/blazorly/aisdk-go/pkg/observability"
	"github.com/blazorly/aisdk-go/pkg/provider"
)

// Cache returns middleware that serves repeated requests from store.
// Generate returns stored results directly; Stream replays them as
// synthetic canonical events. Misses delegate to the next Generator
// and store successful results. A failing store never fails the
// generation, it only costs the caching. logger may be nil.
func Cache(store cache.Store, logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Generator) Generator {
		return &cacheGenerator{next: next, store: store, logger: logger}
	}
}

type cacheGenerator struct {
	next   Generator
	store  cache.Store
	logger *slog.Logger
}

// Key derives the cache key for a request: a SHA-256 digest over the
// model, messages, sampling options, tool choice, and tool names.
// Tool parameter schemas are not part of the key, so changing only a
// tool's schema does not invalidate prior entries.
func Key(req *api.Request) string {
	type keyFields struct {
		Model       string        `json:"model"`
		Messages    []api.Message `json:"messages"`
		Temperature *float64      `json:"temperature,omitempty"`
		TopP        *float64      `json:"top_p,omitempty"`
		MaxTokens   *int          `json:"max_tokens,omitempty"`
		Stop        []string      `json:"stop,omitempty"`
		ToolChoice  string        `json:"tool_choice,omitempty"`
		Tools       []string      `json:"tools,omitempty"`
	}
	fields := keyFields{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
		Stop:        req.Stop,
		ToolChoice:  req.ToolChoice,
	}
	for _, tool := range req.Tools {
		fields.Tools = append(fields.Tools, tool.Name)
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		// Malformed raw arguments in a message cannot be marshaled;
		// fall back to the printed form so the key stays stable.
		payload = fmt.Appendf(nil, "%+v", fields)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (g *cacheGenerator) Generate(ctx context.Context, req *api.Request) (*api.Result, error) {
	key := Key(req)

	res, err := g.store.Get(ctx, key)
	switch {
	case err == nil:
		observability.CacheRequestsTotal.WithLabelValues("generate", "hit").Inc()
		g.logger.Debug("cache hit", "key", key, "model", req.Model)
		return res, nil
	case errors.Is(err, cache.ErrCacheMiss):
		observability.CacheRequestsTotal.WithLabelValues("generate", "miss").Inc()
	default:
		observability.CacheRequestsTotal.WithLabelValues("generate", "error").Inc()
		g.logger.Warn("cache lookup failed", "key", key, "error", err)
	}

	res, err = g.next.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := g.store.Set(ctx, key, res); err != nil {
		g.logger.Warn("cache store failed", "key", key, "error", err)
	}
	return res, nil
}

func (g *cacheGenerator) Stream(ctx context.Context, req *api.Request) (<-chan api.Event, error) {
	key := Key(req)

	res, err := g.store.Get(ctx, key)
	switch {
	case err == nil:
		observability.CacheRequestsTotal.WithLabelValues("stream", "hit").Inc()
		g.logger.Debug("cache hit", "key", key, "model", req.Model)
		return replay(ctx, res), nil
	case errors.Is(err, cache.ErrCacheMiss):
		observability.CacheRequestsTotal.WithLabelValues("stream", "miss").Inc()
	default:
		observability.CacheRequestsTotal.WithLabelValues("stream", "error").Inc()
		g.logger.Warn("cache lookup failed", "key", key, "error", err)
	}

	in, err := g.next.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	return g.record(ctx, key, req, in), nil
}

// replay renders a stored result as the canonical event sequence a
// live stream would have produced: the text as one delta, the tool
// calls and decode flags, then a single finish.
func replay(ctx context.Context, res *api.Result) <-chan api.Event {
	out := make(chan api.Event, provider.EventBuffer)
	go func() {
		defer close(out)

		if res.Text != "" {
			if !provider.Send(ctx, out, api.Event{Type: api.EventTextDelta, TextDelta: res.Text}) {
				return
			}
		}
		for i := range res.ToolCalls {
			call := res.ToolCalls[i]
			if !provider.Send(ctx, out, api.Event{Type: api.EventToolCall, ToolCall: &call}) {
				return
			}
		}
		for i := range res.ToolCallErrors {
			flag := res.ToolCallErrors[i]
			if !provider.Send(ctx, out, api.Event{Type: api.EventToolCallError, ToolCallError: &flag}) {
				return
			}
		}

		finish := api.Event{Type: api.EventFinish, FinishReason: res.FinishReason}
		if res.Usage != (api.Usage{}) {
			usage := res.Usage
			finish.Usage = &usage
		}
		provider.Send(ctx, out, finish)
	}()
	return out
}

// record forwards events to the consumer while assembling a result to
// store once the stream finishes cleanly. Abandoned and failed streams
// are not stored.
func (g *cacheGenerator) record(ctx context.Context, key string, req *api.Request, in <-chan api.Event) <-chan api.Event {
	out := make(chan api.Event, provider.EventBuffer)
	go func() {
		defer close(out)

		var text strings.Builder
		var calls []api.ToolCall
		var flags []api.ToolCallError
		var usage api.Usage
		var reason api.FinishReason
		finished := false
		failed := false

		for ev := range in {
			switch ev.Type {
			case api.EventTextDelta:
				text.WriteString(ev.TextDelta)
			case api.EventToolCall:
				if ev.ToolCall != nil {
					calls = append(calls, *ev.ToolCall)
				}
			case api.EventToolCallError:
				if ev.ToolCallError != nil {
					flags = append(flags, *ev.ToolCallError)
				}
			case api.EventFinish:
				finished = true
				reason = ev.FinishReason
				if ev.Usage != nil {
					usage = *ev.Usage
				}
			case api.EventError:
				failed = true
			}
			if !provider.Send(ctx, out, ev) {
				return
			}
		}

		if !finished || failed {
			return
		}

		messages := append(req.Clone().Messages, api.Message{
			Role:      api.RoleAssistant,
			Content:   text.String(),
			ToolCalls: calls,
		})
		res := &api.Result{
			ID:             api.NewGenerationID(),
			Model:          req.Model,
			Text:           text.String(),
			ToolCalls:      calls,
			ToolCallErrors: flags,
			FinishReason:   reason,
			Usage:          usage,
			Messages:       messages,
		}
		if err := g.store.Set(context.WithoutCancel(ctx), key, res); err != nil {
			g.logger.Warn("cache store failed", "key", key, "error", err)
		}
	}()
	return out
}
