package engine

import (
	"context"
	"time"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/observability"
	"github.com/blazorly/aisdk-go/pkg/provider"
)

// Engine drives generations against a single provider.
type Engine struct {
	provider provider.Provider
	cfg      Config
	vcfg     api.ValidationConfig
}

// New creates an Engine. The provider must not be nil, and configuring
// executors requires choosing an executor failure policy.
func New(p provider.Provider, cfg Config) (*Engine, error) {
	if p == nil {
		return nil, api.NewRequestError("provider", "provider must not be nil")
	}
	if cfg.ToolErrors < ToolErrorsUnset || cfg.ToolErrors > ToolErrorsReport {
		return nil, api.NewRequestError("tool_errors", "unknown tool error policy")
	}
	if len(cfg.Executors) > 0 && cfg.ToolErrors == ToolErrorsUnset {
		return nil, api.NewRequestError("tool_errors",
			"a tool error policy is required when executors are configured")
	}
	return &Engine{
		provider: p,
		cfg:      cfg,
		vcfg:     api.DefaultValidationConfig(),
	}, nil
}

// Generate runs the loop to completion and returns the buffered result.
func (e *Engine) Generate(ctx context.Context, req *api.Request) (*api.Result, error) {
	if err := e.validate(req, false); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := e.run(ctx, req, nil)
	e.recordGeneration(req.Model, time.Since(start), err)
	return res, err
}

// Stream runs the loop while forwarding canonical events to the
// returned channel. Step boundaries are invisible to the consumer: it
// sees every step's text deltas, tool calls and tool call flags, then
// exactly one finish event carrying the final reason and the usage
// summed over all steps. A terminal failure surfaces as an error event
// and the channel closes.
//
// Validation runs synchronously; a validation failure is returned here
// and no channel is created.
func (e *Engine) Stream(ctx context.Context, req *api.Request) (<-chan api.Event, error) {
	if err := e.validate(req, true); err != nil {
		return nil, err
	}

	out := make(chan api.Event, provider.EventBuffer)
	go func() {
		defer close(out)

		observability.ActiveStreams.Inc()
		defer observability.ActiveStreams.Dec()

		emit := func(ev api.Event) bool {
			observability.StreamEventsTotal.WithLabelValues(ev.Type.String()).Inc()
			return provider.Send(ctx, out, ev)
		}

		start := time.Now()
		res, err := e.run(ctx, req, emit)
		e.recordGeneration(req.Model, time.Since(start), err)
		if err != nil {
			emit(api.Event{Type: api.EventError, Err: err})
			return
		}

		finish := api.Event{Type: api.EventFinish, FinishReason: res.FinishReason}
		if res.Usage != (api.Usage{}) {
			finish.Usage = &res.Usage
		}
		emit(finish)
	}()
	return out, nil
}

// validate rejects a request before any network traffic.
func (e *Engine) validate(req *api.Request, streaming bool) error {
	if req == nil {
		return api.NewRequestError("request", "request must not be nil")
	}
	if err := api.ValidateRequest(req, e.vcfg); err != nil {
		return err
	}
	if err := provider.ValidateCapabilities(e.provider.Capabilities(), req, streaming); err != nil {
		return err
	}
	return nil
}

// recordGeneration updates the per-generation metrics.
func (e *Engine) recordGeneration(model string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.GenerationsTotal.WithLabelValues(e.provider.Name(), model, outcome).Inc()
	observability.GenerationDuration.WithLabelValues(e.provider.Name(), model).Observe(d.Seconds())
}
