package engine

import (
	"context"
	"sync"
	"time"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/observability"
	"github.com/blazorly/aisdk-go/pkg/tools"
)

// run executes the loop for one generation. emit is nil for buffered
// runs; streaming runs pass a forwarder for per-step events. The
// caller's request is cloned, so its message slice never mutates.
func (e *Engine) run(ctx context.Context, req *api.Request, emit func(api.Event) bool) (*api.Result, error) {
	req = req.Clone()

	maxSteps := e.cfg.maxSteps()
	if req.MaxSteps > 0 {
		maxSteps = req.MaxSteps
	}
	log := e.cfg.logger()

	state := StateReady
	advance := func(next State) error {
		if err := ValidateTransition(state, next); err != nil {
			return err
		}
		state = next
		return nil
	}

	result := &api.Result{
		ID:    api.NewGenerationID(),
		Model: req.Model,
	}

	for step := 0; step < maxSteps; step++ {
		// Cancellation observed between steps must not begin a new
		// provider invocation.
		if err := ctx.Err(); err != nil {
			_ = advance(StateFailed)
			return nil, err
		}

		if err := advance(StateCalling); err != nil {
			return nil, err
		}

		outcome, err := e.invoke(ctx, req, emit)
		if err != nil {
			_ = advance(StateFailed)
			return nil, err
		}

		name := e.provider.Name()
		observability.TokensTotal.WithLabelValues(name, req.Model, "input").Add(float64(outcome.usage.InputTokens))
		observability.TokensTotal.WithLabelValues(name, req.Model, "output").Add(float64(outcome.usage.OutputTokens))

		result.Usage.Add(outcome.usage)
		result.ToolCallErrors = append(result.ToolCallErrors, outcome.flags...)
		if outcome.model != "" {
			result.Model = outcome.model
		}

		// The assistant turn joins the conversation with its tool calls
		// attached: vendor protocols expect it ahead of any tool
		// results, and on an early exit the caller needs it to continue
		// the conversation themselves.
		assistant := api.Message{
			Role:      api.RoleAssistant,
			Content:   outcome.text,
			ToolCalls: outcome.calls,
		}
		req.Messages = append(req.Messages, assistant)

		stepResult := api.StepResult{
			Text:           outcome.text,
			ToolCalls:      outcome.calls,
			ToolCallErrors: outcome.flags,
			Messages:       []api.Message{assistant},
			FinishReason:   outcome.reason,
			Usage:          outcome.usage,
		}

		wantsTools := outcome.reason == api.FinishToolCalls && len(outcome.calls) > 0
		budgetLeft := step+1 < maxSteps

		if !wantsTools || !budgetLeft {
			// Terminal step. Running out of budget while the model
			// still wants tools is a normal exit, not an error: the
			// result keeps the tool_calls reason and the caller takes
			// over.
			result.Steps = append(result.Steps, stepResult)
			if err := e.stepFinished(stepResult); err != nil {
				_ = advance(StateFailed)
				return nil, err
			}
			if err := advance(StateDone); err != nil {
				return nil, err
			}

			log.Debug("generation finished",
				"id", result.ID,
				"steps", len(result.Steps),
				"finish_reason", outcome.reason,
			)

			result.Text = outcome.text
			result.ToolCalls = outcome.calls
			result.FinishReason = outcome.reason
			result.Messages = req.Messages
			return result, nil
		}

		if err := advance(StateAwaitingToolResults); err != nil {
			return nil, err
		}

		// Every requested tool needs a claiming executor before
		// anything runs: silently dropping a call would desynchronize
		// the conversation from the model's expectation.
		for _, call := range outcome.calls {
			if _, ok := tools.Find(e.cfg.Executors, call.Name); !ok {
				_ = advance(StateFailed)
				return nil, api.NewMissingExecutorError(call.Name)
			}
		}

		filtered := tools.FilterAllowed(outcome.calls, e.cfg.AllowedTools)
		executed, err := e.executeTools(ctx, filtered.Allowed)
		if err != nil {
			_ = advance(StateFailed)
			return nil, err
		}

		// Tool results join the conversation in the model's call
		// order, whatever order they completed in.
		for _, r := range mergeResults(outcome.calls, executed, filtered.Rejected) {
			toolMsg := api.ToolMessage(r.CallID, r.Output)
			req.Messages = append(req.Messages, toolMsg)
			stepResult.Messages = append(stepResult.Messages, toolMsg)
		}

		result.Steps = append(result.Steps, stepResult)
		if err := e.stepFinished(stepResult); err != nil {
			_ = advance(StateFailed)
			return nil, err
		}
		if err := advance(StateReady); err != nil {
			return nil, err
		}

		log.Debug("loop step finished",
			"id", result.ID,
			"step", step,
			"tool_calls", len(outcome.calls),
		)
	}

	// Unreachable: the final budgeted step returns above.
	return nil, api.NewRequestError("max_steps", "loop ended without reaching a terminal state")
}

// invoke performs one provider call. Buffered runs prefer the native
// buffered endpoint and fall back to draining a stream; streaming runs
// always stream so deltas reach the consumer as they arrive.
func (e *Engine) invoke(ctx context.Context, req *api.Request, emit func(api.Event) bool) (*stepOutcome, error) {
	if emit == nil && e.provider.Capabilities().Completion {
		res, err := e.provider.Complete(ctx, req)
		if err != nil {
			return nil, err
		}
		return outcomeFromResult(res), nil
	}

	ch, err := e.provider.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	return collect(ctx, e.provider.Name(), ch, emit)
}

// stepFinished notifies the step observer, if one is configured.
func (e *Engine) stepFinished(step api.StepResult) error {
	if e.cfg.OnStepFinish == nil {
		return nil
	}
	return e.cfg.OnStepFinish(step)
}

// executeTools runs the calls through their executors, honoring the
// configured failure policy. The returned slice is indexed like calls.
// Under ToolErrorsAbort the error is the first failure in call order;
// under ToolErrorsReport failures become error-flagged results.
func (e *Engine) executeTools(ctx context.Context, calls []api.ToolCall) ([]tools.Result, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	results := make([]tools.Result, len(calls))
	errs := make([]error, len(calls))

	execOne := func(i int, call api.ToolCall) {
		exec, _ := tools.Find(e.cfg.Executors, call.Name)

		start := time.Now()
		res, err := exec.Execute(ctx, call)
		observability.ToolDuration.WithLabelValues(call.Name).Observe(time.Since(start).Seconds())

		if err != nil {
			observability.ToolExecutionsTotal.WithLabelValues(call.Name, "error").Inc()
			e.cfg.logger().Warn("tool execution failed",
				"tool", call.Name,
				"call_id", call.ID,
				"error", err,
			)
			errs[i] = api.NewExecutorError(call.Name, call.ID, err)
			results[i] = tools.Result{CallID: call.ID, Output: err.Error(), IsError: true}
			return
		}

		outcome := "success"
		if res.IsError {
			outcome = "error"
		}
		observability.ToolExecutionsTotal.WithLabelValues(call.Name, outcome).Inc()
		results[i] = *res
	}

	if e.cfg.Parallel {
		// Launched calls run to completion even when one fails: tools
		// may have external side effects, so siblings are not torn
		// down mid-flight. The abort check happens after the barrier.
		var wg sync.WaitGroup
		for i, call := range calls {
			wg.Add(1)
			go func(i int, call api.ToolCall) {
				defer wg.Done()
				execOne(i, call)
			}(i, call)
		}
		wg.Wait()

		if e.cfg.ToolErrors == ToolErrorsAbort {
			for i := range errs {
				if errs[i] != nil {
					return nil, errs[i]
				}
			}
		}
		return results, nil
	}

	for i, call := range calls {
		execOne(i, call)
		if e.cfg.ToolErrors == ToolErrorsAbort && errs[i] != nil {
			return nil, errs[i]
		}
	}
	return results, nil
}

// mergeResults reassembles executed and rejected results into the
// model's original call order. Call IDs are unique within a response,
// so they key the rejected lookups.
func mergeResults(calls []api.ToolCall, executed, rejected []tools.Result) []tools.Result {
	if len(rejected) == 0 {
		return executed
	}

	rejectedByID := make(map[string]tools.Result, len(rejected))
	for _, r := range rejected {
		rejectedByID[r.CallID] = r
	}

	merged := make([]tools.Result, 0, len(calls))
	next := 0
	for _, call := range calls {
		if r, ok := rejectedByID[call.ID]; ok {
			merged = append(merged, r)
			continue
		}
		merged = append(merged, executed[next])
		next++
	}
	return merged
}
