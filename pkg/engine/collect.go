package engine

import (
	"context"
	"strings"

	"github.com/blazorly/aisdk-go/pkg/api"
)

// stepOutcome is one provider invocation reduced to its parts,
// regardless of whether it arrived buffered or as a stream.
type stepOutcome struct {
	text   string
	calls  []api.ToolCall
	flags  []api.ToolCallError
	reason api.FinishReason
	usage  api.Usage
	model  string
}

// outcomeFromResult reduces a buffered provider result to a stepOutcome.
func outcomeFromResult(res *api.Result) *stepOutcome {
	return &stepOutcome{
		text:   res.Text,
		calls:  res.ToolCalls,
		flags:  res.ToolCallErrors,
		reason: res.FinishReason,
		usage:  res.Usage,
		model:  res.Model,
	}
}

// collect drains one canonical event stream into a stepOutcome. When
// emit is non-nil, text deltas, tool calls and tool call flags are
// forwarded through it as they arrive; finish events are never
// forwarded, since the loop emits a single finish of its own after the
// last step. A false return from emit means the consumer is gone and
// the drain stops.
//
// A terminal error event becomes the returned error. A channel that
// closes without a finish event is a protocol violation by the
// provider and is reported as such.
func collect(ctx context.Context, providerName string, ch <-chan api.Event, emit func(api.Event) bool) (*stepOutcome, error) {
	out := &stepOutcome{}
	var text strings.Builder
	finished := false

	for ev := range ch {
		switch ev.Type {
		case api.EventTextDelta:
			text.WriteString(ev.TextDelta)
		case api.EventToolCall:
			out.calls = append(out.calls, *ev.ToolCall)
		case api.EventToolCallError:
			out.flags = append(out.flags, *ev.ToolCallError)
		case api.EventFinish:
			out.reason = ev.FinishReason
			if ev.Usage != nil {
				out.usage = *ev.Usage
			}
			finished = true
			continue
		case api.EventError:
			return nil, ev.Err
		}

		if emit != nil && !emit(ev) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, context.Canceled
		}
	}

	if !finished {
		return nil, api.NewMalformedStreamError(providerName, "stream ended without a finish event")
	}

	out.text = text.String()
	return out, nil
}
