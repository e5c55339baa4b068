package anthropic

import (
	"strings"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/provider"
)

// TranslateResponse converts a buffered MessageResponse into a canonical
// result. Text blocks concatenate in order; tool_use blocks pass through
// the shared accumulator keyed by their content index, so the JSON rules
// match the streaming path: empty input becomes "{}", undecodable input
// becomes a flagged ToolCallError.
func TranslateResponse(name string, resp *MessageResponse) (*api.Result, error) {
	out := &api.Result{
		ID:           api.NewGenerationID(),
		Model:        resp.Model,
		FinishReason: MapStopReason(resp.StopReason),
	}

	var text strings.Builder
	acc := provider.NewAccumulator(name)
	for i := range resp.Content {
		block := &resp.Content[i]
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			if err := acc.Open(i, block.ID, block.Name); err != nil {
				return nil, err
			}
			if len(block.Input) > 0 {
				if err := acc.Append(i, string(block.Input)); err != nil {
					return nil, err
				}
			}
		}
	}
	out.Text = text.String()
	out.ToolCalls, out.ToolCallErrors = acc.FinishStream()

	if resp.Usage != nil {
		out.Usage = api.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}

	return out, nil
}

// MapStopReason converts a Messages API stop_reason into the canonical
// vocabulary. Unknown values map to FinishOther.
func MapStopReason(reason string) api.FinishReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return api.FinishStop
	case "max_tokens":
		return api.FinishLength
	case "tool_use":
		return api.FinishToolCalls
	case "refusal":
		return api.FinishContentFilter
	default:
		return api.FinishOther
	}
}
