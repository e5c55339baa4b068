package openaicompat

import (
	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/provider"
)

// TranslateResponse converts a buffered ChatCompletionResponse into a
// canonical result. It uses only choices[0] and maps content, tool calls,
// finish reason, and usage. Tool-call arguments pass through the shared
// accumulator, so the JSON rules are identical to the streaming path: empty
// buffers become "{}", undecodable buffers become flagged ToolCallErrors.
func TranslateResponse(name string, resp *ChatCompletionResponse) (*api.Result, error) {
	if len(resp.Choices) == 0 {
		return nil, api.NewMalformedStreamError(name, "response contained no choices")
	}
	choice := resp.Choices[0]

	out := &api.Result{
		ID:           api.NewGenerationID(),
		Model:        resp.Model,
		Text:         ContentString(choice.Message.Content),
		FinishReason: MapFinishReason(choice.FinishReason),
	}

	if resp.Usage != nil {
		out.Usage = api.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		}
	}

	acc := provider.NewAccumulator(name)
	for i, tc := range choice.Message.ToolCalls {
		if err := acc.Open(i, tc.ID, tc.Function.Name); err != nil {
			return nil, err
		}
		if err := acc.Append(i, tc.Function.Arguments); err != nil {
			return nil, err
		}
	}
	out.ToolCalls, out.ToolCallErrors = acc.FinishStream()

	return out, nil
}

// MapFinishReason converts a Chat Completions finish_reason string into the
// canonical vocabulary. Unknown values map to FinishOther.
func MapFinishReason(reason string) api.FinishReason {
	switch reason {
	case "stop":
		return api.FinishStop
	case "length":
		return api.FinishLength
	case "tool_calls", "function_call":
		return api.FinishToolCalls
	case "content_filter":
		return api.FinishContentFilter
	default:
		return api.FinishOther
	}
}

// ContentString attempts to get a plain string from a message content value,
// which the Chat Completions API allows to be a string or null.
func ContentString(content any) string {
	if content == nil {
		return ""
	}
	switch v := content.(type) {
	case string:
		return v
	default:
		return ""
	}
}
