package openaicompat

import (
	"github.com/blazorly/aisdk-go/pkg/api"
)

// TranslateRequest converts a canonical request into a ChatCompletionRequest
// for the /chat/completions endpoint.
func TranslateRequest(req *api.Request, stream bool) ChatCompletionRequest {
	cr := ChatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
		Stop:        req.Stop,
		N:           1,
		Stream:      stream,
	}

	// When streaming, ask the backend to report usage in the stream.
	if stream {
		cr.StreamOptions = &ChatStreamOptions{
			IncludeUsage: true,
		}
	}

	for _, m := range req.Messages {
		cm := ChatMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallRef,
		}
		// An assistant message that only carries tool calls sends null
		// content, which is what the API documents for that shape.
		if m.Content == "" && len(m.ToolCalls) > 0 {
			cm.Content = nil
		}
		for _, tc := range m.ToolCalls {
			cm.ToolCalls = append(cm.ToolCalls, ChatToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: ChatFunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}
		cr.Messages = append(cr.Messages, cm)
	}

	for _, td := range req.Tools {
		cr.Tools = append(cr.Tools, ChatTool{
			Type: "function",
			Function: ChatFunctionDef{
				Name:        td.Name,
				Description: td.Description,
				Parameters:  td.Parameters,
			},
		})
	}

	cr.ToolChoice = TranslateToolChoice(req.ToolChoice)

	return cr
}

// TranslateToolChoice maps the canonical tool_choice string onto the wire
// value: the reserved modes pass through as strings, any other name becomes
// the structured form forcing that function.
func TranslateToolChoice(choice string) any {
	switch choice {
	case "":
		return nil
	case api.ToolChoiceAuto, api.ToolChoiceNone, api.ToolChoiceRequired:
		return choice
	default:
		return ChatToolChoice{
			Type:     "function",
			Function: ChatToolChoiceName{Name: choice},
		}
	}
}
