package anthropic

import (
	"strings"

	"github.com/blazorly/aisdk-go/pkg/api"
)

// defaultMaxTokens is applied when the request leaves MaxTokens unset; the
// Messages API requires the field.
const defaultMaxTokens = 1024

// TranslateRequest converts a canonical request into a MessageRequest for
// the /v1/messages endpoint.
//
// System messages are hoisted out of the conversation into the request's
// system field, joined in order. Tool-role messages become tool_result
// blocks on a user turn; consecutive tool results share one turn because
// the protocol expects all results for an assistant turn's calls together.
func TranslateRequest(req *api.Request, stream bool) MessageRequest {
	mr := MessageRequest{
		Model:         req.Model,
		MaxTokens:     defaultMaxTokens,
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		StopSequences: req.Stop,
		Stream:        stream,
	}
	if req.MaxTokens != nil {
		mr.MaxTokens = *req.MaxTokens
	}

	var system []string
	lastToolResult := false
	for _, m := range req.Messages {
		switch m.Role {
		case api.RoleSystem:
			if m.Content != "" {
				system = append(system, m.Content)
			}
			lastToolResult = false

		case api.RoleAssistant:
			blocks := make([]ContentBlock, 0, 1+len(m.ToolCalls))
			if m.Content != "" {
				blocks = append(blocks, ContentBlock{Type: "text", Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, ContentBlock{
					Type:  "tool_use",
					ID:    tc.ID,
					Name:  tc.Name,
					Input: tc.Arguments,
				})
			}
			if len(blocks) == 0 {
				blocks = append(blocks, ContentBlock{Type: "text", Text: ""})
			}
			mr.Messages = append(mr.Messages, MessageParam{Role: "assistant", Content: blocks})
			lastToolResult = false

		case api.RoleTool:
			block := ContentBlock{
				Type:      "tool_result",
				ToolUseID: m.ToolCallRef,
				Content:   m.Content,
			}
			if n := len(mr.Messages); lastToolResult && n > 0 {
				mr.Messages[n-1].Content = append(mr.Messages[n-1].Content, block)
			} else {
				mr.Messages = append(mr.Messages, MessageParam{
					Role:    "user",
					Content: []ContentBlock{block},
				})
			}
			lastToolResult = true

		default:
			mr.Messages = append(mr.Messages, MessageParam{
				Role:    "user",
				Content: []ContentBlock{{Type: "text", Text: m.Content}},
			})
			lastToolResult = false
		}
	}
	mr.System = strings.Join(system, "\n\n")

	for _, td := range req.Tools {
		mr.Tools = append(mr.Tools, Tool{
			Name:        td.Name,
			Description: td.Description,
			InputSchema: td.Parameters,
		})
	}
	mr.ToolChoice = TranslateToolChoice(req.ToolChoice)

	return mr
}

// TranslateToolChoice maps the canonical tool_choice string onto the wire
// form. "required" becomes "any", the protocol's name for the same mode;
// any non-reserved value forces that specific tool.
func TranslateToolChoice(choice string) *ToolChoice {
	switch choice {
	case "":
		return nil
	case api.ToolChoiceAuto:
		return &ToolChoice{Type: "auto"}
	case api.ToolChoiceNone:
		return &ToolChoice{Type: "none"}
	case api.ToolChoiceRequired:
		return &ToolChoice{Type: "any"}
	default:
		return &ToolChoice{Type: "tool", Name: choice}
	}
}
