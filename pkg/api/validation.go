package api

import (
	"encoding/json"
	"fmt"
)

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxMessages    int
	MaxContentSize int
	MaxTools       int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxMessages:    1000,
		MaxContentSize: 10 * 1024 * 1024, // 10MB
		MaxTools:       128,
	}
}

// ValidateRequest checks a Request for validity before any network I/O is
// attempted. It returns an *Error of kind ErrRequest describing the first
// violation, or nil if the request is valid.
func ValidateRequest(req *Request, cfg ValidationConfig) *Error {
	if req.Model == "" {
		return NewRequestError("model", "model is required")
	}
	if len(req.Messages) == 0 {
		return NewRequestError("messages", "messages must contain at least one entry")
	}
	if cfg.MaxMessages > 0 && len(req.Messages) > cfg.MaxMessages {
		return NewRequestError("messages",
			fmt.Sprintf("messages exceed maximum of %d entries", cfg.MaxMessages))
	}
	if cfg.MaxTools > 0 && len(req.Tools) > cfg.MaxTools {
		return NewRequestError("tools",
			fmt.Sprintf("tools exceed maximum of %d", cfg.MaxTools))
	}

	for i, tool := range req.Tools {
		if tool.Name == "" {
			return NewRequestError(fmt.Sprintf("tools[%d].name", i), "tool name is required")
		}
		if len(tool.Parameters) > 0 && !json.Valid(tool.Parameters) {
			return NewRequestError(fmt.Sprintf("tools[%d].parameters", i),
				"tool parameters must be a valid JSON schema document")
		}
	}

	// Walk the conversation once, tracking which tool-call IDs have been
	// introduced by assistant messages so tool-role messages can be checked
	// against them.
	seenCalls := make(map[string]bool)
	contentSize := 0
	for i, msg := range req.Messages {
		param := fmt.Sprintf("messages[%d]", i)
		if !ValidRole(msg.Role) {
			return NewRequestError(param, fmt.Sprintf("unknown role %q", msg.Role))
		}
		contentSize += len(msg.Content)

		switch msg.Role {
		case RoleAssistant:
			for j, call := range msg.ToolCalls {
				callParam := fmt.Sprintf("messages[%d].tool_calls[%d]", i, j)
				if call.ID == "" {
					return NewRequestError(callParam, "tool call ID is required")
				}
				if call.Name == "" {
					return NewRequestError(callParam, "tool call name is required")
				}
				if len(call.Arguments) > 0 && !json.Valid(call.Arguments) {
					return NewRequestError(callParam, "tool call arguments must be valid JSON")
				}
				seenCalls[call.ID] = true
			}
		case RoleTool:
			if msg.ToolCallRef == "" {
				return NewRequestError(param, "tool messages must reference a tool call")
			}
			if !seenCalls[msg.ToolCallRef] {
				return NewRequestError(param,
					fmt.Sprintf("tool message references unknown tool call %q", msg.ToolCallRef))
			}
		default:
			if len(msg.ToolCalls) > 0 {
				return NewRequestError(param, "tool_calls are only valid on assistant messages")
			}
		}
	}
	if cfg.MaxContentSize > 0 && contentSize > cfg.MaxContentSize {
		return NewRequestError("messages",
			fmt.Sprintf("total content exceeds maximum of %d bytes", cfg.MaxContentSize))
	}

	if req.MaxSteps < 0 {
		return NewRequestError("max_steps", "max_steps must not be negative")
	}
	if req.MaxTokens != nil && *req.MaxTokens <= 0 {
		return NewRequestError("max_tokens", "max_tokens must be positive")
	}
	if req.Temperature != nil && (*req.Temperature < 0.0 || *req.Temperature > 2.0) {
		return NewRequestError("temperature", "temperature must be between 0.0 and 2.0")
	}
	if req.TopP != nil && (*req.TopP < 0.0 || *req.TopP > 1.0) {
		return NewRequestError("top_p", "top_p must be between 0.0 and 1.0")
	}

	switch req.ToolChoice {
	case "", ToolChoiceAuto, ToolChoiceNone:
	case ToolChoiceRequired:
		if len(req.Tools) == 0 {
			return NewRequestError("tool_choice", "tool_choice 'required' needs at least one tool")
		}
	default:
		found := false
		for _, tool := range req.Tools {
			if tool.Name == req.ToolChoice {
				found = true
				break
			}
		}
		if !found {
			return NewRequestError("tool_choice",
				fmt.Sprintf("tool_choice references unknown tool %q", req.ToolChoice))
		}
	}

	return nil
}
