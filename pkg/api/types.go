package api

import "encoding/json"

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ValidRole reports whether r is one of the four conversation roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// Message is one unit of conversation history. Content is plain text and
// is never interpreted by the SDK.
//
// Assistant messages carry ToolCalls when the model requested tool
// invocations. Tool messages carry the output of a single tool execution
// and must reference the originating call through ToolCallRef.
type Message struct {
	Role        Role       `json:"role"`
	Content     string     `json:"content,omitempty"`
	ToolCalls   []ToolCall `json:"tool_calls,omitempty"`
	ToolCallRef string     `json:"tool_call_ref,omitempty"`
}

// SystemMessage builds a system-role message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage builds a user-role message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// ToolMessage builds a tool-role message carrying the output for the
// tool call identified by callRef.
func ToolMessage(callRef, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallRef: callRef}
}

// ToolDefinition describes one function the model may call. Parameters is
// a JSON Schema document forwarded to the vendor unmodified.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ToolCall is a model request to invoke one tool. Arguments is complete,
// syntactically valid JSON; an empty vendor argument buffer is normalized
// to "{}".
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolCallError records a tool call whose accumulated argument payload
// failed to parse as JSON. The failure is scoped to this one call: the
// generation it occurred in continues and is flagged, not aborted.
type ToolCallError struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Raw     string `json:"raw,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// FinishReason is the canonical explanation for why generation stopped.
// Every adapter maps its vendor vocabulary onto exactly these five values.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishToolCalls     FinishReason = "tool_calls"
	FinishContentFilter FinishReason = "content_filter"
	FinishOther         FinishReason = "other"
)

// Usage reports token consumption as the vendor counted it. A zero Usage
// means the vendor supplied no counts.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add accumulates other into u. Used to sum usage across loop steps.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// ToolChoice values with special meaning. Any other non-empty value names
// a specific tool from Request.Tools that the model is forced to call.
const (
	ToolChoiceAuto     = "auto"
	ToolChoiceNone     = "none"
	ToolChoiceRequired = "required"
)

// Request describes one generation: the model, the conversation so far,
// the tools offered to the model, and sampling options. Pointer option
// fields distinguish "unset" from an explicit zero; unset options are
// omitted from the wire request and the vendor default applies.
type Request struct {
	Model       string            `json:"model"`
	Messages    []Message         `json:"messages"`
	Tools       []ToolDefinition  `json:"tools,omitempty"`
	ToolChoice  string            `json:"tool_choice,omitempty"`
	MaxSteps    int               `json:"max_steps,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	TopP        *float64          `json:"top_p,omitempty"`
	MaxTokens   *int              `json:"max_tokens,omitempty"`
	Stop        []string          `json:"stop,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Clone returns a copy of r with its own message slice, so a caller's
// request is never mutated when the loop grows the conversation.
func (r *Request) Clone() *Request {
	out := *r
	out.Messages = make([]Message, len(r.Messages))
	copy(out.Messages, r.Messages)
	return &out
}

// StepResult is the outcome of a single loop step: one model invocation
// plus any tool executions it triggered. Messages holds the assistant
// message followed by the tool-role result messages appended during the
// step, in call order.
type StepResult struct {
	Text           string          `json:"text,omitempty"`
	ToolCalls      []ToolCall      `json:"tool_calls,omitempty"`
	ToolCallErrors []ToolCallError `json:"tool_call_errors,omitempty"`
	Messages       []Message       `json:"messages,omitempty"`
	FinishReason   FinishReason    `json:"finish_reason"`
	Usage          Usage           `json:"usage"`
}

// Result is the buffered outcome of a generation. Steps records every
// loop step, Messages is the fully grown conversation, Usage is the sum
// over all steps, and Text, ToolCalls and FinishReason reflect the
// final step.
type Result struct {
	ID             string          `json:"id"`
	Model          string          `json:"model,omitempty"`
	Text           string          `json:"text,omitempty"`
	ToolCalls      []ToolCall      `json:"tool_calls,omitempty"`
	ToolCallErrors []ToolCallError `json:"tool_call_errors,omitempty"`
	FinishReason   FinishReason    `json:"finish_reason"`
	Usage          Usage           `json:"usage"`
	Steps          []StepResult    `json:"steps,omitempty"`
	Messages       []Message       `json:"messages,omitempty"`
}

// Partial reports whether the result carries flagged tool-call decode
// failures alongside its valid output.
func (r *Result) Partial() bool {
	return len(r.ToolCallErrors) > 0
}
