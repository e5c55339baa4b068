package api

// EventType identifies the type of a canonical streaming event.
type EventType int

const (
	// EventTextDelta carries an incremental piece of assistant text.
	EventTextDelta EventType = iota

	// EventToolCall carries one fully accumulated tool call. It is emitted
	// only after the call's argument payload is complete, syntactically
	// valid JSON. Partial argument fragments never surface as events.
	EventToolCall

	// EventToolCallError flags one tool call whose arguments failed to
	// decode. The failure is scoped to that call; the stream continues and
	// still ends with a finish event.
	EventToolCallError

	// EventFinish terminates a successful stream. It carries the finish
	// reason and, when the vendor supplied counts, token usage. A stream
	// emits at most one finish event and nothing follows it.
	EventFinish

	// EventError carries a terminal error. The channel closes after this
	// event without a finish event.
	EventError
)

// String returns a stable name for the event type, used in logs and metrics.
func (t EventType) String() string {
	switch t {
	case EventTextDelta:
		return "text_delta"
	case EventToolCall:
		return "tool_call"
	case EventToolCallError:
		return "tool_call_error"
	case EventFinish:
		return "finish"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one canonical streaming event. Only the fields implied by Type
// are populated.
type Event struct {
	Type EventType

	// TextDelta is set for EventTextDelta.
	TextDelta string

	// ToolCall is set for EventToolCall.
	ToolCall *ToolCall

	// ToolCallError is set for EventToolCallError.
	ToolCallError *ToolCallError

	// FinishReason and Usage are set for EventFinish. Usage is nil when
	// the vendor supplied no counts.
	FinishReason FinishReason
	Usage        *Usage

	// Err is set for EventError.
	Err error
}
