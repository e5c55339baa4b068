package engine

import (
	"fmt"

	"github.com/blazorly/aisdk-go/pkg/api"
)

// State names the loop's position in its lifecycle.
type State int

const (
	// StateReady means the loop may begin a provider invocation.
	StateReady State = iota

	// StateCalling means a provider invocation is in flight.
	StateCalling

	// StateAwaitingToolResults means the step requested tool calls and
	// the loop is executing them.
	StateAwaitingToolResults

	// StateDone is terminal: the run produced a result.
	StateDone

	// StateFailed is terminal: the run produced an error.
	StateFailed
)

// String returns a stable name for the state, used in logs and errors.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateCalling:
		return "calling"
	case StateAwaitingToolResults:
		return "awaiting_tool_results"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// validTransitions lists the successor states of each state. Done and
// Failed are terminal.
var validTransitions = map[State][]State{
	StateReady:               {StateCalling, StateFailed},
	StateCalling:             {StateAwaitingToolResults, StateDone, StateFailed},
	StateAwaitingToolResults: {StateReady, StateDone, StateFailed},
}

// ValidateTransition checks whether the loop may move from one state to
// the next. An invalid transition is a programming error in the loop,
// not a caller mistake; it still surfaces as a typed error so the run
// fails loudly instead of continuing from a corrupt state.
func ValidateTransition(from, to State) *api.Error {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return api.NewRequestError("state",
		fmt.Sprintf("invalid loop transition from %s to %s", from, to))
}
