package tools

import (
	"context"

	"github.com/blazorly/aisdk-go/pkg/api"
)

// Kind classifies how a tool is hosted and executed.
type Kind int

const (
	// KindFunc is a tool backed by an in-process Go function. The
	// call never leaves the process.
	KindFunc Kind = iota

	// KindMCP is a tool provided by a Model Context Protocol server.
	// Execution crosses the network to the server hosting the tool.
	KindMCP
)

// Executor runs tool calls for one hosting kind. Implementations must
// be safe for concurrent use: the generation loop may run calls from
// the same step in parallel.
type Executor interface {
	// Kind returns the kind of tools this executor hosts.
	Kind() Kind

	// CanExecute reports whether this executor handles the named tool.
	CanExecute(name string) bool

	// Execute runs the call and returns its result. A non-nil error
	// means the executor itself failed; whether that aborts the
	// generation or is reported back to the model is the caller's
	// policy, not the executor's.
	Execute(ctx context.Context, call api.ToolCall) (*Result, error)
}

// Result is the outcome of one executed tool call.
type Result struct {
	// CallID echoes the originating api.ToolCall.ID.
	CallID string

	// Output is the tool output text fed back to the model.
	Output string

	// IsError marks Output as an error message produced by the tool.
	IsError bool
}

// Find returns the first executor that can handle the named tool.
func Find(executors []Executor, name string) (Executor, bool) {
	for _, e := range executors {
		if e.CanExecute(name) {
			return e, true
		}
	}
	return nil, false
}
