package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blazorly/aisdk-go/pkg/api"
)

// Func is an in-process tool implementation. It receives the call's
// argument JSON and returns the output text fed back to the model.
type Func func(ctx context.Context, args json.RawMessage) (string, error)

// FuncMap hosts tools backed by Go functions, keyed by tool name. A
// nil map executes nothing.
type FuncMap map[string]Func

var _ Executor = (FuncMap)(nil)

// Kind returns KindFunc.
func (m FuncMap) Kind() Kind { return KindFunc }

// CanExecute reports whether a function is registered under name.
func (m FuncMap) CanExecute(name string) bool {
	_, ok := m[name]
	return ok
}

// Execute invokes the registered function with the call's arguments.
// The function's error is returned unwrapped so the caller can apply
// its failure policy.
func (m FuncMap) Execute(ctx context.Context, call api.ToolCall) (*Result, error) {
	fn, ok := m[call.Name]
	if !ok {
		return nil, fmt.Errorf("no function registered for tool %q", call.Name)
	}
	out, err := fn(ctx, call.Arguments)
	if err != nil {
		return nil, err
	}
	return &Result{CallID: call.ID, Output: out}, nil
}
