package engine

import (
	"log/slog"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/tools"
)

// ToolErrorPolicy picks how the loop treats a failing tool executor.
type ToolErrorPolicy int

const (
	// ToolErrorsUnset is the zero value. New rejects it when executors
	// are configured: the failure treatment is an explicit choice per
	// wiring, never a silent default.
	ToolErrorsUnset ToolErrorPolicy = iota

	// ToolErrorsAbort fails the generation on the first executor error.
	ToolErrorsAbort

	// ToolErrorsReport feeds the error text back to the model as an
	// error-flagged tool result and keeps the loop running.
	ToolErrorsReport
)

// Config holds the engine's loop configuration.
type Config struct {
	// MaxSteps bounds the number of provider invocations in one
	// generation. Zero or negative means the default of 1, under which
	// requested tool calls are returned to the caller unexecuted. A
	// request's own MaxSteps overrides this when positive.
	MaxSteps int

	// Executors are the tool executors available to the loop. A tool
	// call whose name no executor claims fails the generation.
	Executors []tools.Executor

	// ToolErrors selects the executor failure treatment. Required
	// whenever Executors is non-empty.
	ToolErrors ToolErrorPolicy

	// Parallel runs a step's tool calls concurrently. Results keep the
	// model's call order either way.
	Parallel bool

	// AllowedTools restricts which tools may be executed. Empty allows
	// all. Calls outside the list are answered with error results
	// instead of reaching an executor.
	AllowedTools []string

	// OnStepFinish is invoked synchronously after each loop step. A
	// non-nil return aborts the loop with that error.
	OnStepFinish func(api.StepResult) error

	// Logger receives loop diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// maxSteps returns the effective default step budget.
func (c Config) maxSteps() int {
	if c.MaxSteps <= 0 {
		return 1
	}
	return c.MaxSteps
}

// logger returns the configured logger or the process default.
func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
