package api

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes an Error.
type ErrorKind string

const (
	// ErrRequest marks a request rejected before any network traffic:
	// structural problems, unknown roles, dangling tool references,
	// out-of-range options.
	ErrRequest ErrorKind = "request"

	// ErrTransport marks an HTTP-level failure against a vendor:
	// connection errors, timeouts, or a non-success status code.
	ErrTransport ErrorKind = "transport"

	// ErrMalformedStream marks a vendor stream that violated its own
	// protocol, for example a tool-call slot opened twice at one index or
	// an argument fragment for a slot that was never opened.
	ErrMalformedStream ErrorKind = "malformed_stream"

	// ErrToolArgumentDecode marks a single tool call whose accumulated
	// arguments never became valid JSON. It is scoped to that call and
	// does not abort the stream it occurred in.
	ErrToolArgumentDecode ErrorKind = "tool_argument_decode"

	// ErrMissingExecutor marks a tool call for which no configured
	// executor claims the tool name.
	ErrMissingExecutor ErrorKind = "missing_executor"

	// ErrExecutor marks a tool executor invocation that failed.
	ErrExecutor ErrorKind = "executor"
)

// Error is the structured error used throughout the SDK. Kind and Message
// are always set; the remaining fields carry whatever context the failure
// site had (vendor name, HTTP status, tool name, call ID, slot index).
type Error struct {
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message"`
	Provider string    `json:"provider,omitempty"`
	Status   int       `json:"status,omitempty"`
	Tool     string    `json:"tool,omitempty"`
	CallID   string    `json:"call_id,omitempty"`
	Index    int       `json:"index"`
	Param    string    `json:"param,omitempty"`
	Err      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Provider != "" && e.Status != 0:
		return fmt.Sprintf("%s: %s (provider %s, status %d)", e.Kind, e.Message, e.Provider, e.Status)
	case e.Provider != "":
		return fmt.Sprintf("%s: %s (provider %s)", e.Kind, e.Message, e.Provider)
	case e.Tool != "":
		return fmt.Sprintf("%s: %s (tool %s)", e.Kind, e.Message, e.Tool)
	case e.Param != "":
		return fmt.Sprintf("%s: %s (param %s)", e.Kind, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewRequestError creates an Error for a request rejected by validation.
func NewRequestError(param, message string) *Error {
	return &Error{Kind: ErrRequest, Param: param, Message: message}
}

// NewTransportError creates an Error for an HTTP-level vendor failure.
// status is zero for connection-level failures that never got a response.
func NewTransportError(provider string, status int, message string, err error) *Error {
	return &Error{Kind: ErrTransport, Provider: provider, Status: status, Message: message, Err: err}
}

// NewMalformedStreamError creates an Error for a vendor stream anomaly.
func NewMalformedStreamError(provider, message string) *Error {
	return &Error{Kind: ErrMalformedStream, Provider: provider, Message: message}
}

// NewToolDecodeError creates an Error for one tool call whose argument
// payload failed to parse as JSON.
func NewToolDecodeError(index int, callID, tool string, err error) *Error {
	return &Error{
		Kind:    ErrToolArgumentDecode,
		Index:   index,
		CallID:  callID,
		Tool:    tool,
		Message: fmt.Sprintf("tool call arguments are not valid JSON: %v", err),
		Err:     err,
	}
}

// NewMissingExecutorError creates an Error for a tool call that no
// configured executor can handle.
func NewMissingExecutorError(tool string) *Error {
	return &Error{
		Kind:    ErrMissingExecutor,
		Tool:    tool,
		Message: fmt.Sprintf("no executor registered for tool %q", tool),
	}
}

// NewExecutorError creates an Error for a failed tool execution.
func NewExecutorError(tool, callID string, err error) *Error {
	return &Error{
		Kind:    ErrExecutor,
		Tool:    tool,
		CallID:  callID,
		Message: fmt.Sprintf("tool %s failed: %v", tool, err),
		Err:     err,
	}
}

// IsKind reports whether err is, or wraps, an *Error with the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
