package tools

import "github.com/blazorly/aisdk-go/pkg/api"

// FilterResult holds the outcome of filtering tool calls against an
// allowed-tools list.
type FilterResult struct {
	// Allowed contains the calls that passed the filter, in their
	// original order.
	Allowed []api.ToolCall

	// Rejected pairs each blocked call with an error result to feed
	// back to the model.
	Rejected []Result
}

// FilterAllowed checks each call against the allowed list. An empty or
// nil list allows everything.
func FilterAllowed(calls []api.ToolCall, allowed []string) FilterResult {
	// No filter: all allowed.
	if len(allowed) == 0 {
		return FilterResult{Allowed: calls}
	}

	set := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		set[name] = true
	}

	var result FilterResult
	for _, call := range calls {
		if set[call.Name] {
			result.Allowed = append(result.Allowed, call)
		} else {
			result.Rejected = append(result.Rejected, Result{
				CallID:  call.ID,
				Output:  "tool " + call.Name + " is not in the allowed tools list",
				IsError: true,
			})
		}
	}

	return result
}
