// Package engine implements the generation façade and the multi-step
// tool loop on top of a provider. Generate returns a buffered
// api.Result; Stream yields the same run as a canonical event stream.
// Both validate the request up front, invoke the provider once per
// step, dispatch requested tool calls to the configured executors, and
// feed results back into the conversation until the model answers or
// the step budget runs out. The default budget of one step means tool
// calls are returned to the caller unexecuted unless the caller
// explicitly opts into the loop.
package engine
