// Package api defines the canonical data model shared by every provider
// adapter and by the generation engine.
//
// This package provides the vendor-neutral vocabulary of a chat generation:
// Messages, ToolDefinitions, ToolCalls, canonical stream Events (text delta,
// completed tool call, finish), finish reasons, token usage, structured
// errors, ID generation, and request validation.
//
// The package has zero external dependencies (Go standard library only) and
// performs no I/O. Provider adapters translate their wire formats into these
// types; consumers of the SDK never see a vendor payload.
//
// Core types:
//   - [Message]: One unit of conversation (system, user, assistant, tool)
//   - [Request]: A generation request (model, messages, tools, options)
//   - [Result]: The buffered outcome of a generation or a multi-step run
//   - [Event]: One canonical streaming event
//   - [Error]: Structured error with kind and provider/tool context
//
// Tool-call arguments:
//
// A ToolCall surfaced through an Event or a Result always carries arguments
// that are syntactically valid JSON. Fragmented vendor deltas are reassembled
// and checked before a ToolCall is emitted; argument payloads that never
// become valid JSON are reported as [ToolCallError] values instead.
package api
