// Package anthropic implements the provider contract against the Anthropic
// Messages API.
//
// The Messages protocol differs from Chat Completions in three ways that
// matter here: conversation turns carry typed content blocks instead of a
// flat string, the system prompt travels in a dedicated request field, and
// streams are typed SSE events (message_start, content_block_delta,
// message_stop, ...) rather than uniform chunks. The adapter translates all
// of that into the canonical request, result and event types.
package anthropic
