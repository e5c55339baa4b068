package openaicompat

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/debug"
	"github.com/blazorly/aisdk-go/pkg/provider"
)

// streamDecoder holds the per-stream decode state: the tool-call
// accumulator, which slot indices have been opened, and the finish data
// captured while waiting for trailing usage chunks.
type streamDecoder struct {
	name   string
	acc    *provider.Accumulator
	opened map[int]bool

	finished bool
	reason   api.FinishReason
	usage    *api.Usage
}

// ParseStream reads Chat Completions SSE chunks from body and sends
// canonical events on ch. The channel is not closed here; the caller owns
// it.
//
// SSE format expected:
//
//	data: {"id":"...","choices":[...]}\n
//	\n
//	data: [DONE]\n
//	\n
//
// Text deltas and completed tool calls go out as they become available; the
// single finish event goes out when the physical stream ends, because
// backends report usage in a separate chunk after finish_reason when
// stream_options.include_usage is set. A vendor protocol violation or read
// failure produces one terminal error event and no finish.
func ParseStream(ctx context.Context, name string, body io.Reader, ch chan<- api.Event) {
	scanner := bufio.NewScanner(body)
	dec := &streamDecoder{
		name:   name,
		acc:    provider.NewAccumulator(name),
		opened: make(map[int]bool),
		reason: api.FinishOther,
	}

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := scanner.Text()

		// SSE lines that don't start with "data: " are ignored
		// (empty lines, ": keep-alive" comments).
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		debug.Raw("streaming", payload)

		if payload == "[DONE]" {
			break
		}

		var chunk ChatCompletionChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			slog.Warn("skipping malformed SSE chunk",
				"provider", name,
				"error", err.Error(),
				"data", Truncate(payload, 200),
			)
			continue
		}

		ok, err := dec.chunk(ctx, &chunk, ch)
		if err != nil {
			provider.Send(ctx, ch, api.Event{Type: api.EventError, Err: err})
			return
		}
		if !ok {
			return
		}
	}

	// Scanner error (connection dropped mid-stream).
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return
		}
		provider.Send(ctx, ch, api.Event{
			Type: api.EventError,
			Err:  api.NewTransportError(name, 0, "stream read failed: "+err.Error(), err),
		})
		return
	}

	// A backend that ended the stream without a finish_reason still owes the
	// consumer its buffered tool calls and a finish event.
	if !dec.flush(ctx, ch) {
		return
	}
	provider.Send(ctx, ch, api.Event{
		Type:         api.EventFinish,
		FinishReason: dec.reason,
		Usage:        dec.usage,
	})
}

// chunk dispatches one parsed chunk. The first return reports whether the
// consumer is still accepting events; the second is a fatal stream error.
func (d *streamDecoder) chunk(ctx context.Context, chunk *ChatCompletionChunk, ch chan<- api.Event) (bool, error) {
	if chunk.Usage != nil {
		d.usage = &api.Usage{
			InputTokens:  chunk.Usage.PromptTokens,
			OutputTokens: chunk.Usage.CompletionTokens,
			TotalTokens:  chunk.Usage.TotalTokens,
		}
	}

	// A chunk without choices carries only the trailing usage sent when
	// stream_options.include_usage is set.
	if len(chunk.Choices) == 0 {
		return true, nil
	}

	choice := chunk.Choices[0]

	if choice.FinishReason != nil {
		d.finished = true
		d.reason = MapFinishReason(*choice.FinishReason)
		return d.flush(ctx, ch), nil
	}

	if len(choice.Delta.ToolCalls) > 0 {
		for _, tc := range choice.Delta.ToolCalls {
			// The first fragment for an index opens the slot; everything a
			// fragment carries beyond that is argument text. Re-sent call
			// metadata on later fragments is ignored.
			if !d.opened[tc.Index] {
				d.opened[tc.Index] = true
				if err := d.acc.Open(tc.Index, tc.ID, tc.Function.Name); err != nil {
					return false, err
				}
			}
			if tc.Function.Arguments != "" {
				if err := d.acc.Append(tc.Index, tc.Function.Arguments); err != nil {
					return false, err
				}
			}
		}
		return true, nil
	}

	if choice.Delta.Content != nil && *choice.Delta.Content != "" {
		return provider.Send(ctx, ch, api.Event{
			Type:      api.EventTextDelta,
			TextDelta: *choice.Delta.Content,
		}), nil
	}

	// Role-only and empty delta chunks carry nothing to surface.
	return true, nil
}

// flush force-closes the accumulator and emits the completed tool calls in
// ascending index order, then the flagged decode failures. Safe to call
// more than once; later calls emit nothing.
func (d *streamDecoder) flush(ctx context.Context, ch chan<- api.Event) bool {
	calls, flags := d.acc.FinishStream()
	for i := range calls {
		if !provider.Send(ctx, ch, api.Event{Type: api.EventToolCall, ToolCall: &calls[i]}) {
			return false
		}
	}
	for i := range flags {
		if !provider.Send(ctx, ch, api.Event{Type: api.EventToolCallError, ToolCallError: &flags[i]}) {
			return false
		}
	}
	return true
}

// Truncate limits a string to maxLen characters for log output.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
