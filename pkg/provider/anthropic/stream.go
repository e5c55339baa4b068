package anthropic

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
// accumulator, which content indices hold tool_use blocks, and the finish
// data gathered across message_start and message_delta events.
type streamDecoder struct {
	name string
	acc  *provider.Accumulator
	tool map[int]bool

	reason    api.FinishReason
	inTokens  int
	outTokens int
	usageSeen bool
}

// ParseStream reads Messages API SSE events from body and sends canonical
// events on ch. The channel is not closed here; the caller owns it.
//
// The protocol frames each event as an "event:" line followed by "data:"
// lines and a blank line. The payload repeats the event type, so dispatch
// keys off the decoded JSON. Text and completed tool calls surface as the
// blocks deliver and close; the single finish event goes out when the
// physical stream ends, carrying the stop reason from message_delta and
// the summed usage. A protocol violation, a read failure, or an error
// event produces one terminal error event and no finish.
func ParseStream(ctx context.Context, name string, body io.Reader, ch chan<- api.Event) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	dec := &streamDecoder{
		name:   name,
		acc:    provider.NewAccumulator(name),
		tool:   make(map[int]bool),
		reason: api.FinishOther,
	}

	var data strings.Builder
	dispatch := func() (bool, error) {
		if data.Len() == 0 {
			return true, nil
		}
		payload := data.String()
		data.Reset()
		debug.Raw("streaming", payload)

		var ev StreamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			slog.Warn("skipping malformed stream event",
				"provider", name,
				"error", err.Error(),
				"data", truncate(payload, 200),
			)
			return true, nil
		}
		return dec.event(ctx, &ev, ch)
	}

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := scanner.Text()

		// A blank line terminates the current event frame.
		if line == "" {
			ok, err := dispatch()
			if err != nil {
				provider.Send(ctx, ch, api.Event{Type: api.EventError, Err: err})
				return
			}
			if !ok {
				return
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		// The "event:" line duplicates the payload's type field; the
		// payload is authoritative.
		if strings.HasPrefix(line, "event:") {
			continue
		}
		if strings.HasPrefix(line, "data:") {
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(line[5:]))
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

	// An event frame the stream ended without terminating.
	ok, err := dispatch()
	if err != nil {
		provider.Send(ctx, ch, api.Event{Type: api.EventError, Err: err})
		return
	}
	if !ok {
		return
	}

	// A stream truncated before message_stop still owes the consumer its
	// buffered tool calls and a finish event.
	if !dec.flush(ctx, ch) {
		return
	}
	provider.Send(ctx, ch, api.Event{
		Type:         api.EventFinish,
		FinishReason: dec.reason,
		Usage:        dec.usage(),
	})
}

// event dispatches one decoded stream event. The first return reports
// whether the consumer is still accepting events; the second is a fatal
// stream error.
func (d *streamDecoder) event(ctx context.Context, ev *StreamEvent, ch chan<- api.Event) (bool, error) {
	switch ev.Type {
	case "message_start":
		if ev.Message != nil && ev.Message.Usage != nil {
			d.inTokens = ev.Message.Usage.InputTokens
			d.outTokens = ev.Message.Usage.OutputTokens
			d.usageSeen = true
		}

	case "content_block_start":
		if ev.ContentBlock == nil || ev.ContentBlock.Type != "tool_use" {
			return true, nil
		}
		// The opening block carries the call ID and tool name; its input
		// field is an empty placeholder, the real JSON arrives as
		// input_json_delta fragments.
		d.tool[ev.Index] = true
		if err := d.acc.Open(ev.Index, ev.ContentBlock.ID, ev.ContentBlock.Name); err != nil {
			return false, err
		}

	case "content_block_delta":
		if ev.Delta == nil {
			return true, nil
		}
		switch ev.Delta.Type {
		case "text_delta":
			if ev.Delta.Text == "" {
				return true, nil
			}
			return provider.Send(ctx, ch, api.Event{
				Type:      api.EventTextDelta,
				TextDelta: ev.Delta.Text,
			}), nil
		case "input_json_delta":
			if ev.Delta.PartialJSON == "" {
				return true, nil
			}
			if err := d.acc.Append(ev.Index, ev.Delta.PartialJSON); err != nil {
				return false, err
			}
		}
		// Other delta types (thinking, signatures) are vendor extensions
		// with no canonical surface.

	case "content_block_stop":
		if !d.tool[ev.Index] {
			return true, nil
		}
		call, callErr, err := d.acc.Close(ev.Index)
		if err != nil {
			return false, err
		}
		if callErr != nil {
			return provider.Send(ctx, ch, api.Event{
				Type:          api.EventToolCallError,
				ToolCallError: callErr,
			}), nil
		}
		return provider.Send(ctx, ch, api.Event{
			Type:     api.EventToolCall,
			ToolCall: call,
		}), nil

	case "message_delta":
		if ev.Delta != nil && ev.Delta.StopReason != "" {
			d.reason = MapStopReason(ev.Delta.StopReason)
		}
		if ev.Usage != nil {
			if ev.Usage.InputTokens > 0 {
				d.inTokens = ev.Usage.InputTokens
			}
			d.outTokens = ev.Usage.OutputTokens
			d.usageSeen = true
		}

	case "message_stop":
		return d.flush(ctx, ch), nil

	case "error":
		message := "backend reported a stream error"
		if ev.Error != nil && ev.Error.Message != "" {
			message = ev.Error.Message
		}
		return false, api.NewTransportError(d.name, 0, message, nil)

	case "ping":
		// Keep-alive.
	}
	return true, nil
}

// flush force-closes the accumulator, emitting any still-open tool calls
// in ascending index order, then the flagged decode failures. Blocks that
// closed normally already went out through content_block_stop. Safe to
// call more than once; later calls emit nothing.
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

// usage assembles the reported token counts, or nil when the stream never
// carried any.
func (d *streamDecoder) usage() *api.Usage {
	if !d.usageSeen {
		return nil
	}
	return &api.Usage{
		InputTokens:  d.inTokens,
		OutputTokens: d.outTokens,
		TotalTokens:  d.inTokens + d.outTokens,
	}
}

// truncate limits a string to maxLen characters for log output.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
