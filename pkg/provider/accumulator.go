package provider

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/blazorly/aisdk-go/pkg/api"
)

// slot buffers one in-flight tool call while its argument fragments arrive.
type slot struct {
	id     string
	name   string
	args   strings.Builder
	closed bool
}

// Accumulator reassembles fragmented tool-call arguments from a vendor
// stream. Vendors announce a call with an opening fragment (slot index,
// call ID, tool name) and then deliver its argument JSON in arbitrarily
// split pieces keyed by that index; pieces for different indices interleave
// freely and indices need not be contiguous or ordered.
//
// A completed call is only ever surfaced once its buffer parses as JSON.
// A buffer that never becomes valid JSON condemns that one call, not the
// stream: the failure is reported as an api.ToolCallError and decoding
// continues.
//
// An Accumulator belongs to the single goroutine decoding one stream and
// is not safe for concurrent use.
type Accumulator struct {
	provider string
	slots    map[int]*slot
	finished bool
}

// NewAccumulator creates an empty accumulator. The provider name is carried
// into every error it produces.
func NewAccumulator(provider string) *Accumulator {
	return &Accumulator{
		provider: provider,
		slots:    make(map[int]*slot),
	}
}

// Open registers a new tool-call slot at the given index. A vendor that
// opens the same index twice, or opens a slot after the stream ended, has
// violated its protocol: the returned error is fatal to the stream.
//
// Vendors occasionally omit the call ID; a fresh one is synthesized so the
// call remains addressable by tool-result messages.
func (a *Accumulator) Open(index int, callID, name string) error {
	if a.finished {
		return api.NewMalformedStreamError(a.provider,
			fmt.Sprintf("tool call slot %d opened after stream end", index))
	}
	if _, exists := a.slots[index]; exists {
		return api.NewMalformedStreamError(a.provider,
			fmt.Sprintf("tool call slot %d opened twice", index))
	}
	if callID == "" {
		callID = api.NewCallID()
	}
	a.slots[index] = &slot{id: callID, name: name}
	return nil
}

// Append adds an argument fragment to the slot at index, preserving arrival
// order. The fragment is raw text: no parsing or validation happens here.
// Appending to an index that was never opened, or whose slot is already
// closed, is fatal to the stream.
func (a *Accumulator) Append(index int, fragment string) error {
	if a.finished {
		return api.NewMalformedStreamError(a.provider,
			fmt.Sprintf("argument fragment for slot %d after stream end", index))
	}
	s, ok := a.slots[index]
	if !ok {
		return api.NewMalformedStreamError(a.provider,
			fmt.Sprintf("argument fragment for unopened tool call slot %d", index))
	}
	if s.closed {
		return api.NewMalformedStreamError(a.provider,
			fmt.Sprintf("argument fragment for closed tool call slot %d", index))
	}
	s.args.WriteString(fragment)
	return nil
}

// Close finalizes the slot at index. On success the completed call is
// returned; if the accumulated buffer is not valid JSON the call is
// returned as a flagged api.ToolCallError instead. Either way the slot is
// spent. Closing an unknown or already-closed index is fatal to the
// stream.
func (a *Accumulator) Close(index int) (*api.ToolCall, *api.ToolCallError, error) {
	if a.finished {
		return nil, nil, api.NewMalformedStreamError(a.provider,
			fmt.Sprintf("tool call slot %d closed after stream end", index))
	}
	s, ok := a.slots[index]
	if !ok {
		return nil, nil, api.NewMalformedStreamError(a.provider,
			fmt.Sprintf("close of unopened tool call slot %d", index))
	}
	if s.closed {
		return nil, nil, api.NewMalformedStreamError(a.provider,
			fmt.Sprintf("tool call slot %d closed twice", index))
	}
	s.closed = true
	call, callErr := a.finalize(index, s)
	return call, callErr, nil
}

// FinishStream closes every still-open slot in ascending index order, with
// the same per-slot semantics as Close, and marks the accumulator done.
// It is idempotent: a second call returns nothing and re-emits nothing.
func (a *Accumulator) FinishStream() ([]api.ToolCall, []api.ToolCallError) {
	if a.finished {
		return nil, nil
	}
	a.finished = true

	var open []int
	for idx, s := range a.slots {
		if !s.closed {
			open = append(open, idx)
		}
	}
	sort.Ints(open)

	var calls []api.ToolCall
	var flags []api.ToolCallError
	for _, idx := range open {
		s := a.slots[idx]
		s.closed = true
		call, callErr := a.finalize(idx, s)
		if callErr != nil {
			flags = append(flags, *callErr)
			continue
		}
		calls = append(calls, *call)
	}
	return calls, flags
}

// finalize parses a spent slot's buffer. An empty buffer means a
// zero-argument call and normalizes to "{}".
func (a *Accumulator) finalize(index int, s *slot) (*api.ToolCall, *api.ToolCallError) {
	raw := s.args.String()
	if raw == "" {
		raw = "{}"
	}

	var probe any
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		decodeErr := api.NewToolDecodeError(index, s.id, s.name, err)
		return nil, &api.ToolCallError{
			Index:   index,
			ID:      s.id,
			Name:    s.name,
			Raw:     raw,
			Message: decodeErr.Message,
			Err:     decodeErr,
		}
	}

	return &api.ToolCall{
		ID:        s.id,
		Name:      s.name,
		Arguments: json.RawMessage(raw),
	}, nil
}
