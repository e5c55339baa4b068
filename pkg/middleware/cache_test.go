package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/cache"
	"github.com/blazorly/aisdk-go/pkg/cache/memory"
)

func TestKeyDeterministic(t *testing.T) {
	req := chatRequest()
	if Key(req) != Key(chatRequest()) {
		t.Error("identical requests must produce identical keys")
	}

	other := chatRequest()
	other.Model = "other-model"
	if Key(req) == Key(other) {
		t.Error("different models must produce different keys")
	}

	temp := 0.5
	sampled := chatRequest()
	sampled.Temperature = &temp
	if Key(req) == Key(sampled) {
		t.Error("different sampling options must produce different keys")
	}

	appended := chatRequest()
	appended.Messages = append(appended.Messages, api.AssistantMessage("hi"))
	if Key(req) == Key(appended) {
		t.Error("different conversations must produce different keys")
	}
}

func TestKeyIgnoresToolSchemas(t *testing.T) {
	withSchema := func(schema string) *api.Request {
		req := chatRequest()
		req.Tools = []api.ToolDefinition{{
			Name:       "get_weather",
			Parameters: json.RawMessage(schema),
		}}
		return req
	}

	a := withSchema(`{"type":"object","properties":{"city":{"type":"string"}}}`)
	b := withSchema(`{"type":"object"}`)
	if Key(a) != Key(b) {
		t.Error("tool schemas are not part of the key; only names are")
	}

	renamed := withSchema(`{"type":"object"}`)
	renamed.Tools[0].Name = "get_forecast"
	if Key(a) == Key(renamed) {
		t.Error("different tool names must produce different keys")
	}
}

func TestCacheGenerateMissThenHit(t *testing.T) {
	store := memory.New(0, 0)
	gen := &fakeGenerator{result: textResult("cached answer")}
	wrapped := Cache(store, nil)(gen)
	ctx := context.Background()

	first, err := wrapped.Generate(ctx, chatRequest())
	if err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	second, err := wrapped.Generate(ctx, chatRequest())
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}

	if gen.generateCalls != 1 {
		t.Errorf("generator called %d times, want 1 (second request served from cache)", gen.generateCalls)
	}
	if first.Text != second.Text {
		t.Errorf("cached text %q differs from original %q", second.Text, first.Text)
	}
}

func TestCacheGenerateDoesNotStoreFailures(t *testing.T) {
	store := memory.New(0, 0)
	gen := &fakeGenerator{err: errors.New("backend down")}
	wrapped := Cache(store, nil)(gen)
	ctx := context.Background()

	wrapped.Generate(ctx, chatRequest())
	wrapped.Generate(ctx, chatRequest())

	if gen.generateCalls != 2 {
		t.Errorf("generator called %d times, want 2 (failures must not be cached)", gen.generateCalls)
	}
}

func TestCacheStreamRecordsAndReplays(t *testing.T) {
	call := api.ToolCall{ID: "call_1", Name: "get_weather", Arguments: json.RawMessage(`{"city":"Berlin"}`)}
	store := memory.New(0, 0)
	gen := &fakeGenerator{events: []api.Event{
		{Type: api.EventTextDelta, TextDelta: "Checking "},
		{Type: api.EventTextDelta, TextDelta: "the weather."},
		{Type: api.EventToolCall, ToolCall: &call},
		{Type: api.EventFinish, FinishReason: api.FinishToolCalls, Usage: &api.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
	}}
	wrapped := Cache(store, nil)(gen)
	ctx := context.Background()

	ch, err := wrapped.Stream(ctx, chatRequest())
	if err != nil {
		t.Fatalf("first Stream failed: %v", err)
	}
	drainEvents(t, ch)

	ch, err = wrapped.Stream(ctx, chatRequest())
	if err != nil {
		t.Fatalf("second Stream failed: %v", err)
	}
	replayed := drainEvents(t, ch)

	if gen.streamCalls != 1 {
		t.Fatalf("generator streamed %d times, want 1 (second request replayed from cache)", gen.streamCalls)
	}

	var text string
	var calls int
	for _, ev := range replayed {
		switch ev.Type {
		case api.EventTextDelta:
			text += ev.TextDelta
		case api.EventToolCall:
			calls++
			if ev.ToolCall.Name != "get_weather" {
				t.Errorf("replayed call = %+v", ev.ToolCall)
			}
		}
	}
	if text != "Checking the weather." {
		t.Errorf("replayed text = %q, want the recorded text", text)
	}
	if calls != 1 {
		t.Errorf("replayed %d tool calls, want 1", calls)
	}

	last := replayed[len(replayed)-1]
	if last.Type != api.EventFinish || last.FinishReason != api.FinishToolCalls {
		t.Errorf("last replayed event = %+v, want the recorded finish", last)
	}
	if last.Usage == nil || last.Usage.TotalTokens != 15 {
		t.Errorf("replayed usage = %+v, want the recorded totals", last.Usage)
	}
}

func TestCacheStreamSharesEntriesWithGenerate(t *testing.T) {
	store := memory.New(0, 0)
	gen := &fakeGenerator{events: textEvents("streamed answer")}
	wrapped := Cache(store, nil)(gen)
	ctx := context.Background()

	ch, err := wrapped.Stream(ctx, chatRequest())
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	drainEvents(t, ch)

	res, err := wrapped.Generate(ctx, chatRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if gen.generateCalls != 0 {
		t.Errorf("generator Generate called %d times, want 0 (served from the stream recording)", gen.generateCalls)
	}
	if res.Text != "streamed answer" {
		t.Errorf("Text = %q, want the recorded stream text", res.Text)
	}
	if len(res.Messages) == 0 || res.Messages[len(res.Messages)-1].Role != api.RoleAssistant {
		t.Errorf("recorded result messages = %+v, want the grown conversation", res.Messages)
	}
}

func TestCacheStreamDoesNotStoreFailures(t *testing.T) {
	store := memory.New(0, 0)
	gen := &fakeGenerator{events: []api.Event{
		{Type: api.EventTextDelta, TextDelta: "partial"},
		{Type: api.EventError, Err: api.NewTransportError("fake", 500, "boom", nil)},
	}}
	wrapped := Cache(store, nil)(gen)
	ctx := context.Background()

	ch, err := wrapped.Stream(ctx, chatRequest())
	if err != nil {
		t.Fatalf("first Stream failed: %v", err)
	}
	drainEvents(t, ch)

	ch, err = wrapped.Stream(ctx, chatRequest())
	if err != nil {
		t.Fatalf("second Stream failed: %v", err)
	}
	drainEvents(t, ch)

	if gen.streamCalls != 2 {
		t.Errorf("generator streamed %d times, want 2 (failed streams must not be cached)", gen.streamCalls)
	}
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (*api.Result, error) {
	return nil, errors.New("store down")
}
func (failingStore) Set(context.Context, string, *api.Result) error { return errors.New("store down") }
func (failingStore) Delete(context.Context, string) error           { return errors.New("store down") }
func (failingStore) Close() error                                   { return nil }

var _ cache.Store = failingStore{}

func TestCacheStoreFailureFallsThrough(t *testing.T) {
	gen := &fakeGenerator{result: textResult("still works")}
	wrapped := Cache(failingStore{}, nil)(gen)
	ctx := context.Background()

	res, err := wrapped.Generate(ctx, chatRequest())
	if err != nil {
		t.Fatalf("Generate failed with a broken store: %v", err)
	}
	if res.Text != "still works" {
		t.Errorf("Text = %q, want the generator's result", res.Text)
	}

	wrapped.Generate(ctx, chatRequest())
	if gen.generateCalls != 2 {
		t.Errorf("generator called %d times, want 2 (broken store means no caching)", gen.generateCalls)
	}
}
