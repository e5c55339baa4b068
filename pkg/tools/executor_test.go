package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/blazorly/aisdk-go/pkg/api"
)

func TestFuncMap_Execute(t *testing.T) {
	m := FuncMap{
		"get_weather": func(_ context.Context, args json.RawMessage) (string, error) {
			var p struct {
				City string `json:"city"`
			}
			if err := json.Unmarshal(args, &p); err != nil {
				return "", err
			}
			return "sunny in " + p.City, nil
		},
	}

	if m.Kind() != KindFunc {
		t.Errorf("Kind() = %d, want KindFunc", m.Kind())
	}
	if !m.CanExecute("get_weather") {
		t.Error("expected CanExecute(get_weather) = true")
	}
	if m.CanExecute("get_time") {
		t.Error("expected CanExecute(get_time) = false")
	}

	result, err := m.Execute(context.Background(), api.ToolCall{
		ID:        "call_1",
		Name:      "get_weather",
		Arguments: json.RawMessage(`{"city":"Berlin"}`),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.CallID != "call_1" {
		t.Errorf("CallID = %q, want %q", result.CallID, "call_1")
	}
	if result.Output != "sunny in Berlin" {
		t.Errorf("Output = %q, want %q", result.Output, "sunny in Berlin")
	}
	if result.IsError {
		t.Error("expected IsError = false")
	}
}

func TestFuncMap_FunctionErrorPropagates(t *testing.T) {
	boom := errors.New("upstream service unavailable")
	m := FuncMap{
		"lookup": func(context.Context, json.RawMessage) (string, error) {
			return "", boom
		},
	}

	_, err := m.Execute(context.Background(), api.ToolCall{ID: "call_1", Name: "lookup"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the function's error, got %v", err)
	}
}

func TestFuncMap_UnregisteredTool(t *testing.T) {
	m := FuncMap{}

	if m.CanExecute("missing") {
		t.Error("expected CanExecute(missing) = false")
	}

	_, err := m.Execute(context.Background(), api.ToolCall{ID: "call_1", Name: "missing"})
	if err == nil {
		t.Fatal("expected an error for an unregistered tool")
	}
}

func TestFuncMap_ContextReachesFunction(t *testing.T) {
	m := FuncMap{
		"slow": func(ctx context.Context, _ json.RawMessage) (string, error) {
			return "", ctx.Err()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Execute(ctx, api.ToolCall{ID: "call_1", Name: "slow"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFind(t *testing.T) {
	weather := FuncMap{
		"get_weather": func(context.Context, json.RawMessage) (string, error) { return "sunny", nil },
	}
	search := FuncMap{
		"search": func(context.Context, json.RawMessage) (string, error) { return "results", nil },
	}
	executors := []Executor{weather, search}

	e, ok := Find(executors, "search")
	if !ok {
		t.Fatal("expected to find an executor for search")
	}
	if !e.CanExecute("search") {
		t.Error("Find returned an executor that cannot run the tool")
	}

	if _, ok := Find(executors, "delete_account"); ok {
		t.Error("expected no executor for delete_account")
	}
	if _, ok := Find(nil, "anything"); ok {
		t.Error("expected no executor from an empty list")
	}
}

func TestFind_FirstMatchWins(t *testing.T) {
	first := FuncMap{
		"echo": func(context.Context, json.RawMessage) (string, error) { return "first", nil },
	}
	second := FuncMap{
		"echo": func(context.Context, json.RawMessage) (string, error) { return "second", nil },
	}

	e, ok := Find([]Executor{first, second}, "echo")
	if !ok {
		t.Fatal("expected to find an executor for echo")
	}

	result, err := e.Execute(context.Background(), api.ToolCall{ID: "call_1", Name: "echo"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Output != "first" {
		t.Errorf("Output = %q, want %q (registration order decides)", result.Output, "first")
	}
}

func TestKind_Values(t *testing.T) {
	if KindFunc != 0 {
		t.Errorf("KindFunc = %d, want 0", KindFunc)
	}
	if KindMCP != 1 {
		t.Errorf("KindMCP = %d, want 1", KindMCP)
	}
}
