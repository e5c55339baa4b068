package integration

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/engine"
	"github.com/blazorly/aisdk-go/pkg/tools"
)

func TestGenerateText(t *testing.T) {
	eng := newEngine(t, engine.Config{})

	res, err := eng.Generate(context.Background(), userRequest("Hello"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if res.Text != "Hello, nice day!" {
		t.Errorf("Text = %q, want %q", res.Text, "Hello, nice day!")
	}
	if res.FinishReason != api.FinishStop {
		t.Errorf("FinishReason = %q, want %q", res.FinishReason, api.FinishStop)
	}
	if res.ID == "" {
		t.Error("result ID is empty")
	}
	if res.Model != "mock-model" {
		t.Errorf("Model = %q, want %q", res.Model, "mock-model")
	}
	if got, want := res.Usage, (api.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}); got != want {
		t.Errorf("Usage = %+v, want %+v", got, want)
	}
	if res.Partial() {
		t.Error("text-only result reported as partial")
	}
	if len(res.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, want 1", len(res.Steps))
	}

	// The conversation grew by exactly the assistant turn.
	if len(res.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(res.Messages))
	}
	if res.Messages[1].Role != api.RoleAssistant {
		t.Errorf("Messages[1].Role = %q, want assistant", res.Messages[1].Role)
	}
	if res.Messages[1].Content != res.Text {
		t.Errorf("assistant message = %q, want %q", res.Messages[1].Content, res.Text)
	}
}

func TestGenerateDoesNotMutateRequest(t *testing.T) {
	eng := newEngine(t, engine.Config{})

	req := userRequest("count from 1 to 5")
	if _, err := eng.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(req.Messages) != 1 {
		t.Errorf("caller request grew to %d messages", len(req.Messages))
	}
}

func TestGenerateToolCallsReturnedAtDefaultBudget(t *testing.T) {
	// Default budget is one step: the model's tool calls come back to
	// the caller unexecuted, even with executors configured.
	eng := newEngine(t, engine.Config{
		Executors:  []tools.Executor{weatherExecutor{}},
		ToolErrors: engine.ToolErrorsReport,
	})

	res, err := eng.Generate(context.Background(), toolRequest("What is the weather in Berlin?"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if res.FinishReason != api.FinishToolCalls {
		t.Errorf("FinishReason = %q, want %q", res.FinishReason, api.FinishToolCalls)
	}
	if len(res.ToolCalls) != 1 {
		t.Fatalf("len(ToolCalls) = %d, want 1", len(res.ToolCalls))
	}

	call := res.ToolCalls[0]
	if call.Name != "get_weather" {
		t.Errorf("tool = %q, want get_weather", call.Name)
	}
	if call.ID != "call_mock_1" {
		t.Errorf("call ID = %q, want call_mock_1", call.ID)
	}

	var args struct {
		Location string `json:"location"`
		Unit     string `json:"unit"`
	}
	if err := json.Unmarshal(call.Arguments, &args); err != nil {
		t.Fatalf("arguments not valid JSON: %v", err)
	}
	if args.Location != "Berlin" || args.Unit != "celsius" {
		t.Errorf("arguments = %+v, want Berlin/celsius", args)
	}

	// One backend turn, no tool execution: the conversation ends on
	// the assistant message carrying the calls.
	last := res.Messages[len(res.Messages)-1]
	if last.Role != api.RoleAssistant || len(last.ToolCalls) != 1 {
		t.Errorf("last message = %+v, want assistant with one tool call", last)
	}
}

func TestGenerateToolLoop(t *testing.T) {
	eng := newEngine(t, engine.Config{
		MaxSteps:   4,
		Executors:  []tools.Executor{weatherExecutor{}},
		ToolErrors: engine.ToolErrorsReport,
	})

	res, err := eng.Generate(context.Background(), toolRequest("What is the weather in Berlin?"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if res.Text != "The tools returned: sunny, 21C in Berlin" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.FinishReason != api.FinishStop {
		t.Errorf("FinishReason = %q, want %q", res.FinishReason, api.FinishStop)
	}
	if len(res.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(res.Steps))
	}
	if res.Steps[0].FinishReason != api.FinishToolCalls {
		t.Errorf("step 1 reason = %q, want tool_calls", res.Steps[0].FinishReason)
	}

	// Usage sums over both steps.
	if got, want := res.Usage, (api.Usage{InputTokens: 30, OutputTokens: 20, TotalTokens: 50}); got != want {
		t.Errorf("Usage = %+v, want %+v", got, want)
	}

	// Conversation: user, assistant with calls, tool result, final answer.
	roles := make([]api.Role, 0, len(res.Messages))
	for _, msg := range res.Messages {
		roles = append(roles, msg.Role)
	}
	want := []api.Role{api.RoleUser, api.RoleAssistant, api.RoleTool, api.RoleAssistant}
	if len(roles) != len(want) {
		t.Fatalf("roles = %v, want %v", roles, want)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("roles = %v, want %v", roles, want)
		}
	}
	if ref := res.Messages[2].ToolCallRef; ref != "call_mock_1" {
		t.Errorf("tool message ref = %q, want call_mock_1", ref)
	}
}

func TestGenerateParallelToolOrder(t *testing.T) {
	// Two sibling calls run concurrently; their results must join the
	// conversation in the model's call order regardless.
	eng := newEngine(t, engine.Config{
		MaxSteps:   3,
		Executors:  []tools.Executor{weatherExecutor{}},
		ToolErrors: engine.ToolErrorsReport,
		Parallel:   true,
	})

	res, err := eng.Generate(context.Background(), toolRequest("compare the weather in Berlin and Paris"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := "The tools returned: sunny, 21C in Berlin; sunny, 21C in Paris"
	if res.Text != want {
		t.Errorf("Text = %q, want %q", res.Text, want)
	}

	var refs []string
	for _, msg := range res.Messages {
		if msg.Role == api.RoleTool {
			refs = append(refs, msg.ToolCallRef)
		}
	}
	if len(refs) != 2 || refs[0] != "call_mock_1" || refs[1] != "call_mock_2" {
		t.Errorf("tool result order = %v, want [call_mock_1 call_mock_2]", refs)
	}
}

func TestGenerateMalformedToolArguments(t *testing.T) {
	// One call decodes, its sibling never parses. The broken call is
	// flagged, the healthy one executes, and the loop completes.
	eng := newEngine(t, engine.Config{
		MaxSteps:   3,
		Executors:  []tools.Executor{weatherExecutor{}},
		ToolErrors: engine.ToolErrorsReport,
	})

	res, err := eng.Generate(context.Background(), toolRequest("malformed weather please"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !res.Partial() {
		t.Fatal("result with a flagged call must report Partial")
	}
	if len(res.ToolCallErrors) != 1 {
		t.Fatalf("len(ToolCallErrors) = %d, want 1", len(res.ToolCallErrors))
	}

	flag := res.ToolCallErrors[0]
	if flag.Name != "get_forecast" {
		t.Errorf("flagged tool = %q, want get_forecast", flag.Name)
	}
	if flag.Index != 1 {
		t.Errorf("flagged index = %d, want 1", flag.Index)
	}
	if flag.Raw != `{"location":"Paris"` {
		t.Errorf("flagged raw = %q", flag.Raw)
	}

	if res.Text != "The tools returned: sunny, 21C in Berlin" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.FinishReason != api.FinishStop {
		t.Errorf("FinishReason = %q, want stop", res.FinishReason)
	}
}

func TestGenerateAllowedToolsRejection(t *testing.T) {
	// get_weather is offered by the request but barred by configuration,
	// so its call is answered with an error result instead of running.
	eng := newEngine(t, engine.Config{
		MaxSteps:     3,
		Executors:    []tools.Executor{weatherExecutor{}},
		ToolErrors:   engine.ToolErrorsReport,
		AllowedTools: []string{"get_time"},
	})

	res, err := eng.Generate(context.Background(), toolRequest("What is the weather in Berlin?"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var toolMsg *api.Message
	for i := range res.Messages {
		if res.Messages[i].Role == api.RoleTool {
			toolMsg = &res.Messages[i]
			break
		}
	}
	if toolMsg == nil {
		t.Fatal("no tool result message in conversation")
	}
	if toolMsg.ToolCallRef != "call_mock_1" {
		t.Errorf("tool message ref = %q, want call_mock_1", toolMsg.ToolCallRef)
	}
	if want := "tool get_weather is not in the allowed tools list"; toolMsg.Content != want {
		t.Errorf("tool message = %q, want %q", toolMsg.Content, want)
	}
}
