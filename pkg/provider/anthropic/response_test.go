package anthropic

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/blazorly/aisdk-go/pkg/api"
)

func TestTranslateResponse_TextAndToolUse(t *testing.T) {
	resp := &MessageResponse{
		ID:    "msg_1",
		Model: "claude-sonnet-4-20250514",
		Content: []ContentBlock{
			{Type: "text", Text: "Looking it up. "},
			{Type: "text", Text: "One moment."},
			{Type: "tool_use", ID: "toolu_1", Name: "lookup", Input: json.RawMessage(`{"q":"go"}`)},
		},
		StopReason: "tool_use",
		Usage:      &Usage{InputTokens: 5, OutputTokens: 2},
	}

	res, err := TranslateResponse("test", resp)
	if err != nil {
		t.Fatalf("TranslateResponse failed: %v", err)
	}

	if res.Text != "Looking it up. One moment." {
		t.Errorf("text = %q, want the concatenated text blocks", res.Text)
	}
	if res.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q, want the response model", res.Model)
	}
	if res.FinishReason != api.FinishToolCalls {
		t.Errorf("finish reason = %q, want %q", res.FinishReason, api.FinishToolCalls)
	}
	if len(res.ToolCalls) != 1 || res.ToolCalls[0].ID != "toolu_1" {
		t.Fatalf("tool calls = %+v, want toolu_1", res.ToolCalls)
	}
	if res.Usage.TotalTokens != 7 {
		t.Errorf("total tokens = %d, want the summed 7", res.Usage.TotalTokens)
	}
	if !api.ValidGenerationID(res.ID) {
		t.Errorf("result ID = %q, want a generated gen_ ID", res.ID)
	}
}

func TestTranslateResponse_UndecodableInputFlagged(t *testing.T) {
	// The wire guarantees valid JSON in buffered responses, but the
	// translation must not trust that: a broken input flags its one call
	// and the rest of the response survives.
	resp := &MessageResponse{
		Model: "m",
		Content: []ContentBlock{
			{Type: "tool_use", ID: "toolu_good", Name: "alpha", Input: json.RawMessage(`{"a":1}`)},
			{Type: "tool_use", ID: "toolu_bad", Name: "beta", Input: json.RawMessage(`{"b":`)},
		},
		StopReason: "tool_use",
	}

	res, err := TranslateResponse("test", resp)
	if err != nil {
		t.Fatalf("TranslateResponse failed: %v", err)
	}

	if len(res.ToolCalls) != 1 || res.ToolCalls[0].ID != "toolu_good" {
		t.Fatalf("tool calls = %+v, want only toolu_good", res.ToolCalls)
	}
	if len(res.ToolCallErrors) != 1 {
		t.Fatalf("expected 1 flagged call, got %d", len(res.ToolCallErrors))
	}
	flag := res.ToolCallErrors[0]
	if flag.ID != "toolu_bad" || flag.Index != 1 {
		t.Errorf("flag = %+v, want toolu_bad at index 1", flag)
	}
	if !res.Partial() {
		t.Error("expected Partial() to report the flagged call")
	}
}

func TestTranslateResponse_EmptyInputNormalized(t *testing.T) {
	resp := &MessageResponse{
		Model: "m",
		Content: []ContentBlock{
			{Type: "tool_use", ID: "toolu_1", Name: "list_files"},
		},
		StopReason: "tool_use",
	}

	res, err := TranslateResponse("test", resp)
	if err != nil {
		t.Fatalf("TranslateResponse failed: %v", err)
	}
	if len(res.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(res.ToolCalls))
	}
	if string(res.ToolCalls[0].Arguments) != "{}" {
		t.Errorf("arguments = %s, want {}", res.ToolCalls[0].Arguments)
	}
}

func TestTranslateResponse_SynthesizesMissingCallID(t *testing.T) {
	resp := &MessageResponse{
		Model: "m",
		Content: []ContentBlock{
			{Type: "tool_use", Name: "ping", Input: json.RawMessage(`{}`)},
		},
		StopReason: "tool_use",
	}

	res, err := TranslateResponse("test", resp)
	if err != nil {
		t.Fatalf("TranslateResponse failed: %v", err)
	}
	if len(res.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(res.ToolCalls))
	}
	if res.ToolCalls[0].ID == "" {
		t.Error("expected a synthesized call ID")
	}
}

func TestMapStopReason(t *testing.T) {
	tests := []struct {
		wire string
		want api.FinishReason
	}{
		{"end_turn", api.FinishStop},
		{"stop_sequence", api.FinishStop},
		{"max_tokens", api.FinishLength},
		{"tool_use", api.FinishToolCalls},
		{"refusal", api.FinishContentFilter},
		{"pause_turn", api.FinishOther},
		{"", api.FinishOther},
	}

	for _, tt := range tests {
		if got := MapStopReason(tt.wire); got != tt.want {
			t.Errorf("MapStopReason(%q) = %q, want %q", tt.wire, got, tt.want)
		}
	}
}

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestMapHTTPError_EnvelopeMessage(t *testing.T) {
	resp := makeResponse(400, `{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens is required"}}`)
	apiErr := MapHTTPError("test", resp)

	if apiErr.Kind != api.ErrTransport {
		t.Errorf("kind = %q, want %q", apiErr.Kind, api.ErrTransport)
	}
	if apiErr.Status != 400 {
		t.Errorf("status = %d, want 400", apiErr.Status)
	}
	if apiErr.Message != "max_tokens is required" {
		t.Errorf("message = %q, want the envelope message", apiErr.Message)
	}
}

func TestMapHTTPError_DefaultMessages(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{400, "backend rejected the request"},
		{401, "backend rejected the configured credentials"},
		{403, "backend rejected the configured credentials"},
		{404, "backend resource not found"},
		{429, "backend rate limit exceeded"},
		{500, "backend server error"},
		{529, "backend server error"},
		{418, "unexpected backend response"},
	}

	for _, tt := range tests {
		apiErr := MapHTTPError("test", makeResponse(tt.status, ""))
		if apiErr.Status != tt.status {
			t.Errorf("status %d: got status %d", tt.status, apiErr.Status)
		}
		if apiErr.Message != tt.want {
			t.Errorf("status %d: message = %q, want %q", tt.status, apiErr.Message, tt.want)
		}
	}
}

func TestMapNetworkError(t *testing.T) {
	apiErr := MapNetworkError("test", io.ErrUnexpectedEOF)

	if apiErr.Kind != api.ErrTransport {
		t.Errorf("kind = %q, want %q", apiErr.Kind, api.ErrTransport)
	}
	if apiErr.Status != 0 {
		t.Errorf("status = %d, want 0 for connection-level failures", apiErr.Status)
	}
	if apiErr.Unwrap() != io.ErrUnexpectedEOF {
		t.Errorf("unwrapped = %v, want the original error", apiErr.Unwrap())
	}
}

func TestExtractErrorMessage(t *testing.T) {
	if msg := ExtractErrorMessage(bytes.NewBufferString(`{"type":"error","error":{"type":"api_error","message":"boom"}}`)); msg != "boom" {
		t.Errorf("message = %q, want %q", msg, "boom")
	}
	if msg := ExtractErrorMessage(bytes.NewBufferString("not json")); msg != "" {
		t.Errorf("message = %q, want empty for a non-JSON body", msg)
	}
	if msg := ExtractErrorMessage(nil); msg != "" {
		t.Errorf("message = %q, want empty for a nil body", msg)
	}
}
