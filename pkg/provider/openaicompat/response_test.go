package openaicompat

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/blazorly/aisdk-go/pkg/api"
)

func TestTranslateResponse_Text(t *testing.T) {
	resp := &ChatCompletionResponse{
		ID:    "chatcmpl-1",
		Model: "gpt-4o",
		Choices: []ChatChoice{
			{Message: ChatMessage{Role: "assistant", Content: "Hello."}, FinishReason: "stop"},
		},
		Usage: &ChatUsage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7},
	}

	res, err := TranslateResponse("test", resp)
	if err != nil {
		t.Fatalf("TranslateResponse failed: %v", err)
	}

	if res.Text != "Hello." {
		t.Errorf("text = %q, want %q", res.Text, "Hello.")
	}
	if res.Model != "gpt-4o" {
		t.Errorf("model = %q, want %q", res.Model, "gpt-4o")
	}
	if res.FinishReason != api.FinishStop {
		t.Errorf("finish reason = %q, want %q", res.FinishReason, api.FinishStop)
	}
	if res.Usage.TotalTokens != 7 {
		t.Errorf("total tokens = %d, want 7", res.Usage.TotalTokens)
	}
	if !api.ValidGenerationID(res.ID) {
		t.Errorf("result ID = %q, want a generated gen_ ID", res.ID)
	}
}

func TestTranslateResponse_NullContent(t *testing.T) {
	resp := &ChatCompletionResponse{
		Model: "m",
		Choices: []ChatChoice{
			{Message: ChatMessage{Role: "assistant", Content: nil}, FinishReason: "stop"},
		},
	}

	res, err := TranslateResponse("test", resp)
	if err != nil {
		t.Fatalf("TranslateResponse failed: %v", err)
	}
	if res.Text != "" {
		t.Errorf("text = %q, want empty for null content", res.Text)
	}
}

func TestTranslateResponse_SynthesizesMissingCallID(t *testing.T) {
	resp := &ChatCompletionResponse{
		Model: "m",
		Choices: []ChatChoice{
			{
				Message: ChatMessage{
					Role: "assistant",
					ToolCalls: []ChatToolCall{
						{Type: "function", Function: ChatFunctionCall{Name: "ping", Arguments: "{}"}},
					},
				},
				FinishReason: "tool_calls",
			},
		},
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

func TestTranslateResponse_NoChoices(t *testing.T) {
	_, err := TranslateResponse("test", &ChatCompletionResponse{Model: "m"})
	if err == nil {
		t.Fatal("expected error for a response without choices")
	}
	if !api.IsKind(err, api.ErrMalformedStream) {
		t.Errorf("err = %v, want kind malformed_stream", err)
	}
}

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestMapHTTPError_EnvelopeMessage(t *testing.T) {
	resp := makeResponse(400, `{"error":{"message":"bad model param","type":"invalid_request_error"}}`)
	apiErr := MapHTTPError("test", resp)

	if apiErr.Kind != api.ErrTransport {
		t.Errorf("kind = %q, want %q", apiErr.Kind, api.ErrTransport)
	}
	if apiErr.Status != 400 {
		t.Errorf("status = %d, want 400", apiErr.Status)
	}
	if apiErr.Message != "bad model param" {
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
		{503, "backend server error"},
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
	if msg := ExtractErrorMessage(bytes.NewBufferString(`{"error":{"message":"boom"}}`)); msg != "boom" {
		t.Errorf("message = %q, want %q", msg, "boom")
	}
	if msg := ExtractErrorMessage(bytes.NewBufferString("not json")); msg != "" {
		t.Errorf("message = %q, want empty for a non-JSON body", msg)
	}
	if msg := ExtractErrorMessage(nil); msg != "" {
		t.Errorf("message = %q, want empty for a nil body", msg)
	}
}
