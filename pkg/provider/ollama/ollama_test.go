package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/provider"
	"github.com/blazorly/aisdk-go/pkg/provider/openaicompat"
)

func TestNew_NoCredentialNeeded(t *testing.T) {
	p, err := New(provider.Config{})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer p.Close()

	if p.Name() != "ollama" {
		t.Errorf("name = %q, want %q", p.Name(), "ollama")
	}
}

func TestProvider_CompleteDelegates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected path /v1/chat/completions, got %s", r.URL.Path)
		}
		// Local servers run without credentials.
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want no auth header", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openaicompat.ChatCompletionResponse{
			Model: "llama3.2",
			Choices: []openaicompat.ChatChoice{
				{Message: openaicompat.ChatMessage{Role: "assistant", Content: "pong"}, FinishReason: "stop"},
			},
		})
	}))
	defer srv.Close()

	p, err := New(provider.Config{BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer p.Close()

	res, err := p.Complete(context.Background(), &api.Request{
		Model:    "llama3.2",
		Messages: []api.Message{api.UserMessage("ping")},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if res.Text != "pong" {
		t.Errorf("text = %q, want %q", res.Text, "pong")
	}
}
