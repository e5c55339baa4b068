package provider

import (
	"testing"

	"github.com/blazorly/aisdk-go/pkg/api"
)

func TestValidateCapabilities(t *testing.T) {
	toolReq := &api.Request{
		Model:    "m",
		Messages: []api.Message{api.UserMessage("hi")},
		Tools:    []api.ToolDefinition{{Name: "get_weather"}},
	}
	plainReq := &api.Request{
		Model:    "m",
		Messages: []api.Message{api.UserMessage("hi")},
	}

	tests := []struct {
		name      string
		caps      Capabilities
		req       *api.Request
		streaming bool
		wantParam string
	}{
		{
			name:      "full capabilities accept tool streaming",
			caps:      Capabilities{Streaming: true, Completion: true, ToolCalling: true},
			req:       toolReq,
			streaming: true,
		},
		{
			name:      "streaming against non-streaming provider rejected",
			caps:      Capabilities{Completion: true},
			req:       plainReq,
			streaming: true,
			wantParam: "stream",
		},
		{
			name:      "buffered call without completion falls back to streaming",
			caps:      Capabilities{Streaming: true},
			req:       plainReq,
			streaming: false,
		},
		{
			name:      "no inference path at all rejected",
			caps:      Capabilities{},
			req:       plainReq,
			streaming: false,
			wantParam: "model",
		},
		{
			name:      "tools against non-tool provider rejected",
			caps:      Capabilities{Streaming: true, Completion: true},
			req:       toolReq,
			streaming: false,
			wantParam: "tools",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCapabilities(tt.caps, tt.req, tt.streaming)
			if tt.wantParam == "" {
				if err != nil {
					t.Fatalf("expected compatible request, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected capability rejection, got nil")
			}
			if err.Param != tt.wantParam {
				t.Errorf("expected param %q, got %q", tt.wantParam, err.Param)
			}
		})
	}
}
