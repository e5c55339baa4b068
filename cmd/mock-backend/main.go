// Command mock-backend runs a deterministic OpenAI-compatible Chat
// Completions server for conformance testing. Responses are selected by
// request content; the streaming tool-call scenarios deliver argument
// JSON fragmented across chunks, including two interleaved calls and a
// call with unparseable arguments, to exercise client-side reassembly.
//
// Scenario selection:
//
//   - tools requested, prompt mentions "compare": two tool calls with
//     interleaved argument fragments
//   - tools requested, prompt mentions "malformed": one valid call plus
//     one whose arguments never parse
//   - tools requested otherwise: one get_weather call, arguments split
//     across three chunks
//   - conversation already carries tool results: final text summarizing
//     them
//   - prompt mentions "count from 1 to 5": counting text
//   - anything else: fixed greeting text
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", handleChatCompletions)
	mux.HandleFunc("GET /v1/models", handleModels)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// --- Request types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []any         `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// --- Response types ---

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	Message      chatMsg `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatMsg struct {
	Role      string     `json:"role"`
	Content   *string    `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

type toolCall struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Function funcCall `json:"function"`
}

type funcCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Scenarios ---

// scenario describes one deterministic response: either text tokens or a
// set of tool calls with per-call argument fragments.
type scenario struct {
	tokens []string
	calls  []scriptedCall
}

// scriptedCall is one streamed tool call. The fragments concatenate to
// the arguments; buffered responses join them directly.
type scriptedCall struct {
	id        string
	name      string
	fragments []string
}

func classify(req *chatRequest) scenario {
	prompt := strings.ToLower(lastUserMessage(req))

	// A conversation that already carries tool results gets a closing
	// text answer, so multi-step clients terminate.
	if results := toolResults(req); len(results) > 0 {
		return scenario{tokens: []string{"The tools returned: ", strings.Join(results, "; ")}}
	}

	if len(req.Tools) > 0 {
		switch {
		case strings.Contains(prompt, "compare"):
			return scenario{calls: []scriptedCall{
				{
					id:        "call_mock_1",
					name:      "get_weather",
					fragments: []string{`{"location":`, `"Berlin"}`},
				},
				{
					id:        "call_mock_2",
					name:      "get_weather",
					fragments: []string{`{"location":`, `"Paris"}`},
				},
			}}
		case strings.Contains(prompt, "malformed"):
			return scenario{calls: []scriptedCall{
				{
					id:        "call_mock_1",
					name:      "get_weather",
					fragments: []string{`{"location":"Berlin"}`},
				},
				{
					id:        "call_mock_2",
					name:      "get_forecast",
					fragments: []string{`{"location":`, `"Paris"`},
				},
			}}
		default:
			return scenario{calls: []scriptedCall{
				{
					id:        "call_mock_1",
					name:      "get_weather",
					fragments: []string{`{"location":`, `"Berlin",`, `"unit":"celsius"}`},
				},
			}}
		}
	}

	if strings.Contains(prompt, "count from 1 to 5") {
		return scenario{tokens: []string{"1", ", ", "2", ", ", "3", ", ", "4", ", ", "5"}}
	}
	return scenario{tokens: []string{"Hello", ", ", "nice", " ", "day", "!"}}
}

// --- Handler ---

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"message":"invalid request","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	model := req.Model
	if model == "" {
		model = "mock-model"
	}
	sc := classify(&req)

	if req.Stream {
		streamScenario(w, model, sc)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bufferedScenario(model, sc))
}

func bufferedScenario(model string, sc scenario) chatResponse {
	if len(sc.calls) > 0 {
		calls := make([]toolCall, 0, len(sc.calls))
		for _, c := range sc.calls {
			calls = append(calls, toolCall{
				ID:   c.id,
				Type: "function",
				Function: funcCall{
					Name:      c.name,
					Arguments: strings.Join(c.fragments, ""),
				},
			})
		}
		return chatResponse{
			ID:     "chatcmpl-mock-tool",
			Object: "chat.completion",
			Model:  model,
			Choices: []chatChoice{{
				Message:      chatMsg{Role: "assistant", ToolCalls: calls},
				FinishReason: "tool_calls",
			}},
			Usage: chatUsage{PromptTokens: 20, CompletionTokens: 15, TotalTokens: 35},
		}
	}

	text := strings.Join(sc.tokens, "")
	return chatResponse{
		ID:     "chatcmpl-mock-text",
		Object: "chat.completion",
		Model:  model,
		Choices: []chatChoice{{
			Message:      chatMsg{Role: "assistant", Content: &text},
			FinishReason: "stop",
		}},
		Usage: chatUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

// --- Streaming ---

func streamScenario(w http.ResponseWriter, model string, sc scenario) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func(chunk map[string]any) {
		data, _ := json.Marshal(chunk)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	// Role chunk.
	send(deltaChunk(model, map[string]any{"role": "assistant"}))

	finishReason := "stop"
	completionTokens := len(sc.tokens)

	if len(sc.calls) > 0 {
		finishReason = "tool_calls"
		completionTokens = 15

		// Open every call slot first, then interleave the argument
		// fragments round-robin across the slots.
		for i, c := range sc.calls {
			send(deltaChunk(model, map[string]any{
				"tool_calls": []any{map[string]any{
					"index": i,
					"id":    c.id,
					"type":  "function",
					"function": map[string]any{
						"name":      c.name,
						"arguments": "",
					},
				}},
			}))
		}
		for round := 0; ; round++ {
			sent := false
			for i, c := range sc.calls {
				if round >= len(c.fragments) {
					continue
				}
				sent = true
				send(deltaChunk(model, map[string]any{
					"tool_calls": []any{map[string]any{
						"index": i,
						"function": map[string]any{
							"arguments": c.fragments[round],
						},
					}},
				}))
			}
			if !sent {
				break
			}
		}
	} else {
		for _, token := range sc.tokens {
			send(deltaChunk(model, map[string]any{"content": token}))
		}
	}

	// Finish chunk, then the trailing usage-only chunk that backends send
	// when stream_options.include_usage is set.
	send(map[string]any{
		"id":     "chatcmpl-mock-stream",
		"object": "chat.completion.chunk",
		"model":  model,
		"choices": []any{map[string]any{
			"index":         0,
			"delta":         map[string]any{},
			"finish_reason": finishReason,
		}},
	})
	send(map[string]any{
		"id":      "chatcmpl-mock-stream",
		"object":  "chat.completion.chunk",
		"model":   model,
		"choices": []any{},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": completionTokens,
			"total_tokens":      10 + completionTokens,
		},
	})

	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func deltaChunk(model string, delta map[string]any) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-mock-stream",
		"object": "chat.completion.chunk",
		"model":  model,
		"choices": []any{map[string]any{
			"index":         0,
			"delta":         delta,
			"finish_reason": nil,
		}},
	}
}

// --- Models endpoint ---

func handleModels(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": "mock-model", "object": "model", "owned_by": "aisdk-mock"},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- Helpers ---

func lastUserMessage(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			return req.Messages[i].Content
		}
	}
	return ""
}

func toolResults(req *chatRequest) []string {
	var results []string
	for _, msg := range req.Messages {
		if msg.Role == "tool" {
			results = append(results, msg.Content)
		}
	}
	return results
}
