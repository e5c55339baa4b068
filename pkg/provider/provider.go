package provider

import (
	"context"

	"github.com/blazorly/aisdk-go/pkg/api"
)

// Provider abstracts an LLM inference backend. The interface is
// protocol-agnostic: each adapter handles its own backend protocol
// (Chat Completions, Anthropic Messages, ...) internally and speaks
// canonical api types outward.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai", "ollama").
	Name() string

	// Capabilities returns what this provider supports.
	Capabilities() Capabilities

	// Complete performs buffered inference: one request, one Result.
	Complete(ctx context.Context, req *api.Request) (*api.Result, error)

	// Stream performs streaming inference. Request validation and the
	// initial connection happen synchronously; after a nil error the
	// returned channel delivers canonical events and is closed by the
	// provider when the stream completes or fails. Every send honors ctx,
	// so an abandoned consumer never wedges the producer.
	Stream(ctx context.Context, req *api.Request) (<-chan api.Event, error)

	// ListModels returns the models available from the backend.
	ListModels(ctx context.Context) ([]Model, error)

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}

// Embedder is implemented by providers that can compute embeddings.
// Callers type-assert: it is a capability, not part of the core contract.
type Embedder interface {
	Embed(ctx context.Context, req *EmbedRequest) (*EmbedResult, error)
}

// Model holds information about one model served by a provider.
type Model struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// EmbedRequest asks for embeddings over a batch of inputs.
type EmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbedResult carries one embedding vector per input, in input order.
type EmbedResult struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
	Usage      api.Usage   `json:"usage"`
}
