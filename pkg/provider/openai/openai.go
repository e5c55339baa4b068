// Package openai provides the preset for the OpenAI platform: the shared
// Chat Completions client pointed at api.openai.com with a required
// credential.
package openai

import (
	"context"
	"fmt"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/provider"
	"github.com/blazorly/aisdk-go/pkg/provider/openaicompat"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Provider implements provider.Provider for the OpenAI platform. It
// delegates HTTP communication to the shared openaicompat.Client.
type Provider struct {
	client *openaicompat.Client
}

// Ensure Provider satisfies the contracts at compile time.
var _ provider.Provider = (*Provider)(nil)
var _ provider.Embedder = (*Provider)(nil)

// New creates an OpenAI provider. A credential is required: either a
// static APIKey or a TokenSource. BaseURL defaults to the public platform
// endpoint.
func New(cfg provider.Config) (*Provider, error) {
	if cfg.APIKey == "" && cfg.Tokens == nil {
		return nil, fmt.Errorf("openai: APIKey is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}

	client, err := openaicompat.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Provider{client: client}, nil
}

// Factory adapts New to the provider.Factory signature.
func Factory(cfg provider.Config) (provider.Provider, error) {
	return New(cfg)
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.client.Name()
}

// Capabilities returns what this provider supports.
func (p *Provider) Capabilities() provider.Capabilities {
	return p.client.Capabilities()
}

// Complete performs buffered inference.
func (p *Provider) Complete(ctx context.Context, req *api.Request) (*api.Result, error) {
	return p.client.Complete(ctx, req)
}

// Stream performs streaming inference.
func (p *Provider) Stream(ctx context.Context, req *api.Request) (<-chan api.Event, error) {
	return p.client.Stream(ctx, req)
}

// ListModels returns the models available on the platform.
func (p *Provider) ListModels(ctx context.Context) ([]provider.Model, error) {
	return p.client.ListModels(ctx)
}

// Embed computes embeddings for a batch of inputs.
func (p *Provider) Embed(ctx context.Context, req *provider.EmbedRequest) (*provider.EmbedResult, error) {
	return p.client.Embed(ctx, req)
}

// Close releases provider resources.
func (p *Provider) Close() error {
	return p.client.Close()
}
