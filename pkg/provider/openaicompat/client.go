package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/auth"
	"github.com/blazorly/aisdk-go/pkg/debug"
	"github.com/blazorly/aisdk-go/pkg/provider"
)

// Client implements provider.Provider against any OpenAI-compatible Chat
// Completions backend. The configured base URL carries the API prefix
// (".../v1"); the client appends the endpoint paths.
type Client struct {
	name       string
	baseURL    string
	tokens     auth.TokenSource
	headers    map[string]string
	httpClient *http.Client
	caps       provider.Capabilities

	// ModelMapper is an optional function that rewrites model names before
	// they reach the backend. Proxy deployments route by prefixed names
	// ("openai/gpt-4o"). If nil, the model name is used as-is.
	ModelMapper func(string) string
}

var _ provider.Provider = (*Client)(nil)
var _ provider.Embedder = (*Client)(nil)

// New creates a Client from the shared provider configuration. BaseURL is
// required; everything else has defaults.
func New(cfg provider.Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openaicompat: BaseURL is required")
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Type
	}
	if name == "" {
		name = "openaicompat"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		name:       name,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		tokens:     cfg.TokenSource(),
		headers:    cfg.Headers,
		httpClient: httpClient,
		caps: provider.Capabilities{
			Streaming:   true,
			Completion:  true,
			ToolCalling: true,
			Embeddings:  true,
		},
	}, nil
}

// Factory adapts New to the provider.Factory signature.
func Factory(cfg provider.Config) (provider.Provider, error) {
	return New(cfg)
}

// Name returns the configured provider label.
func (c *Client) Name() string {
	return c.name
}

// Capabilities returns what this provider supports.
func (c *Client) Capabilities() provider.Capabilities {
	return c.caps
}

// authorize attaches the credential and any configured extra headers.
// Configured headers win on conflict so deployments behind header-keyed
// gateways can replace the Authorization scheme.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return api.NewTransportError(c.name, 0, "resolving credentials failed: "+err.Error(), err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return nil
}

// Complete performs buffered inference against the /chat/completions
// endpoint.
func (c *Client) Complete(ctx context.Context, req *api.Request) (*api.Result, error) {
	chatReq := TranslateRequest(req, false)
	if c.ModelMapper != nil {
		chatReq.Model = c.ModelMapper(chatReq.Model)
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, api.NewTransportError(c.name, 0, "encoding request failed: "+err.Error(), err)
	}

	debug.Log("providers", "chat completion request", "provider", c.name, "model", chatReq.Model, "stream", false)
	debug.Raw("providers", string(body))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, api.NewTransportError(c.name, 0, "building request failed: "+err.Error(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, httpReq); err != nil {
		return nil, err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(c.name, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(c.name, httpResp)
	}

	var chatResp ChatCompletionResponse
	if debug.TraceIsEnabled("providers") {
		raw, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, api.NewTransportError(c.name, 0, "reading response failed: "+err.Error(), err)
		}
		debug.Raw("providers", string(raw))
		if err := json.Unmarshal(raw, &chatResp); err != nil {
			return nil, api.NewTransportError(c.name, 0, "decoding response failed: "+err.Error(), err)
		}
	} else if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return nil, api.NewTransportError(c.name, 0, "decoding response failed: "+err.Error(), err)
	}

	return TranslateResponse(c.name, &chatResp)
}

// Stream performs streaming inference against the /chat/completions
// endpoint. Connection setup and the HTTP status check happen before the
// channel is returned; afterwards one goroutine decodes the SSE body into
// canonical events and closes the channel when the stream ends.
//
// The HTTP client timeout is not applied to streaming requests because a
// stream can legitimately outlive any fixed timeout. Lifecycle control
// relies on context cancellation instead.
func (c *Client) Stream(ctx context.Context, req *api.Request) (<-chan api.Event, error) {
	chatReq := TranslateRequest(req, true)
	if c.ModelMapper != nil {
		chatReq.Model = c.ModelMapper(chatReq.Model)
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, api.NewTransportError(c.name, 0, "encoding request failed: "+err.Error(), err)
	}

	debug.Log("providers", "chat completion request", "provider", c.name, "model", chatReq.Model, "stream", true)
	debug.Raw("providers", string(body))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, api.NewTransportError(c.name, 0, "building request failed: "+err.Error(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if err := c.authorize(ctx, httpReq); err != nil {
		return nil, err
	}

	// Use a client without timeout for streaming. The context controls the
	// request lifetime instead.
	streamClient := &http.Client{
		Transport: c.httpClient.Transport,
	}

	httpResp, err := streamClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(c.name, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		defer httpResp.Body.Close()
		return nil, MapHTTPError(c.name, httpResp)
	}

	ch := make(chan api.Event, provider.EventBuffer)

	go func() {
		defer close(ch)
		defer httpResp.Body.Close()
		ParseStream(ctx, c.name, httpResp.Body, ch)
	}()

	return ch, nil
}

// ListModels returns available models by querying the /models endpoint.
func (c *Client) ListModels(ctx context.Context) ([]provider.Model, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, api.NewTransportError(c.name, 0, "building request failed: "+err.Error(), err)
	}
	if err := c.authorize(ctx, httpReq); err != nil {
		return nil, err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(c.name, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(c.name, httpResp)
	}

	var modelsResp ChatModelsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&modelsResp); err != nil {
		return nil, api.NewTransportError(c.name, 0, "decoding models response failed: "+err.Error(), err)
	}

	models := make([]provider.Model, 0, len(modelsResp.Data))
	for _, m := range modelsResp.Data {
		models = append(models, provider.Model{ID: m.ID, OwnedBy: m.OwnedBy})
	}
	return models, nil
}

// Embed computes embeddings via the /embeddings endpoint. Vectors come back
// in input order regardless of how the backend ordered its response.
func (c *Client) Embed(ctx context.Context, req *provider.EmbedRequest) (*provider.EmbedResult, error) {
	if len(req.Input) == 0 {
		return &provider.EmbedResult{Model: req.Model}, nil
	}

	model := req.Model
	if c.ModelMapper != nil {
		model = c.ModelMapper(model)
	}

	body, err := json.Marshal(ChatEmbeddingRequest{Model: model, Input: req.Input})
	if err != nil {
		return nil, api.NewTransportError(c.name, 0, "encoding request failed: "+err.Error(), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, api.NewTransportError(c.name, 0, "building request failed: "+err.Error(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, httpReq); err != nil {
		return nil, err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(c.name, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(c.name, httpResp)
	}

	var embResp ChatEmbeddingResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&embResp); err != nil {
		return nil, api.NewTransportError(c.name, 0, "decoding embeddings response failed: "+err.Error(), err)
	}

	out := &provider.EmbedResult{Model: embResp.Model}
	if out.Model == "" {
		out.Model = model
	}
	if embResp.Usage != nil {
		out.Usage = api.Usage{
			InputTokens: embResp.Usage.PromptTokens,
			TotalTokens: embResp.Usage.TotalTokens,
		}
	}

	vectors := make([][]float64, len(req.Input))
	for _, d := range embResp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, api.NewTransportError(c.name, 0,
				fmt.Sprintf("embedding index %d out of range [0, %d)", d.Index, len(vectors)), nil)
		}
		vectors[d.Index] = d.Embedding
	}
	out.Embeddings = vectors

	return out, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
