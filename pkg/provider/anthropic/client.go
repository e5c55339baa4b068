package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/auth"
	"github.com/blazorly/aisdk-go/pkg/debug"
	"github.com/blazorly/aisdk-go/pkg/provider"
)

const (
	defaultBaseURL = "https://api.anthropic.com"

	// apiVersion pins the Messages API revision via the anthropic-version
	// header, which the backend requires on every request.
	apiVersion = "2023-06-01"
)

// Client implements provider.Provider against the Anthropic Messages API.
// The configured base URL carries no path; the client appends the /v1
// endpoint paths.
type Client struct {
	name       string
	baseURL    string
	tokens     auth.TokenSource
	headers    map[string]string
	httpClient *http.Client
	caps       provider.Capabilities
}

var _ provider.Provider = (*Client)(nil)

// New creates a Client from the shared provider configuration. Everything
// has a default; a missing credential surfaces as a 401 from the backend,
// not a construction error, so test servers and authenticating proxies
// work without keys.
func New(cfg provider.Config) (*Client, error) {
	name := cfg.Name
	if name == "" {
		name = cfg.Type
	}
	if name == "" {
		name = "anthropic"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
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
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     cfg.TokenSource(),
		headers:    cfg.Headers,
		httpClient: httpClient,
		caps: provider.Capabilities{
			Streaming:   true,
			Completion:  true,
			ToolCalling: true,
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

// authorize attaches the credential, the API version header, and any
// configured extra headers. Configured headers win on conflict so
// deployments behind header-keyed gateways can override both.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return api.NewTransportError(c.name, 0, "resolving credentials failed: "+err.Error(), err)
	}
	if token != "" {
		req.Header.Set("x-api-key", token)
	}
	req.Header.Set("anthropic-version", apiVersion)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return nil
}

// Complete performs buffered inference against the /v1/messages endpoint.
func (c *Client) Complete(ctx context.Context, req *api.Request) (*api.Result, error) {
	body, err := json.Marshal(TranslateRequest(req, false))
	if err != nil {
		return nil, api.NewTransportError(c.name, 0, "encoding request failed: "+err.Error(), err)
	}
	debug.Log("providers", "messages request", "provider", c.name, "model", req.Model, "stream", false)
	debug.Raw("providers", string(body))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
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

	var msgResp MessageResponse
	if debug.TraceIsEnabled("providers") {
		raw, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, api.NewTransportError(c.name, 0, "reading response failed: "+err.Error(), err)
		}
		debug.Raw("providers", string(raw))
		if err := json.Unmarshal(raw, &msgResp); err != nil {
			return nil, api.NewTransportError(c.name, 0, "decoding response failed: "+err.Error(), err)
		}
	} else if err := json.NewDecoder(httpResp.Body).Decode(&msgResp); err != nil {
		return nil, api.NewTransportError(c.name, 0, "decoding response failed: "+err.Error(), err)
	}

	return TranslateResponse(c.name, &msgResp)
}

// Stream performs streaming inference against the /v1/messages endpoint.
// Connection setup and the HTTP status check happen before the channel is
// returned; afterwards one goroutine decodes the SSE body into canonical
// events and closes the channel when the stream ends.
//
// The HTTP client timeout is not applied to streaming requests because a
// stream can legitimately outlive any fixed timeout. Lifecycle control
// relies on context cancellation instead.
func (c *Client) Stream(ctx context.Context, req *api.Request) (<-chan api.Event, error) {
	body, err := json.Marshal(TranslateRequest(req, true))
	if err != nil {
		return nil, api.NewTransportError(c.name, 0, "encoding request failed: "+err.Error(), err)
	}
	debug.Log("providers", "messages request", "provider", c.name, "model", req.Model, "stream", true)
	debug.Raw("providers", string(body))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
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

// ListModels returns available models by querying the /v1/models endpoint.
func (c *Client) ListModels(ctx context.Context) ([]provider.Model, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
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

	var modelsResp ModelsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&modelsResp); err != nil {
		return nil, api.NewTransportError(c.name, 0, "decoding models response failed: "+err.Error(), err)
	}

	models := make([]provider.Model, 0, len(modelsResp.Data))
	for _, m := range modelsResp.Data {
		models = append(models, provider.Model{ID: m.ID})
	}
	return models, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
