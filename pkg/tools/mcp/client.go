package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/auth"
	"github.com/blazorly/aisdk-go/pkg/tools"
)

// Client wraps one MCP server connection: the SDK client, its session,
// and the discovered tool cache.
type Client struct {
	cfg     ServerConfig
	client  *mcp.Client
	session *mcp.ClientSession

	mu       sync.Mutex
	cached   []api.ToolDefinition
	resolved bool
}

// NewClient creates a Client for the given server. Call Connect to
// establish the session.
func NewClient(cfg ServerConfig) *Client {
	return &Client{cfg: cfg}
}

// Connect performs the MCP handshake over a transport built from the
// server configuration.
func (c *Client) Connect(ctx context.Context) error {
	return c.ConnectWithTransport(ctx, nil)
}

// ConnectWithTransport performs the handshake over the given transport.
// A nil transport builds one from the configuration; tests pass the
// SDK's in-memory transport here.
func (c *Client) ConnectWithTransport(ctx context.Context, transport mcp.Transport) error {
	c.client = mcp.NewClient(
		&mcp.Implementation{
			Name:    "aisdk-go",
			Version: "1.0.0",
		},
		&mcp.ClientOptions{
			Capabilities: &mcp.ClientCapabilities{},
		},
	)

	if transport == nil {
		t, err := c.buildTransport()
		if err != nil {
			return fmt.Errorf("building transport for %q: %w", c.cfg.Name, err)
		}
		transport = t
	}

	session, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("connecting to MCP server %q: %w", c.cfg.Name, err)
	}
	c.session = session
	return nil
}

// buildTransport creates an SDK transport from the server configuration.
func (c *Client) buildTransport() (mcp.Transport, error) {
	httpClient := c.buildHTTPClient()

	switch c.cfg.Transport {
	case TransportSSE:
		transport := &mcp.SSEClientTransport{
			Endpoint: c.cfg.URL,
		}
		if httpClient != nil {
			transport.HTTPClient = httpClient
		}
		return transport, nil

	case TransportStreamable, "":
		transport := &mcp.StreamableClientTransport{
			Endpoint: c.cfg.URL,
		}
		if httpClient != nil {
			transport.HTTPClient = httpClient
		}
		return transport, nil

	default:
		return nil, fmt.Errorf("unsupported transport type %q", c.cfg.Transport)
	}
}

// buildHTTPClient returns an HTTP client that stamps the configured
// headers and credential onto every request. Returns nil when neither
// is configured.
func (c *Client) buildHTTPClient() *http.Client {
	if len(c.cfg.Headers) == 0 && c.cfg.Tokens == nil {
		return nil
	}
	return &http.Client{
		Transport: &headerTransport{
			base:    http.DefaultTransport,
			headers: c.cfg.Headers,
			tokens:  c.cfg.Tokens,
		},
	}
}

// headerTransport is an http.RoundTripper that adds the static headers
// and the TokenSource credential to each outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
	tokens  auth.TokenSource
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	if t.tokens != nil {
		token, err := t.tokens.Token(req.Context())
		if err != nil {
			return nil, fmt.Errorf("resolving MCP credential: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return t.base.RoundTrip(req)
}

// Tools lists the server's tools as canonical definitions. The first
// call queries the server; later calls return the cached list.
func (c *Client) Tools(ctx context.Context) ([]api.ToolDefinition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolved {
		return c.cached, nil
	}

	if c.session == nil {
		return nil, fmt.Errorf("MCP client %q not connected", c.cfg.Name)
	}

	var defs []api.ToolDefinition
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("listing tools from %q: %w", c.cfg.Name, err)
		}
		def, convErr := convertTool(tool)
		if convErr != nil {
			return nil, fmt.Errorf("converting tool %q from %q: %w", tool.Name, c.cfg.Name, convErr)
		}
		defs = append(defs, def)
	}

	c.cached = defs
	c.resolved = true
	return defs, nil
}

// CallTool executes one tool call on the server. A tool-level failure
// comes back as an error-flagged Result; session and transport
// failures come back as errors for the caller's failure policy.
func (c *Client) CallTool(ctx context.Context, call api.ToolCall) (*tools.Result, error) {
	if c.session == nil {
		return nil, fmt.Errorf("MCP client %q not connected", c.cfg.Name)
	}

	// The SDK wants decoded arguments, not raw JSON.
	var args map[string]any
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return &tools.Result{
				CallID:  call.ID,
				Output:  fmt.Sprintf("invalid arguments JSON: %v", err),
				IsError: true,
			}, nil
		}
	}

	result, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      call.Name,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("calling MCP tool %q on %q: %w", call.Name, c.cfg.Name, err)
	}

	return convertResult(call.ID, result), nil
}

// Close shuts down the MCP session.
func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

// convertTool converts an SDK Tool to an api.ToolDefinition.
func convertTool(t *mcp.Tool) (api.ToolDefinition, error) {
	var params json.RawMessage
	if t.InputSchema != nil {
		data, err := json.Marshal(t.InputSchema)
		if err != nil {
			return api.ToolDefinition{}, fmt.Errorf("marshaling input schema: %w", err)
		}
		params = data
	}

	return api.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  params,
	}, nil
}

// convertResult converts an SDK CallToolResult to a tools.Result,
// concatenating the text content blocks.
func convertResult(callID string, result *mcp.CallToolResult) *tools.Result {
	var output string
	for _, content := range result.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			if output != "" {
				output += "\n"
			}
			output += tc.Text
		}
	}

	return &tools.Result{
		CallID:  callID,
		Output:  output,
		IsError: result.IsError,
	}
}
