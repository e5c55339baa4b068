package mcp

import "github.com/blazorly/aisdk-go/pkg/auth"

// Transport kinds accepted by ServerConfig.
const (
	TransportStreamable = "streamable-http"
	TransportSSE        = "sse"
)

// Config holds the full set of MCP server connections.
type Config struct {
	// Servers lists the MCP servers to connect to.
	Servers []ServerConfig
}

// ServerConfig describes a single MCP server connection.
type ServerConfig struct {
	// Name is the logical server name, used in logs and when routing
	// tool calls.
	Name string `json:"name"`

	// Transport selects the wire transport: TransportStreamable (the
	// default when empty) or TransportSSE.
	Transport string `json:"transport"`

	// URL is the MCP server endpoint.
	URL string `json:"url"`

	// Headers are stamped onto every request, typically for API keys.
	Headers map[string]string `json:"headers,omitempty"`

	// Tokens supplies a bearer credential per request. When set it
	// wins over a static Authorization header.
	Tokens auth.TokenSource `json:"-"`
}
