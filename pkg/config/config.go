// Package config provides unified configuration for aisdk applications.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (AISDK_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for an aisdk application.
type Config struct {
	Providers []ProviderConfig `yaml:"providers"`
	Engine    EngineConfig     `yaml:"engine"`
	Cache     CacheConfig      `yaml:"cache"`
	MCP       MCPConfig        `yaml:"mcp"`
	Logging   LoggingConfig    `yaml:"logging"`
	Metrics   MetricsConfig    `yaml:"metrics"`
}

// ProviderConfig describes one configured provider instance.
type ProviderConfig struct {
	Name       string            `yaml:"name"`         // defaults to type
	Type       string            `yaml:"type"`         // "openai", "anthropic", "ollama", "openaicompat"
	BaseURL    string            `yaml:"base_url"`     // required for type=openaicompat
	Model      string            `yaml:"model"`        // default model for requests
	APIKey     string            `yaml:"api_key"`      // optional
	APIKeyFile string            `yaml:"api_key_file"` // _file variant for api_key
	Auth       string            `yaml:"auth"`         // "static" or "jwt", default: "static"
	JWTTTL     time.Duration     `yaml:"jwt_ttl"`      // token lifetime for auth=jwt, default: 15m
	Headers    map[string]string `yaml:"headers"`      // extra headers on every request
	Timeout    time.Duration     `yaml:"timeout"`      // per-request HTTP timeout
}

// EngineConfig holds multi-step generation settings.
type EngineConfig struct {
	MaxSteps      int      `yaml:"max_steps"`      // default: 1
	ParallelTools bool     `yaml:"parallel_tools"` // default: false
	ToolErrors    string   `yaml:"tool_errors"`    // "abort" or "report", default: "report"
	AllowedTools  []string `yaml:"allowed_tools"`  // empty means all tools allowed
}

// CacheConfig holds generation cache settings.
type CacheConfig struct {
	Type       string         `yaml:"type"`        // "none", "memory", or "postgres", default: "none"
	MaxEntries int            `yaml:"max_entries"` // for memory cache, default: 1024
	TTL        time.Duration  `yaml:"ttl"`         // entry lifetime, 0 means never expire, default: 1h
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific cache settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	DSNFile  string `yaml:"dsn_file"`  // _file variant for dsn
	MaxConns int32  `yaml:"max_conns"` // default: 25
}

// MCPConfig holds MCP (Model Context Protocol) server settings.
type MCPConfig struct {
	Servers []MCPServerConfig `yaml:"servers"`
}

// MCPServerConfig describes a single MCP server connection.
type MCPServerConfig struct {
	Name            string            `yaml:"name"`
	Transport       string            `yaml:"transport"`         // "sse" or "streamable-http"
	URL             string            `yaml:"url"`
	Headers         map[string]string `yaml:"headers"`
	BearerToken     string            `yaml:"bearer_token"`
	BearerTokenFile string            `yaml:"bearer_token_file"` // _file variant for bearer_token
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error", default: "info"
	Debug string `yaml:"debug"` // comma-separated debug categories, e.g. "providers,engine"
}

// MetricsConfig holds the Prometheus metrics listener settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: false
	Listen  string `yaml:"listen"`  // default: ":9090"
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Engine: EngineConfig{
			MaxSteps:   1,
			ToolErrors: "report",
		},
		Cache: CacheConfig{
			Type:       "none",
			MaxEntries: 1024,
			TTL:        time.Hour,
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Listen: ":9090",
			Path:   "/metrics",
		},
	}
}
