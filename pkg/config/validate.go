package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// At least one provider must be configured.
	if len(c.Providers) == 0 {
		errs = append(errs, fmt.Errorf("at least one provider is required"))
	}

	// Provider entries must name a known type; effective names must be
	// unique because they key logs, metrics and provider selection.
	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		switch p.Type {
		case "openai", "anthropic", "ollama", "openaicompat":
			// valid
		default:
			errs = append(errs, fmt.Errorf("providers[%d].type must be \"openai\", \"anthropic\", \"ollama\", or \"openaicompat\", got %q", i, p.Type))
		}

		if p.Type == "openaicompat" && p.BaseURL == "" {
			errs = append(errs, fmt.Errorf("providers[%d].base_url is required when type is \"openaicompat\"", i))
		}

		switch p.Auth {
		case "", "static", "jwt":
			// valid
		default:
			errs = append(errs, fmt.Errorf("providers[%d].auth must be \"static\" or \"jwt\", got %q", i, p.Auth))
		}

		name := p.Name
		if name == "" {
			name = p.Type
		}
		if name != "" {
			if seen[name] {
				errs = append(errs, fmt.Errorf("providers[%d]: duplicate provider name %q", i, name))
			}
			seen[name] = true
		}
	}

	// engine.max_steps must not be negative.
	if c.Engine.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("engine.max_steps must be >= 0, got %d", c.Engine.MaxSteps))
	}

	// engine.tool_errors must be a known value.
	switch c.Engine.ToolErrors {
	case "abort", "report":
		// valid
	default:
		errs = append(errs, fmt.Errorf("engine.tool_errors must be \"abort\" or \"report\", got %q", c.Engine.ToolErrors))
	}

	// cache.type must be a known value.
	switch c.Cache.Type {
	case "none", "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("cache.type must be \"none\", \"memory\", or \"postgres\", got %q", c.Cache.Type))
	}

	// If cache.type is "postgres", DSN or DSNFile must be set.
	if c.Cache.Type == "postgres" {
		if c.Cache.Postgres.DSN == "" && c.Cache.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("cache.postgres.dsn or cache.postgres.dsn_file is required when cache.type is \"postgres\""))
		}
	}

	if c.Cache.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("cache.max_entries must be >= 0, got %d", c.Cache.MaxEntries))
	}

	// MCP server entries need a name and a URL to be routable.
	for i, s := range c.MCP.Servers {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("mcp.servers[%d].name is required", i))
		}
		if s.URL == "" {
			errs = append(errs, fmt.Errorf("mcp.servers[%d].url is required", i))
		}
		switch s.Transport {
		case "", "sse", "streamable-http":
			// valid
		default:
			errs = append(errs, fmt.Errorf("mcp.servers[%d].transport must be \"sse\" or \"streamable-http\", got %q", i, s.Transport))
		}
	}

	// metrics.listen is required when the endpoint is enabled.
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errs = append(errs, fmt.Errorf("metrics.listen is required when metrics.enabled is true"))
	}

	return errors.Join(errs...)
}
