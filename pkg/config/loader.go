package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, AISDK_CONFIG env, ./config.yaml, /etc/aisdk/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
//  1. Explicit configPath argument
//  2. AISDK_CONFIG environment variable
//  3. ./config.yaml in the current directory
//  4. /etc/aisdk/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check AISDK_CONFIG env var.
	if envPath := os.Getenv("AISDK_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/aisdk/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. The
// provider variables target the first configured provider so that a config
// file's credentials can be swapped without editing it; with no config
// file they are enough to define one provider from scratch.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AISDK_PROVIDER"); v != "" {
		firstProvider(cfg).Type = v
	}
	if v := os.Getenv("AISDK_BASE_URL"); v != "" {
		firstProvider(cfg).BaseURL = v
	}
	if v := os.Getenv("AISDK_API_KEY"); v != "" {
		firstProvider(cfg).APIKey = v
	}
	if v := os.Getenv("AISDK_MODEL"); v != "" {
		firstProvider(cfg).Model = v
	}

	if v := os.Getenv("AISDK_MAX_STEPS"); v != "" {
		if steps, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MaxSteps = steps
		}
	}
	if v := os.Getenv("AISDK_TOOL_ERRORS"); v != "" {
		cfg.Engine.ToolErrors = v
	}
	if v := os.Getenv("AISDK_PARALLEL_TOOLS"); v != "" {
		if parallel, err := strconv.ParseBool(v); err == nil {
			cfg.Engine.ParallelTools = parallel
		}
	}

	if v := os.Getenv("AISDK_CACHE"); v != "" {
		cfg.Cache.Type = v
	}
	if v := os.Getenv("AISDK_CACHE_DSN"); v != "" {
		cfg.Cache.Postgres.DSN = v
	}

	if v := os.Getenv("AISDK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AISDK_DEBUG"); v != "" {
		cfg.Logging.Debug = v
	}

	// AISDK_MCP_SERVERS: JSON array of MCP server configs.
	if v := os.Getenv("AISDK_MCP_SERVERS"); v != "" {
		servers, err := parseMCPServersJSON(v)
		if err == nil && len(servers) > 0 {
			cfg.MCP.Servers = servers
		}
	}
}

// firstProvider returns the first provider entry, creating it when the
// list is empty.
func firstProvider(cfg *Config) *ProviderConfig {
	if len(cfg.Providers) == 0 {
		cfg.Providers = append(cfg.Providers, ProviderConfig{})
	}
	return &cfg.Providers[0]
}

// parseMCPServersJSON parses a JSON array of MCP server configurations.
func parseMCPServersJSON(jsonStr string) ([]MCPServerConfig, error) {
	var servers []MCPServerConfig
	if err := json.Unmarshal([]byte(jsonStr), &servers); err != nil {
		return nil, fmt.Errorf("parsing MCP servers JSON: %w", err)
	}
	return servers, nil
}

// resolveFileReferences reads _file fields and populates the corresponding
// value fields. For each field ending in _file, if the value field is empty
// and the file field is set, the file is read, whitespace is trimmed, and
// the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// providers[*].api_key_file -> providers[*].api_key
	for i := range cfg.Providers {
		if cfg.Providers[i].APIKeyFile != "" && cfg.Providers[i].APIKey == "" {
			val, err := readSecretFile(cfg.Providers[i].APIKeyFile)
			if err != nil {
				return fmt.Errorf("providers[%d].api_key_file: %w", i, err)
			}
			cfg.Providers[i].APIKey = val
		}
	}

	// cache.postgres.dsn_file -> cache.postgres.dsn
	if cfg.Cache.Postgres.DSNFile != "" && cfg.Cache.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Cache.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("cache.postgres.dsn_file: %w", err)
		}
		cfg.Cache.Postgres.DSN = val
	}

	// mcp.servers[*].bearer_token_file -> mcp.servers[*].bearer_token
	for i := range cfg.MCP.Servers {
		if cfg.MCP.Servers[i].BearerTokenFile != "" && cfg.MCP.Servers[i].BearerToken == "" {
			val, err := readSecretFile(cfg.MCP.Servers[i].BearerTokenFile)
			if err != nil {
				return fmt.Errorf("mcp.servers[%d].bearer_token_file: %w", i, err)
			}
			cfg.MCP.Servers[i].BearerToken = val
		}
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding
// whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
