package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/tools"
)

// Executor implements tools.Executor over a set of MCP servers. It
// discovers each server's tools lazily and routes every call to the
// server that provides the named tool.
type Executor struct {
	mu sync.RWMutex

	// clients maps server name to its connected Client.
	clients map[string]*Client

	// toolToServer maps tool name to the server that provides it.
	toolToServer map[string]string

	// discovered tracks whether tool discovery has run.
	discovered bool
}

var _ tools.Executor = (*Executor)(nil)

// NewExecutor builds an Executor over already-connected clients keyed
// by server name.
func NewExecutor(clients map[string]*Client) *Executor {
	return &Executor{
		clients:      clients,
		toolToServer: make(map[string]string),
	}
}

// Connect creates and connects a client per server and wraps them in
// an Executor. On a connect failure the sessions opened so far are
// closed before the error is returned.
func Connect(ctx context.Context, servers []ServerConfig) (*Executor, error) {
	clients := make(map[string]*Client, len(servers))
	for _, cfg := range servers {
		client := NewClient(cfg)
		if err := client.Connect(ctx); err != nil {
			for _, open := range clients {
				_ = open.Close()
			}
			return nil, err
		}
		clients[cfg.Name] = client
	}
	return NewExecutor(clients), nil
}

// Kind returns tools.KindMCP.
func (e *Executor) Kind() tools.Kind {
	return tools.KindMCP
}

// CanExecute reports whether any connected server provides the named
// tool. The first call triggers discovery.
func (e *Executor) CanExecute(name string) bool {
	e.ensureDiscovered(context.Background())

	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.toolToServer[name]
	return ok
}

// Execute routes the call to the server providing the tool.
func (e *Executor) Execute(ctx context.Context, call api.ToolCall) (*tools.Result, error) {
	e.ensureDiscovered(ctx)

	e.mu.RLock()
	serverName, ok := e.toolToServer[call.Name]
	if !ok {
		e.mu.RUnlock()
		return nil, fmt.Errorf("no MCP server provides tool %q", call.Name)
	}
	client := e.clients[serverName]
	e.mu.RUnlock()

	return client.CallTool(ctx, call)
}

// DiscoveredTools returns every tool discovered across the connected
// servers, for merging into a request's tool definitions.
func (e *Executor) DiscoveredTools(ctx context.Context) []api.ToolDefinition {
	e.ensureDiscovered(ctx)

	e.mu.RLock()
	defer e.mu.RUnlock()

	var defs []api.ToolDefinition
	for _, client := range e.clients {
		cached, err := client.Tools(ctx)
		if err != nil {
			continue
		}
		defs = append(defs, cached...)
	}
	return defs
}

// Close closes all server sessions and returns the last error seen.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var lastErr error
	for name, client := range e.clients {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close MCP client", "server", name, "error", err)
			lastErr = err
		}
	}
	return lastErr
}

// ensureDiscovered runs tool discovery once across all servers. A
// server that fails discovery is logged and skipped; its tools simply
// stay unavailable.
func (e *Executor) ensureDiscovered(ctx context.Context) {
	e.mu.RLock()
	if e.discovered {
		e.mu.RUnlock()
		return
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double-check after acquiring the write lock.
	if e.discovered {
		return
	}

	for name, client := range e.clients {
		defs, err := client.Tools(ctx)
		if err != nil {
			slog.Error("MCP tool discovery failed",
				"server", name,
				"error", err,
			)
			continue
		}

		for _, def := range defs {
			if _, exists := e.toolToServer[def.Name]; exists {
				slog.Warn("duplicate MCP tool name, keeping first provider",
					"tool", def.Name,
					"server", name,
				)
				continue
			}
			e.toolToServer[def.Name] = name
		}

		slog.Info("discovered MCP tools",
			"server", name,
			"count", len(defs),
		)
	}

	e.discovered = true
}
