// Command chat runs one prompt through a configured provider, buffered or
// streaming, with optional tool execution over MCP servers.
//
// Providers, cache, MCP servers and engine behavior come from the layered
// config (see pkg/config); flags select what to do with them:
//
//	chat -prompt "What is the capital of France?"
//	chat -stream -prompt "Tell me a short story"
//	chat -steps 4 -prompt "What is the weather in Berlin?"
//
// Without a config file, AISDK_PROVIDER, AISDK_BASE_URL, AISDK_API_KEY and
// AISDK_MODEL are enough to define the provider:
//
//	AISDK_PROVIDER=ollama AISDK_MODEL=llama3 chat -prompt "hi"
//
// The response text goes to stdout; everything else is logged to stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/auth"
	"github.com/blazorly/aisdk-go/pkg/cache"
	cachememory "github.com/blazorly/aisdk-go/pkg/cache/memory"
	cachepostgres "github.com/blazorly/aisdk-go/pkg/cache/postgres"
	"github.com/blazorly/aisdk-go/pkg/config"
	"github.com/blazorly/aisdk-go/pkg/debug"
	"github.com/blazorly/aisdk-go/pkg/engine"
	"github.com/blazorly/aisdk-go/pkg/middleware"
	"github.com/blazorly/aisdk-go/pkg/observability"
	"github.com/blazorly/aisdk-go/pkg/provider"
	"github.com/blazorly/aisdk-go/pkg/provider/all"
	"github.com/blazorly/aisdk-go/pkg/tools"
	"github.com/blazorly/aisdk-go/pkg/tools/mcp"
)

func main() {
	if err := run(); err != nil {
		slog.Error("chat failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	providerName := flag.String("provider", "", "provider to use (default: first configured)")
	model := flag.String("model", "", "model to request (default: provider's configured model)")
	prompt := flag.String("prompt", "", "user prompt (required)")
	system := flag.String("system", "", "optional system prompt")
	stream := flag.Bool("stream", false, "stream the response")
	steps := flag.Int("steps", 0, "tool-loop step budget (default: engine.max_steps from config)")
	flag.Parse()

	if *prompt == "" {
		return fmt.Errorf("-prompt is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	debug.Init(cfg.Logging.Debug, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional metrics listener.
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, observability.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}
		go func() {
			slog.Info("metrics listening", "addr", cfg.Metrics.Listen, "path", cfg.Metrics.Path)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	// Open the selected provider.
	pc, err := selectProvider(cfg, *providerName)
	if err != nil {
		return err
	}
	prov, err := openProvider(pc)
	if err != nil {
		return fmt.Errorf("opening provider: %w", err)
	}
	defer prov.Close()

	// Connect MCP servers; their tools become the request's tool
	// definitions and the loop's executors.
	var executors []tools.Executor
	var defs []api.ToolDefinition
	if len(cfg.MCP.Servers) > 0 {
		exec, err := mcp.Connect(ctx, mcpServers(cfg.MCP.Servers))
		if err != nil {
			return fmt.Errorf("connecting MCP servers: %w", err)
		}
		defer exec.Close()
		executors = append(executors, exec)
		defs = exec.DiscoveredTools(ctx)
	}

	eng, err := engine.New(prov, engine.Config{
		MaxSteps:     cfg.Engine.MaxSteps,
		Executors:    executors,
		ToolErrors:   toolErrorPolicy(cfg.Engine.ToolErrors),
		Parallel:     cfg.Engine.ParallelTools,
		AllowedTools: cfg.Engine.AllowedTools,
		Logger:       slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	// Middleware chain: logging and metrics always, cache when configured.
	store, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	mws := []middleware.Middleware{
		middleware.Logging(slog.Default()),
		middleware.Metrics(),
	}
	if store != nil {
		defer store.Close()
		mws = append(mws, middleware.Cache(store, slog.Default()))
	}
	gen := middleware.Chain(mws...)(eng)

	req, err := buildRequest(pc, *model, *system, *prompt, defs, *steps)
	if err != nil {
		return err
	}

	if *stream {
		return runStream(ctx, gen, req)
	}
	return runGenerate(ctx, gen, req)
}

// selectProvider picks the named provider entry, or the first one when no
// name is given.
func selectProvider(cfg *config.Config, name string) (config.ProviderConfig, error) {
	if name == "" {
		return cfg.Providers[0], nil
	}
	for _, p := range cfg.Providers {
		effective := p.Name
		if effective == "" {
			effective = p.Type
		}
		if effective == name {
			return p, nil
		}
	}
	return config.ProviderConfig{}, fmt.Errorf("no provider named %q in config", name)
}

// openProvider builds the provider through the built-in registry, wiring
// the configured credential scheme.
func openProvider(pc config.ProviderConfig) (provider.Provider, error) {
	pcfg := provider.Config{
		Type:    pc.Type,
		Name:    pc.Name,
		BaseURL: pc.BaseURL,
		Model:   pc.Model,
		APIKey:  pc.APIKey,
		Headers: pc.Headers,
		Timeout: pc.Timeout,
	}

	if pc.Auth == "jwt" {
		ttl := pc.JWTTTL
		if ttl == 0 {
			ttl = 15 * time.Minute
		}
		signer, err := auth.NewJWTSigner(pc.APIKey, ttl)
		if err != nil {
			return nil, err
		}
		pcfg.Tokens = signer
	}

	return all.DefaultRegistry().Open(pcfg)
}

// mcpServers translates the config entries into MCP client configs.
func mcpServers(entries []config.MCPServerConfig) []mcp.ServerConfig {
	servers := make([]mcp.ServerConfig, 0, len(entries))
	for _, e := range entries {
		s := mcp.ServerConfig{
			Name:      e.Name,
			Transport: e.Transport,
			URL:       e.URL,
			Headers:   e.Headers,
		}
		if e.BearerToken != "" {
			s.Tokens = auth.Static(e.BearerToken)
		}
		servers = append(servers, s)
	}
	return servers
}

// openStore builds the configured cache store, or nil when caching is off.
func openStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return cachememory.New(cfg.MaxEntries, cfg.TTL), nil
	case "postgres":
		return cachepostgres.New(ctx, cachepostgres.Config{
			DSN:      cfg.Postgres.DSN,
			MaxConns: cfg.Postgres.MaxConns,
			TTL:      cfg.TTL,
		})
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

// toolErrorPolicy maps the config string onto the engine policy.
func toolErrorPolicy(s string) engine.ToolErrorPolicy {
	if s == "abort" {
		return engine.ToolErrorsAbort
	}
	return engine.ToolErrorsReport
}

func buildRequest(pc config.ProviderConfig, model, system, prompt string, defs []api.ToolDefinition, steps int) (*api.Request, error) {
	if model == "" {
		model = pc.Model
	}
	if model == "" {
		return nil, fmt.Errorf("no model: set -model or the provider's model in config")
	}

	var messages []api.Message
	if system != "" {
		messages = append(messages, api.Message{Role: api.RoleSystem, Content: system})
	}
	messages = append(messages, api.Message{Role: api.RoleUser, Content: prompt})

	req := &api.Request{
		Model:    model,
		Messages: messages,
		Tools:    defs,
	}
	if steps > 0 {
		req.MaxSteps = steps
	}
	return req, nil
}

func runGenerate(ctx context.Context, gen middleware.Generator, req *api.Request) error {
	res, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}

	fmt.Println(res.Text)

	// Tool calls still pending when the budget ran out before execution.
	for _, call := range res.ToolCalls {
		fmt.Printf("[pending tool call] %s(%s)\n", call.Name, call.Arguments)
	}
	for _, fail := range res.ToolCallErrors {
		slog.Warn("tool call arguments failed to decode",
			"tool", fail.Name,
			"call_id", fail.ID,
			"error", fail.Err,
		)
	}

	slog.Info("generation finished",
		"id", res.ID,
		"finish_reason", res.FinishReason,
		"steps", len(res.Steps),
		"tokens", res.Usage.TotalTokens,
	)
	return nil
}

func runStream(ctx context.Context, gen middleware.Generator, req *api.Request) error {
	events, err := gen.Stream(ctx, req)
	if err != nil {
		return err
	}

	for ev := range events {
		switch ev.Type {
		case api.EventTextDelta:
			fmt.Print(ev.TextDelta)
		case api.EventToolCall:
			fmt.Printf("\n[tool call] %s(%s)\n", ev.ToolCall.Name, ev.ToolCall.Arguments)
		case api.EventToolCallError:
			slog.Warn("tool call arguments failed to decode",
				"tool", ev.ToolCallError.Name,
				"call_id", ev.ToolCallError.ID,
				"error", ev.ToolCallError.Err,
			)
		case api.EventFinish:
			fmt.Println()
			attrs := []any{"finish_reason", ev.FinishReason}
			if ev.Usage != nil {
				attrs = append(attrs, "tokens", ev.Usage.TotalTokens)
			}
			slog.Info("stream finished", attrs...)
		case api.EventError:
			fmt.Println()
			return ev.Err
		}
	}
	return ctx.Err()
}
