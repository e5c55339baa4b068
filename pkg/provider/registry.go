package provider

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/blazorly/aisdk-go/pkg/auth"
)

// Config carries everything a provider factory needs. Zero values select
// the adapter's defaults (base URL, timeout, plain HTTP client).
type Config struct {
	// Type selects the factory in a Registry ("openai", "ollama",
	// "openaicompat", "anthropic").
	Type string

	// Name labels this provider instance in logs, metrics and errors.
	// Defaults to Type.
	Name string

	// BaseURL overrides the adapter's default endpoint.
	BaseURL string

	// Model is the default model callers of this instance should request.
	// Adapters do not consult it; it is configuration surface for the
	// application wiring requests.
	Model string

	// APIKey is a static credential. Ignored when Tokens is set.
	APIKey string

	// Tokens supplies per-request credentials (static, signed JWT, ...).
	Tokens auth.TokenSource

	// Headers are added to every request, after auth headers.
	Headers map[string]string

	// HTTPClient overrides the default client. Timeout is ignored when
	// HTTPClient is set.
	HTTPClient *http.Client

	// Timeout bounds each HTTP request of the default client.
	Timeout time.Duration
}

// TokenSource resolves the effective credential source: an explicit Tokens
// wins, then a static APIKey, then no credentials.
func (c Config) TokenSource() auth.TokenSource {
	if c.Tokens != nil {
		return c.Tokens
	}
	if c.APIKey != "" {
		return auth.Static(c.APIKey)
	}
	return auth.None()
}

// Factory constructs a Provider from its configuration.
type Factory func(cfg Config) (Provider, error)

// Registry maps provider type names to factories. It is an explicit value:
// construct one, register factories, and pass it to the code that opens
// providers. There is no package-level registry and no init-time
// registration.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given type name. Registering an empty
// name, a nil factory, or a duplicate name is an error.
func (r *Registry) Register(typ string, f Factory) error {
	if typ == "" {
		return fmt.Errorf("provider type must not be empty")
	}
	if f == nil {
		return fmt.Errorf("factory for provider type %q must not be nil", typ)
	}
	if _, exists := r.factories[typ]; exists {
		return fmt.Errorf("provider type %q already registered", typ)
	}
	r.factories[typ] = f
	return nil
}

// Open constructs a provider for cfg.Type.
func (r *Registry) Open(cfg Config) (Provider, error) {
	f, ok := r.factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown provider type %q (registered: %v)", cfg.Type, r.Types())
	}
	return f(cfg)
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for typ := range r.factories {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}
