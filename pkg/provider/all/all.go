// Package all wires every built-in provider into one registry, for
// applications that configure providers by type name instead of importing
// adapter packages directly.
package all

import (
	"github.com/blazorly/aisdk-go/pkg/provider"
	"github.com/blazorly/aisdk-go/pkg/provider/anthropic"
	"github.com/blazorly/aisdk-go/pkg/provider/ollama"
	"github.com/blazorly/aisdk-go/pkg/provider/openai"
	"github.com/blazorly/aisdk-go/pkg/provider/openaicompat"
)

// DefaultRegistry returns a registry pre-loaded with the built-in provider
// factories: "openai", "ollama", "anthropic" and the generic "openaicompat".
func DefaultRegistry() *provider.Registry {
	r := provider.NewRegistry()
	register(r, "openai", openai.Factory)
	register(r, "ollama", ollama.Factory)
	register(r, "anthropic", anthropic.Factory)
	register(r, "openaicompat", openaicompat.Factory)
	return r
}

// register adds one built-in factory. The names are distinct and the
// factories non-nil, so a failure here is a programming error.
func register(r *provider.Registry, typ string, f provider.Factory) {
	if err := r.Register(typ, f); err != nil {
		panic(err)
	}
}
