package provider

import (
	"github.com/blazorly/aisdk-go/pkg/api"
)

// Capabilities declares what features a backend supports. The engine uses
// it for early request validation, before any network traffic.
type Capabilities struct {
	// Streaming indicates whether the provider supports streaming.
	Streaming bool

	// Completion indicates whether the provider has a native buffered
	// endpoint. When false, buffered calls are served by draining the
	// stream.
	Completion bool

	// ToolCalling indicates whether the provider supports function/tool
	// calls.
	ToolCalling bool

	// Embeddings indicates whether the provider implements Embedder.
	Embeddings bool

	// MaxContextWindow is the maximum token count (0 = unknown/unlimited).
	MaxContextWindow int
}

// ValidateCapabilities checks whether the given request is compatible with
// the provider's declared capabilities. streaming states which façade
// operation the request entered through. Returns an *api.Error identifying
// the first unsupported feature, or nil if the request is compatible.
func ValidateCapabilities(caps Capabilities, req *api.Request, streaming bool) *api.Error {
	if streaming && !caps.Streaming {
		return api.NewRequestError("stream",
			"the configured provider does not support streaming")
	}
	if !streaming && !caps.Completion && !caps.Streaming {
		return api.NewRequestError("model",
			"the configured provider supports neither buffered nor streaming inference")
	}
	if len(req.Tools) > 0 && !caps.ToolCalling {
		return api.NewRequestError("tools",
			"the configured provider does not support tool calling")
	}
	return nil
}
