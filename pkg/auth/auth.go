// Package auth supplies request credentials for provider backends.
//
// A TokenSource yields the bearer credential attached to an outgoing
// request. Implementations cover the schemes the supported vendors use:
// a static API key, no credentials (local backends), and short-lived
// HS256-signed JWTs minted from an id.secret key pair.
package auth

import "context"

// TokenSource yields the credential for one outgoing request.
// Implementations must be safe for concurrent use.
type TokenSource interface {
	// Token returns the current credential, minting or refreshing it
	// first when needed. An empty token with a nil error means "no
	// credentials": callers omit the auth header entirely.
	Token(ctx context.Context) (string, error)
}

type staticSource string

// Static returns a TokenSource that always yields the given key.
func Static(key string) TokenSource {
	return staticSource(key)
}

func (s staticSource) Token(context.Context) (string, error) {
	return string(s), nil
}

type noneSource struct{}

// None returns a TokenSource for backends without authentication.
func None() TokenSource {
	return noneSource{}
}

func (noneSource) Token(context.Context) (string, error) {
	return "", nil
}
