package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// signerRefreshWindow is how long before expiry a cached token is
// considered stale and re-minted.
const signerRefreshWindow = 30 * time.Second

// JWTSigner mints short-lived HS256 tokens from an "id.secret" API key,
// the signed-key scheme used by GLM-style vendors: the vendor hands out a
// key pair and expects each request to carry a JWT signed with the secret
// half, claiming the ID half.
//
// Minted tokens are cached and reused until shortly before expiry.
type JWTSigner struct {
	id     string
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewJWTSigner splits apiKey at the first '.' into the key ID and the
// signing secret. ttl bounds each minted token's validity; zero selects
// 10 minutes.
func NewJWTSigner(apiKey string, ttl time.Duration) (*JWTSigner, error) {
	id, secret, ok := strings.Cut(apiKey, ".")
	if !ok || id == "" || secret == "" {
		return nil, fmt.Errorf("api key must have the form id.secret")
	}
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &JWTSigner{
		id:     id,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Token returns the cached token, minting a fresh one when none exists or
// the cached one is inside the refresh window.
func (s *JWTSigner) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Add(signerRefreshWindow).Before(s.expires) {
		return s.token, nil
	}

	exp := now.Add(s.ttl)
	claims := jwtlib.MapClaims{
		"api_key":   s.id,
		"exp":       exp.UnixMilli(),
		"timestamp": now.UnixMilli(),
	}
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	tok.Header["sign_type"] = "SIGN"

	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	s.token = signed
	s.expires = exp
	return signed, nil
}
