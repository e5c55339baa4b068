package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	generationIDPrefix = "gen_"
	callIDPrefix       = "call_"
)

var generationIDPattern = regexp.MustCompile(`^gen_[a-zA-Z0-9]{24}$`)

// NewGenerationID generates a new generation ID with the "gen_" prefix
// followed by 24 cryptographically random alphanumeric characters.
func NewGenerationID() string {
	return generationIDPrefix + randomAlphanumeric(idLength)
}

// NewCallID generates a tool-call ID with the "call_" prefix. Adapters use
// it when a vendor stream carries a tool call without an ID of its own.
func NewCallID() string {
	return callIDPrefix + randomAlphanumeric(idLength)
}

// ValidGenerationID checks whether the given string is a valid generation ID
// (matches "gen_" + 24 alphanumeric characters).
func ValidGenerationID(id string) bool {
	return generationIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
