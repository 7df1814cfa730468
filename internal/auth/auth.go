// Package auth implements the bearer-credential gate that protects every
// mutating endpoint of the gateway.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

const bearerPrefix = "Bearer "

var (
	// ErrMissingCredential indicates the Authorization header is absent or
	// does not use the Bearer scheme
	ErrMissingCredential = errors.New("missing bearer credential")

	// ErrInvalidCredential indicates the presented token does not match
	ErrInvalidCredential = errors.New("invalid bearer credential")

	// ErrNotConfigured indicates no expected token is configured. The gate
	// fails closed rather than falling back to a default token.
	ErrNotConfigured = errors.New("bearer credential not configured")
)

// Gate validates bearer credentials against a single expected token loaded
// once at startup.
type Gate struct {
	token []byte
}

// NewGate creates a gate expecting the given token. An empty token produces
// a gate that rejects every request with ErrNotConfigured.
func NewGate(token string) *Gate {
	return &Gate{token: []byte(token)}
}

// Authorize validates the raw Authorization header value. It returns nil
// only when the header carries the Bearer scheme and the token matches
// exactly. The comparison is constant-time.
func (g *Gate) Authorize(header string) error {
	if len(g.token) == 0 {
		return ErrNotConfigured
	}

	if !strings.HasPrefix(header, bearerPrefix) {
		return ErrMissingCredential
	}

	presented := []byte(header[len(bearerPrefix):])
	if subtle.ConstantTimeCompare(presented, g.token) != 1 {
		return ErrInvalidCredential
	}

	return nil
}
