// Package auth provides JWT-based authentication for glean-engine.
// Tokens are HS256-signed bearer tokens with an audience of "glean",
// shared between the HTTP API, the MCP server, and the CLI.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Audience is the required "aud" claim for glean-engine tokens.
const Audience = "glean"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims represents the JWT claims carried by glean-engine bearer tokens.
// Only the registered fields (sub, aud, exp, iat) are used today.
type Claims struct {
	jwt.RegisteredClaims
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetSubjectFromContext extracts the token subject from claims in the context.
// Returns empty string if not authenticated or claims are missing.
func GetSubjectFromContext(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return ""
	}
	return claims.Subject
}
