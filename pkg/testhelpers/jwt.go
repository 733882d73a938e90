// Package testhelpers provides utilities for testing glean-engine components.
package testhelpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateTestJWT creates a signed HS256 token for handler tests. The token
// includes aud: "glean" which the auth middleware requires.
func GenerateTestJWT(t *testing.T, secret, sub string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": sub,
		"aud": "glean",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign test JWT: %v", err)
	}

	return signed
}

// GenerateTestJWTWithBearer returns the token with "Bearer " prefix for the
// Authorization header.
func GenerateTestJWTWithBearer(t *testing.T, secret, sub string) string {
	return "Bearer " + GenerateTestJWT(t, secret, sub)
}
