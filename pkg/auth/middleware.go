package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/config"
)

// Middleware provides HTTP authentication middleware. When verification is
// disabled in config it passes requests through untouched, which is how
// local development runs.
type Middleware struct {
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewMiddleware creates a new auth middleware from the auth configuration.
func NewMiddleware(cfg config.AuthConfig, logger *zap.Logger) *Middleware {
	return &Middleware{
		cfg:    cfg,
		logger: logger,
	}
}

// RequireAuth validates the bearer token and sets claims and token in context
// for downstream handlers.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.cfg.EnableVerification {
			next(w, r)
			return
		}

		claims, token, err := m.validateRequest(r)
		if err != nil {
			m.logger.Warn("Rejected unauthenticated request",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			m.unauthorized(w, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		ctx = context.WithValue(ctx, TokenKey, token)
		next(w, r.WithContext(ctx))
	}
}

// validateRequest extracts and verifies the bearer token from the
// Authorization header. Only HS256 tokens with the glean audience pass.
func (m *Middleware) validateRequest(r *http.Request) (*Claims, string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, "", fmt.Errorf("missing Authorization header")
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return nil, "", fmt.Errorf("Authorization header is not a bearer token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(m.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, "", fmt.Errorf("token is not valid")
	}

	return claims, tokenString, nil
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}
