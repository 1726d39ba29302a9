package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/otp-2025.net/internal/core/ports/primary"
)

type MiddlewareProvider struct {
	jwtService primary.JWTService
	logger     primary.Logger
}

func New(jwtService primary.JWTService, logger primary.Logger) *MiddlewareProvider {
	return &MiddlewareProvider{
		jwtService: jwtService,
		logger:     logger,
	}
}

// JWTMiddleware admits requests carrying a valid HS256 bearer token that
// grants permission.
func (m *MiddlewareProvider) JWTMiddleware(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				ResponseError(w, "Authorization header missing", http.StatusUnauthorized)
				return
			}

			// Extract token from "Bearer <token>"
			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found {
				ResponseError(w, "Invalid authorization scheme", http.StatusUnauthorized)
				return
			}

			valid, err := m.jwtService.VerifyTokenHMAC(r.Context(), tokenString, jwt.SigningMethodHS256.Name)
			if err != nil || !valid {
				m.logger.Debug("Rejected bearer token", "path", r.URL.Path, "error", err)
				ResponseError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			payload, err := m.jwtService.DecodeTokenPayload(r.Context(), tokenString)
			if err != nil {
				ResponseError(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(payload.Permission, permission) {
				ResponseError(w, "Forbidden", http.StatusForbidden)
				return
			}

			m.logger.Debug("Authorized admin request", "username", payload.Username, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
