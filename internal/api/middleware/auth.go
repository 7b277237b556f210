package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/invoicedesk/invoicedesk/internal/service"
)

// Context keys
type contextKey string

const (
	ClaimsKey contextKey = "claims"
)

// AuthMiddleware provides authentication middleware
type AuthMiddleware struct {
	authService *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate validates the session JWT from the Authorization header
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var claims *service.Claims

		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token := strings.TrimPrefix(authHeader, "Bearer ")
			c, err := m.authService.ValidateToken(token)
			if err == nil {
				claims = c
			}
		}

		if claims == nil {
			http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClaims extracts session claims from context
func GetClaims(ctx context.Context) *service.Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*service.Claims); ok {
		return claims
	}
	return nil
}
