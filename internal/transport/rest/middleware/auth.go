package middleware

import (
	"context"
	"net/http"
	"strings"

	"saasadmin/internal/model"
	"saasadmin/internal/service"
)

type contextKey string

const ClaimsKey contextKey = "adminClaims"

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireAdmin validates the admin JWT from the Authorization header
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateAdminToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClaims extracts the admin claims from context
func GetClaims(ctx context.Context) *model.AdminClaims {
	if v, ok := ctx.Value(ClaimsKey).(*model.AdminClaims); ok {
		return v
	}
	return nil
}

// GetOrganizationID extracts the tenant of the authenticated admin, 0 if none
func GetOrganizationID(ctx context.Context) int64 {
	if c := GetClaims(ctx); c != nil {
		return c.OrganizationID
	}
	return 0
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
