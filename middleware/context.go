package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hustlehub/authgate/auth"
)

// Context key type to avoid collisions
type contextKey string

const (
	// AccessTokenKey is the context key for the caller's verified bearer token
	AccessTokenKey contextKey = "access_token"
)

// GetRequestIDFromContext retrieves the request ID set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// WithAccessToken adds the verified bearer token to the context
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, AccessTokenKey, token)
}

// GetAccessTokenFromContext retrieves the verified bearer token from context
func GetAccessTokenFromContext(ctx context.Context) string {
	if val := ctx.Value(AccessTokenKey); val != nil {
		if token, ok := val.(string); ok {
			return token
		}
	}
	return ""
}

// GetPrincipalFromContext retrieves the authenticated principal. After
// RequireRole it carries the resolved role.
func GetPrincipalFromContext(ctx context.Context) *auth.Principal {
	return auth.PrincipalFromContext(ctx)
}
