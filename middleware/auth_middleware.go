package middleware

import (
	"context"
	"net/http"

	"github.com/hustlehub/authgate/auth"
	"github.com/hustlehub/authgate/utils"
	"go.uber.org/zap"
)

// Authenticator verifies the Authorization header of a request
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*auth.Principal, error)
}

// Authorizer resolves and checks the role of an authenticated principal
type Authorizer interface {
	Authorize(ctx context.Context, principal *auth.Principal, allowed ...auth.Role) (auth.Role, error)
}

// AuthMiddleware adapts the authentication core to HTTP
type AuthMiddleware struct {
	authenticator Authenticator
	authorizer    Authorizer
	logger        *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authenticator Authenticator, authorizer Authorizer, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		authorizer:    authorizer,
		logger:        logger,
	}
}

// RequireAuth validates the bearer token and attaches the principal to the
// request context. The downstream handler only runs on success.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		principal, err := m.authenticator.Authenticate(r.Context(), header)
		if err != nil {
			m.reject(w, r, err)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), principal)
		token, _ := auth.ExtractBearerToken(header)
		ctx = WithAccessToken(ctx, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole checks the authenticated principal's role against roles and
// replaces the context principal with the role-enriched one. With no roles
// any user that has a profile passes. Must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())

			role, err := m.authorizer.Authorize(r.Context(), principal, roles...)
			if err != nil {
				m.reject(w, r, err)
				return
			}

			ctx := auth.WithPrincipal(r.Context(), principal.WithRole(role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	status, message := auth.ToResponse(err)

	fields := []zap.Field{
		zap.String("request_id", GetRequestIDFromContext(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if p := auth.PrincipalFromContext(r.Context()); p != nil {
		fields = append(fields, zap.String("user_id", p.ID))
	}
	if status >= http.StatusInternalServerError {
		m.logger.Error("authorization pipeline failed", fields...)
	} else {
		m.logger.Warn("request rejected", fields...)
	}

	if err := utils.WriteError(w, status, message); err != nil {
		m.logger.Error("failed to write auth error response", zap.Error(err))
	}
}
