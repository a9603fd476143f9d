package auth

import (
	"context"
	"time"

	"github.com/hustlehub/authgate/models"
)

// Role is the marketplace role attached to an authorized principal
type Role = models.UserRole

const (
	RoleCustomer = models.RoleCustomer
	RoleHustler  = models.RoleHustler
	RoleAdmin    = models.RoleAdmin
)

// Principal is the identity attached to a request after the identity
// provider accepted its bearer credential. It is rebuilt on every request.
type Principal struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	Role       Role       `json:"role,omitempty"`
}

// WithRole returns a copy of p enriched with the resolved role
func (p *Principal) WithRole(role Role) *Principal {
	enriched := *p
	enriched.Role = role
	return &enriched
}

type principalKey struct{}

// WithPrincipal stores the principal in the context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal, or nil
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
