package auth

import (
	"context"
	"errors"
	"time"

	"github.com/hustlehub/authgate/repositories"
	"go.uber.org/zap"
)

// RoleLookup is the profile store's role resolution capability
type RoleLookup interface {
	// GetUserRole returns repositories.ErrProfileNotFound when no profile exists.
	GetUserRole(ctx context.Context, userID string) (Role, error)
}

// Authorizer enforces role allow-lists against the profile store
type Authorizer struct {
	store   RoleLookup
	timeout time.Duration
	logger  *zap.Logger
}

// NewAuthorizer creates an Authorizer
func NewAuthorizer(store RoleLookup, timeout time.Duration, logger *zap.Logger) *Authorizer {
	return &Authorizer{
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// Authorize resolves the principal's role and checks it against allowed.
// An empty allow-list admits any resolved role. Roles are looked up fresh
// on every call so changes apply immediately.
func (a *Authorizer) Authorize(ctx context.Context, principal *Principal, allowed ...Role) (Role, error) {
	if principal == nil || principal.ID == "" {
		return "", newError(KindMissingCredential, errors.New("no authenticated principal"))
	}

	callCtx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()

	role, err := a.store.GetUserRole(callCtx, principal.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return "", newError(KindProfileNotFound, err)
		}
		a.logger.Error("profile role lookup failed",
			zap.String("user_id", principal.ID),
			zap.Error(err))
		return "", newError(KindProviderUnavailable, err)
	}

	if len(allowed) == 0 {
		return role, nil
	}
	for _, r := range allowed {
		if r == role {
			return role, nil
		}
	}
	return "", newError(KindInsufficientRole, nil)
}
