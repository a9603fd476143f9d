package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// BearerPrefix is the required Authorization scheme prefix, including the separator
const BearerPrefix = "Bearer "

// TokenVerifier is the identity provider's token verification capability
type TokenVerifier interface {
	// VerifyToken returns the principal the token belongs to. Rejections
	// must wrap ErrTokenRejected.
	VerifyToken(ctx context.Context, token string) (*Principal, error)
}

// Authenticator turns an Authorization header into a verified Principal
type Authenticator struct {
	verifier TokenVerifier
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAuthenticator creates an Authenticator. A zero timeout disables the
// per-call deadline and relies on the caller's context alone.
func NewAuthenticator(verifier TokenVerifier, timeout time.Duration, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		timeout:  timeout,
		logger:   logger,
	}
}

// ExtractBearerToken returns the credential following the first "Bearer "
// prefix. It reports false when the header is absent, uses another scheme,
// or carries an empty token.
func ExtractBearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := header[len(BearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

// Authenticate validates the raw Authorization header value. Every call
// re-verifies the token with the provider.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*Principal, error) {
	token, ok := ExtractBearerToken(header)
	if !ok {
		return nil, newError(KindMissingCredential, nil)
	}

	callCtx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()

	principal, err := a.verifier.VerifyToken(callCtx, token)
	if err != nil {
		if errors.Is(err, ErrTokenRejected) {
			return nil, newError(KindInvalidCredential, err)
		}
		a.logger.Error("identity provider verification failed", zap.Error(err))
		return nil, newError(KindProviderUnavailable, err)
	}
	if principal == nil || principal.ID == "" {
		a.logger.Error("identity provider returned no user id")
		return nil, newError(KindProviderUnavailable, errors.New("empty principal from identity provider"))
	}

	// The verifier owns its value; hand out a fresh copy without any role.
	return &Principal{
		ID:         principal.ID,
		Email:      principal.Email,
		VerifiedAt: principal.VerifiedAt,
	}, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
