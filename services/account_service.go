package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hustlehub/authgate/identity"
	"github.com/hustlehub/authgate/models"
	"github.com/hustlehub/authgate/repositories"
	"go.uber.org/zap"
)

// IdentityClient is the subset of the identity provider the account
// operations pass through to
type IdentityClient interface {
	SignUp(ctx context.Context, params identity.SignUpParams) (*identity.User, *identity.Session, error)
	SignIn(ctx context.Context, email, password string) (*identity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	ResetPassword(ctx context.Context, email, redirectTo string) error
}

// SignUpRequest is the registration payload
type SignUpRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	UserType  string `json:"user_type,omitempty" validate:"omitempty,max=20"`
}

// SignInRequest is the password login payload
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordRequest asks for a recovery email
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// AuthResult is returned by signup and signin. Session is nil when the
// provider requires email confirmation before issuing tokens.
type AuthResult struct {
	User    *identity.User    `json:"user"`
	Session *identity.Session `json:"session,omitempty"`
}

// AccountService passes account operations through to the identity provider
type AccountService struct {
	provider      IdentityClient
	profiles      repositories.ProfileRepository
	resetRedirect string
	storeTimeout  time.Duration
	logger        *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	provider IdentityClient,
	profiles repositories.ProfileRepository,
	resetRedirect string,
	storeTimeout time.Duration,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		provider:      provider,
		profiles:      profiles,
		resetRedirect: resetRedirect,
		storeTimeout:  storeTimeout,
		logger:        logger,
	}
}

// SignUp registers a user. The role travels as user metadata and the
// profile row is created by the database trigger.
func (s *AccountService) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	role := models.DefaultRole
	if req.UserType != "" {
		parsed, err := models.ParseUserRole(req.UserType)
		if err != nil || !parsed.SelfAssignable() {
			return nil, NewDomainError(ErrorTypeValidation, MsgAdminNotAssignable, err)
		}
		role = parsed
	}

	user, session, err := s.provider.SignUp(ctx, identity.SignUpParams{
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
		Data: map[string]interface{}{
			"first_name": strings.TrimSpace(req.FirstName),
			"last_name":  strings.TrimSpace(req.LastName),
			"user_type":  role.String(),
		},
	})
	if err != nil {
		return nil, s.providerError("signup", err)
	}

	s.logger.Info("user signed up",
		zap.String("user_id", user.ID),
		zap.String("user_type", role.String()),
		zap.Bool("confirmation_pending", session == nil))

	return newAuthResult(user, session), nil
}

// SignIn exchanges email and password for a session
func (s *AccountService) SignIn(ctx context.Context, req SignInRequest) (*AuthResult, error) {
	session, err := s.provider.SignIn(ctx, normalizeEmail(req.Email), req.Password)
	if err != nil {
		return nil, s.providerError("signin", err)
	}

	if session.User == nil {
		return nil, s.providerError("signin", errors.New("token response without user"))
	}

	s.logger.Info("user signed in", zap.String("user_id", session.User.ID))
	return newAuthResult(session.User, session), nil
}

// SignOut revokes the caller's session. A token the provider no longer
// recognizes counts as already signed out.
func (s *AccountService) SignOut(ctx context.Context, userID, accessToken string) error {
	err := s.provider.SignOut(ctx, accessToken)
	if err != nil {
		if identity.ReasonOf(err) == identity.ReasonInvalidCredentials {
			s.logger.Debug("session already revoked", zap.String("user_id", userID))
			return nil
		}
		return s.providerError("signout", err)
	}

	s.logger.Info("user signed out", zap.String("user_id", userID))
	return nil
}

// ResetPassword sends a recovery email
func (s *AccountService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := s.provider.ResetPassword(ctx, normalizeEmail(req.Email), s.resetRedirect); err != nil {
		return s.providerError("recover", err)
	}
	return nil
}

// GetUserRole returns another user's role from the profile store
func (s *AccountService) GetUserRole(ctx context.Context, userID string) (models.UserRole, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", NewDomainError(ErrorTypeValidation, MsgInvalidUserID, err)
	}

	if s.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
	}

	role, err := s.profiles.GetUserRole(ctx, id.String())
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return "", NewDomainError(ErrorTypeNotFound, MsgProfileNotFound, err)
		}
		return "", WrapInternal("failed to read user role", err)
	}
	return role, nil
}

// providerError maps a provider failure onto a closed domain error so that
// provider text never reaches clients.
func (s *AccountService) providerError(op string, err error) error {
	reason := identity.ReasonOf(err)

	switch reason {
	case identity.ReasonUserExists:
		return NewDomainError(ErrorTypeConflict, MsgUserExists, err)
	case identity.ReasonEmailNotConfirmed:
		return NewDomainError(ErrorTypeForbidden, MsgEmailNotConfirmed, err)
	case identity.ReasonRateLimited:
		return NewDomainError(ErrorTypeRateLimit, MsgTooManyRequests, err)
	case identity.ReasonInvalidCredentials, identity.ReasonInvalidRequest:
		switch op {
		case "signup":
			return NewDomainError(ErrorTypeValidation, MsgInvalidSignup, err)
		case "signin":
			return NewDomainError(ErrorTypeUnauthorized, MsgInvalidLogin, err)
		case "recover":
			return NewDomainError(ErrorTypeValidation, MsgInvalidResetEmail, err)
		}
	}

	s.logger.Error("identity provider call failed",
		zap.String("op", op),
		zap.String("reason", string(reason)),
		zap.Error(err))
	return WrapExternal(MsgServiceUnavailable, err)
}

func newAuthResult(user *identity.User, session *identity.Session) *AuthResult {
	result := &AuthResult{User: user}
	if session != nil {
		s := *session
		s.User = nil
		result.Session = &s
	}
	return result
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
