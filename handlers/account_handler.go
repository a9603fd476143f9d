package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hustlehub/authgate/auth"
	"github.com/hustlehub/authgate/middleware"
	"github.com/hustlehub/authgate/models"
	"github.com/hustlehub/authgate/services"
	"github.com/hustlehub/authgate/utils"
	"go.uber.org/zap"
)

// AccountService is implemented by services.AccountService
type AccountService interface {
	SignUp(ctx context.Context, req services.SignUpRequest) (*services.AuthResult, error)
	SignIn(ctx context.Context, req services.SignInRequest) (*services.AuthResult, error)
	SignOut(ctx context.Context, userID, accessToken string) error
	ResetPassword(ctx context.Context, req services.ResetPasswordRequest) error
	GetUserRole(ctx context.Context, userID string) (models.UserRole, error)
}

// SessionResponse is returned by GET /session
type SessionResponse struct {
	User *auth.Principal `json:"user"`
}

// UserResponse is returned by GET /user
type UserResponse struct {
	User *auth.Principal `json:"user"`
	Role auth.Role       `json:"role"`
}

// UserRoleResponse is returned by GET /admin/users/{id}/role
type UserRoleResponse struct {
	UserID string    `json:"user_id"`
	Role   auth.Role `json:"role"`
}

const (
	msgSignedOut = "Signed out successfully"
	msgResetSent = "If an account exists for that email, a password reset link has been sent"
)

// AccountHandler handles the account endpoints
type AccountHandler struct {
	service AccountService
	logger  *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger,
	}
}

// HandleSignUp handles POST /signup
func (h *AccountHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req services.SignUpRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, result)
}

// HandleSignIn handles POST /signin
func (h *AccountHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req services.SignInRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, result)
}

// HandleSignOut handles POST /signout. Requires RequireAuth.
func (h *AccountHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	token := middleware.GetAccessTokenFromContext(r.Context())
	if err := h.service.SignOut(r.Context(), principal.ID, token); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteMessage(w, msgSignedOut)
}

// HandleSession handles GET /session. Requires RequireAuth.
func (h *AccountHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	_ = utils.WriteOK(w, SessionResponse{User: principal})
}

// HandleUser handles GET /user. Requires RequireAuth and RequireRole.
func (h *AccountHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	_ = utils.WriteOK(w, UserResponse{User: principal, Role: principal.Role})
}

// HandleResetPassword handles POST /reset-password
func (h *AccountHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req services.ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteMessage(w, msgResetSent)
}

// HandleGetUserRole handles GET /admin/users/{id}/role. Requires RequireRole(ADMIN).
func (h *AccountHandler) HandleGetUserRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	role, err := h.service.GetUserRole(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, UserRoleResponse{UserID: userID, Role: role})
}

// decode parses and validates the body, writing a 400 on failure
func (h *AccountHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.DecodeJSON(r, dst); err != nil {
		HandleValidationError(w, err, h.logger)
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		HandleValidationError(w, err, h.logger)
		return false
	}
	return true
}

func (h *AccountHandler) principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal == nil {
		// Route wired without RequireAuth.
		h.logger.Error("no principal in context", zap.String("path", r.URL.Path))
		_ = utils.WriteError(w, http.StatusUnauthorized, auth.MsgMissingCredential)
		return nil, false
	}
	return principal, true
}
