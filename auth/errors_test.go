package auth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToResponse(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"missing credential", ErrMissingCredential, http.StatusUnauthorized, "No token, authorization denied"},
		{"invalid credential", ErrInvalidCredential, http.StatusUnauthorized, "Token is not valid"},
		{"provider unavailable", ErrProviderUnavailable, http.StatusInternalServerError, "Server error during authentication"},
		{"profile not found", ErrProfileNotFound, http.StatusForbidden, "Access denied. User profile not found."},
		{"insufficient role", ErrInsufficientRole, http.StatusForbidden, "Access denied. Insufficient permissions."},
		{"wrapped", fmt.Errorf("ctx: %w", newError(KindInsufficientRole, errors.New("x"))), http.StatusForbidden, MsgInsufficientRole},
		{"foreign error", errors.New("boom"), http.StatusInternalServerError, "Something went wrong!"},
		{"nil", nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := ToResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestError_Is(t *testing.T) {
	cause := errors.New("upstream")
	err := newError(KindProviderUnavailable, cause)

	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidCredential)

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindProviderUnavailable, kind)
	assert.Equal(t, "provider_unavailable: upstream", err.Error())
}
