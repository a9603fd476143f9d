package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hustlehub/authgate/auth"
)

// Claims are the claims carried by provider-issued access tokens
type Claims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone,omitempty"`
	Role         string                 `json:"role"` // provider role, e.g. "authenticated"
	SessionID    string                 `json:"session_id,omitempty"`
	IsAnonymous  bool                   `json:"is_anonymous,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
}

// principal builds a request principal from validated claims. The subject
// must be a UUID since it keys the profiles table.
func (c *Claims) principal() (*auth.Principal, error) {
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	sub, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid sub UUID: %v", ErrInvalidToken, err)
	}
	if c.IsAnonymous {
		return nil, fmt.Errorf("%w: anonymous session", ErrInvalidToken)
	}
	return &auth.Principal{
		ID:    sub.String(),
		Email: c.Email,
	}, nil
}
