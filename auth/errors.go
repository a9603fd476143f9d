package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind enumerates every way the authorization pipeline can reject a request
type Kind int

const (
	KindMissingCredential Kind = iota + 1
	KindInvalidCredential
	KindProviderUnavailable
	KindProfileNotFound
	KindInsufficientRole
)

// Client-facing messages. These strings are part of the public API.
const (
	MsgMissingCredential   = "No token, authorization denied"
	MsgInvalidCredential   = "Token is not valid"
	MsgProviderUnavailable = "Server error during authentication"
	MsgProfileNotFound     = "Access denied. User profile not found."
	MsgInsufficientRole    = "Access denied. Insufficient permissions."
	MsgEndpointNotFound    = "Endpoint not found"
	MsgUnhandled           = "Something went wrong!"
)

type kindInfo struct {
	name    string
	status  int
	message string
}

var kinds = map[Kind]kindInfo{
	KindMissingCredential:   {"missing_credential", http.StatusUnauthorized, MsgMissingCredential},
	KindInvalidCredential:   {"invalid_credential", http.StatusUnauthorized, MsgInvalidCredential},
	KindProviderUnavailable: {"provider_unavailable", http.StatusInternalServerError, MsgProviderUnavailable},
	KindProfileNotFound:     {"profile_not_found", http.StatusForbidden, MsgProfileNotFound},
	KindInsufficientRole:    {"insufficient_role", http.StatusForbidden, MsgInsufficientRole},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Status returns the HTTP status code for the kind
func (k Kind) Status() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for the kind
func (k Kind) Message() string {
	if info, ok := kinds[k]; ok {
		return info.message
	}
	return MsgUnhandled
}

// Error is the result of a failed Authenticate or Authorize call
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap implements errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Sentinels for errors.Is comparisons
var (
	ErrMissingCredential   = &Error{Kind: KindMissingCredential}
	ErrInvalidCredential   = &Error{Kind: KindInvalidCredential}
	ErrProviderUnavailable = &Error{Kind: KindProviderUnavailable}
	ErrProfileNotFound     = &Error{Kind: KindProfileNotFound}
	ErrInsufficientRole    = &Error{Kind: KindInsufficientRole}
)

// ErrTokenRejected must be wrapped by TokenVerifier implementations when the
// provider reports a token as invalid, expired or malformed. Any other
// verifier error is treated as the provider being unavailable.
var ErrTokenRejected = errors.New("token rejected by identity provider")

// KindOf extracts the Kind from err
func KindOf(err error) (Kind, bool) {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind, true
	}
	return 0, false
}

// ToResponse maps a pipeline error to its HTTP status and client message.
// Errors that are not *Error map to the generic 500 response.
func ToResponse(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}
	if kind, ok := KindOf(err); ok {
		return kind.Status(), kind.Message()
	}
	return http.StatusInternalServerError, MsgUnhandled
}
