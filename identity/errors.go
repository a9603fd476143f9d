package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hustlehub/authgate/auth"
)

var (
	// ErrInvalidToken is returned when the provider rejects a bearer token
	ErrInvalidToken = fmt.Errorf("%w: invalid token", auth.ErrTokenRejected)

	// ErrTokenExpired is returned when a locally verified token has expired
	ErrTokenExpired = fmt.Errorf("%w: token expired", auth.ErrTokenRejected)

	// ErrJWKSFetchFailed is returned when the signing key set cannot be loaded
	ErrJWKSFetchFailed = errors.New("failed to fetch JWKS")
)

// Reason is the provider-independent classification of a failed provider call
type Reason string

const (
	ReasonInvalidCredentials Reason = "invalid_credentials"
	ReasonUserExists         Reason = "user_already_exists"
	ReasonInvalidRequest     Reason = "invalid_request"
	ReasonEmailNotConfirmed  Reason = "email_not_confirmed"
	ReasonRateLimited        Reason = "rate_limited"
	ReasonUnavailable        Reason = "unavailable"
)

// ProviderError describes a non-success response (or transport failure) from
// the identity provider. Message is provider text and is never sent to clients.
type ProviderError struct {
	Op      string
	Status  int
	Code    string
	Message string
	Reason  Reason
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity %s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("identity %s: %s (status %d, code %q): %s", e.Op, e.Reason, e.Status, e.Code, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ReasonOf returns the classification of err, or ReasonUnavailable for errors
// that did not come from the provider.
func ReasonOf(err error) Reason {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ReasonUnavailable
}

// errorBody covers both GoTrue error shapes:
// {"code":400,"error_code":"...","msg":"..."} and {"error":"...","error_description":"..."}
type errorBody struct {
	Code             int    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (b errorBody) code() string {
	if b.ErrorCode != "" {
		return b.ErrorCode
	}
	return b.Error
}

func (b errorBody) message() string {
	for _, m := range []string{b.Msg, b.Message, b.ErrorDescription} {
		if m != "" {
			return m
		}
	}
	return b.Error
}

func classify(status int, code, message string) Reason {
	lowerMsg := strings.ToLower(message)

	switch {
	case status >= http.StatusInternalServerError:
		return ReasonUnavailable
	case status == http.StatusTooManyRequests,
		strings.HasPrefix(code, "over_") && strings.HasSuffix(code, "_rate_limit"):
		return ReasonRateLimited
	case code == "email_not_confirmed", strings.Contains(lowerMsg, "email not confirmed"):
		return ReasonEmailNotConfirmed
	case code == "user_already_exists", code == "email_exists",
		strings.Contains(lowerMsg, "already registered"):
		return ReasonUserExists
	case code == "invalid_credentials", code == "invalid_grant",
		status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ReasonInvalidCredentials
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ReasonInvalidRequest
	default:
		return ReasonUnavailable
	}
}
