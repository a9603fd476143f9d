package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hustlehub/authgate/auth"
	"github.com/hustlehub/authgate/config"
	"go.uber.org/zap"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

// User is the provider's user object
type User struct {
	ID               string                 `json:"id"`
	Aud              string                 `json:"aud,omitempty"`
	Role             string                 `json:"role,omitempty"`
	Email            string                 `json:"email"`
	Phone            string                 `json:"phone,omitempty"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at,omitempty"`
	ConfirmedAt      *time.Time             `json:"confirmed_at,omitempty"`
	LastSignInAt     *time.Time             `json:"last_sign_in_at,omitempty"`
	UserMetadata     map[string]interface{} `json:"user_metadata,omitempty"`
	AppMetadata      map[string]interface{} `json:"app_metadata,omitempty"`
	CreatedAt        *time.Time             `json:"created_at,omitempty"`
	UpdatedAt        *time.Time             `json:"updated_at,omitempty"`
}

// VerifiedAt returns when the user's email was confirmed, if ever
func (u *User) VerifiedAt() *time.Time {
	if u.EmailConfirmedAt != nil {
		return u.EmailConfirmedAt
	}
	return u.ConfirmedAt
}

// Principal converts the provider user into a request principal
func (u *User) Principal() *auth.Principal {
	return &auth.Principal{
		ID:         u.ID,
		Email:      u.Email,
		VerifiedAt: u.VerifiedAt(),
	}
}

// Session is the token bundle returned by signup (when auto-confirmed) and signin
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// SignUpParams holds the registration payload. Data becomes the user's
// metadata, which the profile trigger reads.
type SignUpParams struct {
	Email    string                 `json:"email"`
	Password string                 `json:"password"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// GoTrueClient talks to a GoTrue-compatible auth REST API. It is safe for
// concurrent use and is meant to be created once per process.
type GoTrueClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGoTrueClient creates a client from the identity configuration
func NewGoTrueClient(cfg config.IdentityConfig, logger *zap.Logger) *GoTrueClient {
	return &GoTrueClient{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// SignUp registers a new user. Session is nil when email confirmation is required.
func (c *GoTrueClient) SignUp(ctx context.Context, params SignUpParams) (*User, *Session, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "signup", http.MethodPost, "/signup", nil, "", params, &raw); err != nil {
		return nil, nil, err
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, nil, c.decodeError("signup", err)
	}
	if session.AccessToken != "" && session.User != nil {
		return session.User, &session, nil
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, nil, c.decodeError("signup", err)
	}
	if user.ID == "" {
		return nil, nil, c.decodeError("signup", errors.New("response carries no user id"))
	}
	return &user, nil, nil
}

// SignIn performs the password grant
func (c *GoTrueClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	query := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}

	var session Session
	if err := c.do(ctx, "signin", http.MethodPost, "/token", query, "", body, &session); err != nil {
		return nil, err
	}
	if session.AccessToken == "" || session.User == nil {
		return nil, c.decodeError("signin", errors.New("response carries no session"))
	}
	return &session, nil
}

// SignOut revokes the session the access token belongs to
func (c *GoTrueClient) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, "signout", http.MethodPost, "/logout", nil, accessToken, nil, nil)
}

// ResetPassword asks the provider to send a recovery email. redirectTo may be empty.
func (c *GoTrueClient) ResetPassword(ctx context.Context, email, redirectTo string) error {
	var query url.Values
	if redirectTo != "" {
		query = url.Values{"redirect_to": {redirectTo}}
	}
	body := map[string]string{"email": email}
	return c.do(ctx, "recover", http.MethodPost, "/recover", query, "", body, nil)
}

// GetUser returns the user the access token belongs to
func (c *GoTrueClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.do(ctx, "user", http.MethodGet, "/user", nil, accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyToken implements auth.TokenVerifier by asking the provider who the
// token belongs to.
func (c *GoTrueClient) VerifyToken(ctx context.Context, token string) (*auth.Principal, error) {
	user, err := c.GetUser(ctx, token)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && isTokenRejection(pe.Status) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidToken, pe.Message)
		}
		return nil, err
	}
	if user.ID == "" {
		return nil, c.decodeError("user", errors.New("response carries no user id"))
	}
	return user.Principal(), nil
}

func isTokenRejection(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

func (c *GoTrueClient) do(ctx context.Context, op, method, path string, query url.Values, bearer string, in, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	switch {
	case bearer != "":
		req.Header.Set("Authorization", auth.BearerPrefix+bearer)
	case c.apiKey != "":
		req.Header.Set("Authorization", auth.BearerPrefix+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Op: op, Reason: ReasonUnavailable, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("identity provider call",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.responseError(op, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.decodeError(op, err)
	}
	return nil
}

func (c *GoTrueClient) responseError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body errorBody
	if len(data) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			body.Msg = strings.TrimSpace(string(data))
		}
	}

	pe := &ProviderError{
		Op:      op,
		Status:  resp.StatusCode,
		Code:    body.code(),
		Message: body.message(),
	}
	pe.Reason = classify(pe.Status, pe.Code, pe.Message)
	return pe
}

func (c *GoTrueClient) decodeError(op string, err error) error {
	return &ProviderError{Op: op, Reason: ReasonUnavailable, Err: fmt.Errorf("decode response: %w", err)}
}
