// Package identity wraps the hosted auth provider. Session cookies are
// issued by this service; the provider only verifies credentials and
// stores accounts.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sotsvc/service-estimate/internal/domain"
)

// User is the provider's view of an account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is an authenticated provider session.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// Provider is the outbound boundary for account operations.
type Provider interface {
	SignUp(ctx context.Context, email, password, name string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (User, error)
}

// Client talks to a GoTrue-compatible identity endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates an identity client for the given provider endpoint.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SignUp registers a new account. A duplicate email comes back as a
// conflict so the handler can show the fixed already-registered message.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (Session, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     map[string]string{"name": name},
	}
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// SignIn exchanges credentials for a provider session.
func (c *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// SignOut revokes the provider session. A missing or already-revoked
// session is not an error.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	err := c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
	if domain.CodeOf(err) == domain.CodeUnauthorized {
		return nil
	}
	return err
}

// GetUser fetches the account for an access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal identity request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build identity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.NewUnavailableError("identity provider unreachable").WithCause(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode identity response: %w", err)
		}
		return nil
	}

	return c.classify(resp)
}

// providerError is the provider's error body. Older deployments use
// msg, newer ones use error_description.
type providerError struct {
	Message     string `json:"msg"`
	Description string `json:"error_description"`
}

// classify maps a provider error response to a tagged domain error.
// Messages shown to users are fixed per code; the provider's own text
// is kept only in the error chain.
func (c *Client) classify(resp *http.Response) error {
	var pe providerError
	_ = json.NewDecoder(resp.Body).Decode(&pe)
	detail := pe.Message
	if detail == "" {
		detail = pe.Description
	}
	cause := fmt.Errorf("identity provider returned %d: %s", resp.StatusCode, detail)

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(detail), "registered"):
		return domain.NewConflictError("email is already registered").WithCause(cause)
	case resp.StatusCode == http.StatusConflict:
		return domain.NewConflictError("email is already registered").WithCause(cause)
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		return domain.NewValidationError("invalid signup details").WithCause(cause)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return domain.NewUnauthorizedError("invalid email or password").WithCause(cause)
	case resp.StatusCode >= 500:
		return domain.NewUnavailableError("identity provider unavailable").WithCause(cause)
	default:
		return domain.NewUnauthorizedError("authentication failed").WithCause(cause)
	}
}
