package sessiongate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// HTTPBackend is the canonical [Backend] implementation over the dashboard's REST
// collaborators:
//
//	POST {base}/api/auth/login    {email, password} → {token, user} | 401
//	GET  {base}/api/auth/validate (bearer)          → {valid, user} | 401
//	POST {base}/api/auth/logout   (bearer)          → 204
//
// Every request carries an X-Request-ID so backend logs can be correlated with
// guard pass audit events.
type HTTPBackend struct {
	cfg    BackendConfig
	client *http.Client
}

type loginRequestBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userBody struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

type loginResponseBody struct {
	Token string   `json:"token"`
	User  userBody `json:"user"`
}

type validateResponseBody struct {
	Valid bool     `json:"valid"`
	User  userBody `json:"user"`
}

// NewHTTPBackend creates an [HTTPBackend]. client may be nil, in which case a
// dedicated client with the configured timeout is used.
//
// NewHTTPBackend may return an error when input validation, dependency calls, or security checks fail.
func NewHTTPBackend(cfg BackendConfig, client *http.Client) (*HTTPBackend, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base URL required")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPBackend{
		cfg:    cfg,
		client: client,
	}, nil
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *HTTPBackend) Login(ctx context.Context, email, password string) (string, Identity, error) {
	body, err := json.Marshal(loginRequestBody{Email: email, Password: password})
	if err != nil {
		return "", Identity{}, fmt.Errorf("%w: %v", ErrBackendResponseInvalid, err)
	}

	req, err := b.newRequest(ctx, http.MethodPost, b.cfg.LoginPath, bytes.NewReader(body))
	if err != nil {
		return "", Identity{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", Identity{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		var decoded loginResponseBody
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return "", Identity{}, fmt.Errorf("%w: %v", ErrBackendResponseInvalid, err)
		}
		if decoded.Token == "" {
			return "", Identity{}, fmt.Errorf("%w: login response missing token", ErrBackendResponseInvalid)
		}
		return decoded.Token, identityFromBody(decoded.User), nil
	case resp.StatusCode == http.StatusUnauthorized:
		return "", Identity{}, ErrInvalidCredentials
	case resp.StatusCode >= 500:
		return "", Identity{}, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	default:
		return "", Identity{}, fmt.Errorf("%w: unexpected status %d", ErrServer, resp.StatusCode)
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *HTTPBackend) Validate(ctx context.Context, tok string) (Identity, error) {
	req, err := b.newRequest(ctx, http.MethodGet, b.cfg.ValidatePath, nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := b.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		var decoded validateResponseBody
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return Identity{}, fmt.Errorf("%w: %v", ErrBackendResponseInvalid, err)
		}
		if !decoded.Valid {
			return Identity{}, ErrTokenRejected
		}
		return identityFromBody(decoded.User), nil
	case resp.StatusCode == http.StatusUnauthorized:
		return Identity{}, ErrTokenRejected
	case resp.StatusCode >= 500:
		return Identity{}, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	default:
		return Identity{}, fmt.Errorf("%w: unexpected status %d", ErrServer, resp.StatusCode)
	}
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *HTTPBackend) Logout(ctx context.Context, tok string) error {
	req, err := b.newRequest(ctx, http.MethodPost, b.cfg.LogoutPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		// the backend already considers the token dead; local clear proceeds
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrServer, resp.StatusCode)
	}
}

func (b *HTTPBackend) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := strings.TrimSuffix(b.cfg.BaseURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendResponseInvalid, err)
	}

	requestID := requestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func identityFromBody(u userBody) Identity {
	return Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
	}
}

func drainAndClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<16))
	_ = rc.Close()
}
