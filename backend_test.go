package sessiongate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func backendTestConfig(baseURL string) BackendConfig {
	cfg := defaultConfig().Backend
	cfg.BaseURL = baseURL
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestHTTPBackendRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPBackend(defaultConfig().Backend, nil); err == nil {
		t.Fatal("expected error without a base URL")
	}
}

func TestHTTPBackendLogin(t *testing.T) {
	var gotRequestID, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")

		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "alice@example.com" || body.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1",
			"user":  map[string]any{"id": 42, "username": "alice", "email": body.Email, "isAdmin": true},
		})
	}))
	t.Cleanup(server.Close)

	backend, err := NewHTTPBackend(backendTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("NewHTTPBackend failed: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-123")
	tok, identity, err := backend.Login(ctx, "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if tok != "tok-1" {
		t.Fatalf("unexpected token %q", tok)
	}
	if identity.ID != 42 || identity.Username != "alice" || !identity.IsAdmin {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if gotRequestID != "req-123" {
		t.Fatalf("expected propagated request ID, got %q", gotRequestID)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotContentType)
	}
}

func TestHTTPBackendLoginStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrInvalidCredentials},
		{name: "server error", status: http.StatusInternalServerError, wantErr: ErrServer},
		{name: "bad gateway", status: http.StatusBadGateway, wantErr: ErrServer},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrServer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			t.Cleanup(server.Close)

			backend, err := NewHTTPBackend(backendTestConfig(server.URL), nil)
			if err != nil {
				t.Fatalf("NewHTTPBackend failed: %v", err)
			}

			_, _, err = backend.Login(context.Background(), "a@b.c", "pw")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("status %d: expected %v, got %v", tc.status, tc.wantErr, err)
			}
		})
	}
}

func TestHTTPBackendLoginMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"user": map[string]any{"id": 1}})
	}))
	t.Cleanup(server.Close)

	backend, err := NewHTTPBackend(backendTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("NewHTTPBackend failed: %v", err)
	}

	_, _, err = backend.Login(context.Background(), "a@b.c", "pw")
	if !errors.Is(err, ErrBackendResponseInvalid) {
		t.Fatalf("expected ErrBackendResponseInvalid, got %v", err)
	}
}

func TestHTTPBackendValidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/validate" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		switch r.Header.Get("Authorization") {
		case "Bearer tok-live":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"valid": true,
				"user":  map[string]any{"id": 42, "username": "alice", "isAdmin": false},
			})
		case "Bearer tok-soft-reject":
			// 200 with valid:false is still a definitive rejection
			_ = json.NewEncoder(w).Encode(map[string]any{"valid": false})
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(server.Close)

	backend, err := NewHTTPBackend(backendTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("NewHTTPBackend failed: %v", err)
	}
	ctx := context.Background()

	identity, err := backend.Validate(ctx, "tok-live")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if identity.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	if _, err := backend.Validate(ctx, "tok-soft-reject"); !errors.Is(err, ErrTokenRejected) {
		t.Fatalf("expected ErrTokenRejected for valid:false, got %v", err)
	}
	if _, err := backend.Validate(ctx, "tok-dead"); !errors.Is(err, ErrTokenRejected) {
		t.Fatalf("expected ErrTokenRejected for 401, got %v", err)
	}
}

func TestHTTPBackendLogout(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "no content", status: http.StatusNoContent},
		{name: "ok", status: http.StatusOK},
		{name: "already dead token", status: http.StatusUnauthorized},
		{name: "server error", status: http.StatusInternalServerError, wantErr: ErrServer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer tok-1" {
					t.Errorf("missing bearer header")
				}
				w.WriteHeader(tc.status)
			}))
			t.Cleanup(server.Close)

			backend, err := NewHTTPBackend(backendTestConfig(server.URL), nil)
			if err != nil {
				t.Fatalf("NewHTTPBackend failed: %v", err)
			}

			err = backend.Logout(context.Background(), "tok-1")
			if tc.wantErr == nil && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestHTTPBackendNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	backend, err := NewHTTPBackend(backendTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("NewHTTPBackend failed: %v", err)
	}
	server.Close()

	ctx := context.Background()
	if _, _, err := backend.Login(ctx, "a@b.c", "pw"); !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork from Login, got %v", err)
	}
	if _, err := backend.Validate(ctx, "tok-1"); !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork from Validate, got %v", err)
	}
	if err := backend.Logout(ctx, "tok-1"); !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork from Logout, got %v", err)
	}
}
