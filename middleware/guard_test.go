package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/sessiongate"
	"github.com/MrEthical07/sessiongate/store"
)

// stubBackend recognizes exactly one token.
type stubBackend struct {
	token    string
	identity sessiongate.Identity
}

func (s *stubBackend) Login(context.Context, string, string) (string, sessiongate.Identity, error) {
	return s.token, s.identity, nil
}

func (s *stubBackend) Validate(_ context.Context, tok string) (sessiongate.Identity, error) {
	if tok != s.token {
		return sessiongate.Identity{}, sessiongate.ErrTokenRejected
	}
	return s.identity, nil
}

func (s *stubBackend) Logout(context.Context, string) error { return nil }

func newGuardedServer(t *testing.T, identity sessiongate.Identity, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	cfg := sessiongate.DefaultConfig()
	cfg.Audit.Enabled = false

	engine, err := sessiongate.New().
		WithConfig(cfg).
		WithPersistentStore(store.NewMemoryStore()).
		WithBackend(&stubBackend{token: "tok-live", identity: identity}).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	mux := http.NewServeMux()
	mux.Handle("/", Guard(engine, "/admin")(handler))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, url, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("request build failed: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestGuardPassesThroughOutsideBasePath(t *testing.T) {
	server := newGuardedServer(t, sessiongate.Identity{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	resp := get(t, server.URL+"/public/page", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected pass-through outside base path, got %d", resp.StatusCode)
	}
}

func TestGuardRejectsMissingAndInvalidTokens(t *testing.T) {
	server := newGuardedServer(t, sessiongate.Identity{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, token := range []string{"", "tok-dead"} {
		resp := get(t, server.URL+"/admin/panel", token)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("token %q: expected 401, got %d", token, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Fatalf("expected JSON error body, got %q", ct)
		}
	}
}

func TestGuardInjectsIdentity(t *testing.T) {
	want := sessiongate.Identity{ID: 42, Username: "alice", IsAdmin: true}

	server := newGuardedServer(t, want, func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Error("identity missing from request context")
		}
		if identity.Username != "alice" || !identity.IsAdmin {
			t.Errorf("unexpected identity: %+v", identity)
		}
		w.WriteHeader(http.StatusOK)
	})

	resp := get(t, server.URL+"/admin/panel", "tok-live")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for a valid token, got %d", resp.StatusCode)
	}
}

func TestGuardBasePathBoundary(t *testing.T) {
	server := newGuardedServer(t, sessiongate.Identity{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// /administrator is NOT under /admin
	resp := get(t, server.URL+"/administrator", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected /administrator to pass through, got %d", resp.StatusCode)
	}

	// the base path itself is guarded
	resp = get(t, server.URL+"/admin", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected /admin itself to be guarded, got %d", resp.StatusCode)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	adminServer := newGuardedServer(t, sessiongate.Identity{Username: "alice", IsAdmin: true},
		func(w http.ResponseWriter, r *http.Request) {
			RequireAdmin()(http.HandlerFunc(handler)).ServeHTTP(w, r)
		})
	resp := get(t, adminServer.URL+"/admin/panel", "tok-live")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for an admin, got %d", resp.StatusCode)
	}

	userServer := newGuardedServer(t, sessiongate.Identity{Username: "bob", IsAdmin: false},
		func(w http.ResponseWriter, r *http.Request) {
			RequireAdmin()(http.HandlerFunc(handler)).ServeHTTP(w, r)
		})
	resp = get(t, userServer.URL+"/admin/panel", "tok-live")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-admin, got %d", resp.StatusCode)
	}
}

func TestUnderBasePath(t *testing.T) {
	tests := []struct {
		path     string
		basePath string
		want     bool
	}{
		{path: "/admin", basePath: "/admin", want: true},
		{path: "/admin/", basePath: "/admin", want: true},
		{path: "/admin/users", basePath: "/admin", want: true},
		{path: "/administrator", basePath: "/admin", want: false},
		{path: "/public", basePath: "/admin", want: false},
		{path: "/anything", basePath: "/", want: true},
		{path: "/anything", basePath: "", want: true},
		{path: "/admin/users", basePath: "/admin/", want: true},
	}

	for _, tc := range tests {
		if got := underBasePath(tc.path, tc.basePath); got != tc.want {
			t.Fatalf("underBasePath(%q, %q): expected %t, got %t", tc.path, tc.basePath, got, tc.want)
		}
	}
}
