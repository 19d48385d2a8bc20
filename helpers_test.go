package sessiongate

import (
	"context"
	"sync"
	"testing"

	"github.com/MrEthical07/sessiongate/store"
)

func gateTestConfig() Config {
	cfg := defaultConfig()
	cfg.Audit.Enabled = false
	return cfg
}

// fakeBackend implements Backend with swappable behavior per method. Call counts
// are tracked so tests can assert a path never reached the backend.
type fakeBackend struct {
	mu sync.Mutex

	loginFn    func(ctx context.Context, email, password string) (string, Identity, error)
	validateFn func(ctx context.Context, tok string) (Identity, error)
	logoutFn   func(ctx context.Context, tok string) error

	loginCalls    int
	validateCalls int
	logoutCalls   int
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (string, Identity, error) {
	f.mu.Lock()
	f.loginCalls++
	fn := f.loginFn
	f.mu.Unlock()

	if fn == nil {
		return "", Identity{}, ErrInvalidCredentials
	}
	return fn(ctx, email, password)
}

func (f *fakeBackend) Validate(ctx context.Context, tok string) (Identity, error) {
	f.mu.Lock()
	f.validateCalls++
	fn := f.validateFn
	f.mu.Unlock()

	if fn == nil {
		return Identity{}, ErrTokenRejected
	}
	return fn(ctx, tok)
}

func (f *fakeBackend) Logout(ctx context.Context, tok string) error {
	f.mu.Lock()
	f.logoutCalls++
	fn := f.logoutFn
	f.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(ctx, tok)
}

func (f *fakeBackend) calls() (login, validate, logout int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.validateCalls, f.logoutCalls
}

// recordRenderer captures every render request in order.
type recordRenderer struct {
	mu      sync.Mutex
	calls   []string
	reasons []string
}

func (r *recordRenderer) ShowLoginPrompt(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "login-prompt")
	r.reasons = append(r.reasons, reason)
}

func (r *recordRenderer) ShowProtected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "protected")
	r.reasons = append(r.reasons, "")
}

func (r *recordRenderer) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1]
}

func (r *recordRenderer) lastReason() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reasons) == 0 {
		return ""
	}
	return r.reasons[len(r.reasons)-1]
}

func (r *recordRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// failStore wraps a MemoryStore and fails the selected operations.
type failStore struct {
	inner   *store.MemoryStore
	failGet bool
	failSet bool
}

func (f *failStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, store.ErrStoreUnavailable
	}
	return f.inner.Get(ctx, key)
}

func (f *failStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return store.ErrStoreUnavailable
	}
	return f.inner.Set(ctx, key, value)
}

func (f *failStore) Remove(ctx context.Context, key string) error {
	return f.inner.Remove(ctx, key)
}

func (f *failStore) Clear(ctx context.Context) error {
	return f.inner.Clear(ctx)
}

type testEngine struct {
	engine     *Engine
	persistent *store.MemoryStore
	tab        *store.MemoryStore
	backend    *fakeBackend
	renderer   *recordRenderer
	refreshed  *int
}

func newTestEngine(t *testing.T, cfg Config) *testEngine {
	t.Helper()

	te := &testEngine{
		persistent: store.NewMemoryStore(),
		tab:        store.NewMemoryStore(),
		backend:    &fakeBackend{},
		renderer:   &recordRenderer{},
		refreshed:  new(int),
	}

	engine, err := New().
		WithConfig(cfg).
		WithPersistentStore(te.persistent).
		WithTabStore(te.tab).
		WithBackend(te.backend).
		WithRenderer(te.renderer).
		WithRefreshFunc(func(context.Context) { *te.refreshed++ }).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	te.engine = engine
	return te
}

func mustStore(t *testing.T, te *testEngine, sess *store.Session) {
	t.Helper()
	if err := te.engine.StoreSession(context.Background(), sess); err != nil {
		t.Fatalf("StoreSession failed: %v", err)
	}
}
