package sessiongate

import (
	"errors"
	"time"

	"github.com/MrEthical07/sessiongate/store"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by sessiongate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	persistent store.TokenStore
	tab        store.TokenStore
	redis      *redis.Client

	backend   Backend
	renderer  Renderer
	refresh   RefreshFunc
	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithPersistentStore sets the persistent-scope [store.TokenStore]. Mutually
// exclusive with [Builder.WithRedis].
func (b *Builder) WithPersistentStore(ts store.TokenStore) *Builder {
	b.persistent = ts
	return b
}

// WithTabStore sets the tab-scoped [store.TokenStore]. When omitted, Build wires
// a fresh [store.MemoryStore], whose lifetime matches the process (the tab).
func (b *Builder) WithTabStore(ts store.TokenStore) *Builder {
	b.tab = ts
	return b
}

// WithRedis backs the persistent scope with Redis using the configured key
// prefix. Mutually exclusive with [Builder.WithPersistentStore].
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithBackend sets the REST collaborator. When omitted, Build constructs an
// [HTTPBackend] from the Backend config, which then requires a BaseURL.
func (b *Builder) WithBackend(backend Backend) *Builder {
	b.backend = backend
	return b
}

// WithRenderer registers the host-UI capability that receives render decisions.
func (b *Builder) WithRenderer(r Renderer) *Builder {
	b.renderer = r
	return b
}

// WithRefreshFunc registers the data-refresh callback invoked after protected
// content is requested to render. The callback runs synchronously inside the
// render application and must not call back into the Engine.
func (b *Builder) WithRefreshFunc(fn RefreshFunc) *Builder {
	b.refresh = fn
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.persistent != nil && b.redis != nil {
		return nil, errors.New("persistent store and redis client are mutually exclusive")
	}

	// -------- PERSISTENT SCOPE --------
	persistent := b.persistent
	if persistent == nil {
		if b.redis == nil {
			return nil, errors.New("persistent store required (WithPersistentStore or WithRedis)")
		}
		rs, err := store.NewRedisStore(b.redis, cfg.Store.RedisPrefix)
		if err != nil {
			return nil, err
		}
		persistent = rs
	}

	// -------- TAB SCOPE --------
	tab := b.tab
	if tab == nil {
		tab = store.NewMemoryStore()
	}

	// -------- BACKEND --------
	backend := b.backend
	if backend == nil {
		hb, err := NewHTTPBackend(cfg.Backend, nil)
		if err != nil {
			return nil, err
		}
		backend = hb
	}

	engine := &Engine{
		config:     cfg,
		persistent: persistent,
		tab:        tab,
		backend:    backend,
		renderer:   b.renderer,
		refresh:    b.refresh,
		now:        time.Now,
	}

	engine.bridge = NewBridge(cfg.Bridge, persistent)
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.buildFlowDeps()

	b.built = true

	return engine, nil
}
