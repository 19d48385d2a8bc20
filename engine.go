package sessiongate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/sessiongate/internal/flows"
	"github.com/MrEthical07/sessiongate/store"
	"github.com/MrEthical07/sessiongate/token"
)

// Engine defines a public type used by sessiongate APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config     Config
	persistent store.TokenStore
	tab        store.TokenStore
	backend    Backend
	renderer   Renderer
	refresh    RefreshFunc
	bridge     *Bridge
	audit      *auditDispatcher
	metrics    *Metrics

	flows flows.Deps

	state     atomic.Uint32
	guardPass atomic.Uint64

	// applyMu serializes the supersession check with UI application so a pass
	// can never observe itself current and then apply after being superseded.
	applyMu sync.Mutex

	now func() time.Time
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// State returns the gate's current position in the login state machine.
func (e *Engine) State() AuthState {
	if e == nil {
		return StateUnauthenticated
	}
	return AuthState(e.state.Load())
}

// LoadSession resolves the authoritative session across both scopes without
// contacting the backend. Persistent wins over tab-scoped unless tab-scoped is
// strictly newer; an exact IssuedAt tie goes to persistent. Returns
// [ErrNoSession] when no scope holds a record; storage failures degrade to the
// same outcome.
//
// LoadSession may return an error when input validation, dependency calls, or security checks fail.
// LoadSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LoadSession(ctx context.Context) (*store.Session, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	sess, ok := flows.LoadSession(ctx, e.flows.Load)
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}

// ValidateSession confirms sess is still accepted, fail-closed: any non-success
// outcome (rejection, local expiry, unreachable backend) reports false. The
// classified error is available through [Engine.ValidateToken] when the caller
// needs to distinguish a definitive rejection from a transient failure.
//
// ValidateSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateSession(ctx context.Context, sess *store.Session) bool {
	if e == nil || sess == nil || sess.Token == "" {
		return false
	}

	_, err := e.validateClassified(ctx, sess)
	return err == nil
}

// ValidateToken confirms a raw token with the backend and returns the identity
// it maps to. The error is one of ErrTokenRejected, ErrTokenExpiredLocally,
// ErrNetwork, or ErrServer. Used by the HTTP middleware.
//
// ValidateToken may return an error when input validation, dependency calls, or security checks fail.
// ValidateToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateToken(ctx context.Context, tok string) (Identity, error) {
	if e == nil {
		return Identity{}, ErrEngineNotReady
	}
	if tok == "" {
		return Identity{}, ErrTokenRejected
	}

	return e.validateClassified(ctx, &store.Session{Token: tok})
}

func (e *Engine) validateClassified(ctx context.Context, sess *store.Session) (Identity, error) {
	identity, err := flows.ValidateSession(ctx, e.flows.Validate, sess)
	switch {
	case err == nil:
		e.metricInc(MetricValidateSuccess)
		return Identity{
			ID:       identity.ID,
			Username: identity.Username,
			Email:    identity.Email,
			IsAdmin:  identity.IsAdmin,
		}, nil
	case errors.Is(err, ErrTokenExpiredLocally):
		e.metricInc(MetricValidateExpiredLocally)
	case errors.Is(err, ErrTokenRejected):
		e.metricInc(MetricValidateRejected)
	default:
		e.metricInc(MetricValidateUnreachable)
	}
	return Identity{}, err
}

// StoreSession writes sess to the persistent scope and synchronously projects the
// legacy mirror. When StoreSession returns, an immediate [Engine.LoadSession]
// observes an equivalent session (read-after-write within the process).
//
// StoreSession may return an error when input validation, dependency calls, or security checks fail.
// StoreSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) StoreSession(ctx context.Context, sess *store.Session) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if sess == nil || sess.Token == "" {
		return store.ErrRecordCorrupt
	}

	if sess.IssuedAt == 0 {
		sess.IssuedAt = e.now().Unix()
	}

	encoded, err := store.Encode(sess)
	if err != nil {
		return err
	}

	if err := e.persistent.Set(ctx, e.config.Store.RecordKey, encoded); err != nil {
		e.metricInc(MetricStoreError)
		return err
	}

	if err := e.bridge.Project(ctx, sess); err != nil {
		e.metricInc(MetricStoreError)
		return err
	}
	e.metricInc(MetricBridgeProjection)

	e.metricInc(MetricSessionStored)
	e.emit(ctx, DecisionEvent{
		EventType: "session.stored",
		UserEmail: sess.Email,
		Source:    store.SourcePersistent.String(),
		Success:   true,
	})

	return nil
}

// ClearSession removes the session record from both scopes and clears the legacy
// mirror. Clearing an already-empty state is a no-op; the operation is
// idempotent.
//
// ClearSession may return an error when input validation, dependency calls, or security checks fail.
// ClearSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ClearSession(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}

	var firstErr error
	if err := e.persistent.Remove(ctx, e.config.Store.RecordKey); err != nil {
		firstErr = err
	}
	if err := e.tab.Remove(ctx, e.config.Store.RecordKey); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.bridge.Project(ctx, nil); err != nil && firstErr == nil {
		firstErr = err
	}

	e.state.Store(uint32(StateUnauthenticated))
	e.metricInc(MetricSessionCleared)
	e.emit(ctx, DecisionEvent{
		EventType: "session.cleared",
		Success:   firstErr == nil,
		Error:     errString(firstErr),
	})

	return firstErr
}

// SessionInfo assembles a local introspection snapshot. It never contacts the
// backend.
func (e *Engine) SessionInfo(ctx context.Context) SessionInfo {
	if e == nil {
		return SessionInfo{}
	}

	info := SessionInfo{State: e.State()}

	sess, err := e.LoadSession(ctx)
	if err != nil {
		return info
	}

	info.HasSession = true
	info.Source = sess.Source
	info.Identity = identityFromSession(sess)
	info.IssuedAt = time.Unix(sess.IssuedAt, 0)
	if sess.ExpiresAt > 0 {
		info.ExpiresAt = time.Unix(sess.ExpiresAt, 0)
	}

	return info
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emit(ctx context.Context, event DecisionEvent) {
	if e == nil || e.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	e.audit.Emit(ctx, event)
}

// debugEnabled combines the persisted config flag with the per-pass context flag.
func (e *Engine) debugEnabled(ctx context.Context) bool {
	return e.config.Guard.DebugLogging || debugLoggingFromContext(ctx)
}

func (e *Engine) trace(ctx context.Context, passID, step string) {
	if !e.debugEnabled(ctx) {
		return
	}
	e.emit(ctx, DecisionEvent{
		EventType: "debug.trace",
		PassID:    passID,
		Decision:  step,
		Success:   true,
	})
}

func (e *Engine) readScope(ts store.TokenStore) func(context.Context) (*store.Session, bool, error) {
	key := e.config.Store.RecordKey
	return func(ctx context.Context) (*store.Session, bool, error) {
		raw, ok, err := ts.Get(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}

		sess, err := store.Decode(raw)
		if err != nil {
			// corrupt record: fail-closed, treated as an absorbed store error
			return nil, false, err
		}
		return sess, true, nil
	}
}

func (e *Engine) buildFlowDeps() {
	e.flows = flows.Deps{
		Load: flows.LoadDeps{
			ReadPersistent: e.readScope(e.persistent),
			ReadTab:        e.readScope(e.tab),
			OnStoreError: func(scope store.Scope, err error) {
				e.metricInc(MetricStoreError)
				e.emit(context.Background(), DecisionEvent{
					EventType: "store.error",
					Source:    scope.String(),
					Error:     errString(err),
				})
			},
		},
		Validate: flows.ValidateDeps{
			InspectJWT:     e.config.Token.InspectJWT,
			Leeway:         e.config.Token.Leeway,
			Now:            e.now,
			ExpiredLocally: token.ExpiredLocally,
			BackendValidate: func(ctx context.Context, tok string) (flows.Identity, error) {
				identity, err := e.backend.Validate(ctx, tok)
				if err != nil {
					return flows.Identity{}, err
				}
				return flows.Identity{
					ID:       identity.ID,
					Username: identity.Username,
					Email:    identity.Email,
					IsAdmin:  identity.IsAdmin,
				}, nil
			},
			OnLatency: func(d time.Duration) {
				if e.metrics != nil {
					e.metrics.Observe(MetricValidateLatency, d)
				}
			},
			Errors: flows.ValidateErrors{
				ExpiredLocally: ErrTokenExpiredLocally,
			},
		},
		Login: flows.LoginDeps{
			BackendLogin: func(ctx context.Context, email, password string) (string, flows.Identity, error) {
				tok, identity, err := e.backend.Login(ctx, email, password)
				if err != nil {
					return "", flows.Identity{}, err
				}
				return tok, flows.Identity{
					ID:       identity.ID,
					Username: identity.Username,
					Email:    identity.Email,
					IsAdmin:  identity.IsAdmin,
				}, nil
			},
			WriteSession: func(ctx context.Context, sess *store.Session) error {
				return e.StoreSession(ctx, sess)
			},
			InspectExpiry: func(tok string) (int64, bool) {
				if !e.config.Token.InspectJWT {
					return 0, false
				}
				claims, ok := token.Inspect(tok)
				if !ok || !claims.HasExpiry {
					return 0, false
				}
				return claims.ExpiresAt.Unix(), true
			},
			Now: e.now,
		},
		Guard: flows.GuardDeps{
			ValidateOnLoad: e.config.Guard.ValidateOnLoad,
			Load: func(ctx context.Context) (*store.Session, bool) {
				return flows.LoadSession(ctx, e.flows.Load)
			},
			Validate: func(ctx context.Context, sess *store.Session) error {
				_, err := e.validateClassified(ctx, sess)
				return err
			},
			IsRejection: func(err error) bool {
				return errors.Is(err, ErrTokenRejected) || errors.Is(err, ErrTokenExpiredLocally)
			},
			IsExpiry: func(err error) bool {
				return errors.Is(err, ErrTokenExpiredLocally)
			},
			Clear: func(ctx context.Context) error {
				return e.ClearSession(ctx)
			},
		},
		Logout: flows.LogoutDeps{
			BackendLogout: func(ctx context.Context, tok string) error {
				return e.backend.Logout(ctx, tok)
			},
			Clear: func(ctx context.Context) error {
				return e.ClearSession(ctx)
			},
			OnRevokeError: func(err error) {
				e.emit(context.Background(), DecisionEvent{
					EventType: "logout.revoke_failed",
					Error:     errString(err),
				})
			},
		},
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
