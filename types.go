package sessiongate

import (
	"context"
	"time"

	"github.com/MrEthical07/sessiongate/store"
)

// AuthState represents the gate's position in the login state machine.
//
//	Unauthenticated → Authenticating → Authenticated
//	Authenticated   → Unauthenticated (logout or token rejection)
type AuthState uint32

const (
	// StateUnauthenticated is an exported constant or variable used by the session engine.
	StateUnauthenticated AuthState = iota
	// StateAuthenticating is an exported constant or variable used by the session engine.
	StateAuthenticating
	// StateAuthenticated is an exported constant or variable used by the session engine.
	StateAuthenticated
)

// String returns the wire name of the state.
func (s AuthState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Identity is the authenticated user record returned by the backend.
//
// Identity instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Identity struct {
	ID       int64
	Username string
	Email    string
	IsAdmin  bool
}

// Credentials carries a login submission.
//
// Credentials instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Credentials struct {
	Email    string
	Password string
}

// RenderTarget names the two render paths a guard pass can request.
type RenderTarget uint8

const (
	// RenderLoginPrompt is an exported constant or variable used by the session engine.
	RenderLoginPrompt RenderTarget = iota
	// RenderProtected is an exported constant or variable used by the session engine.
	RenderProtected
)

// String returns the wire name of the target.
func (t RenderTarget) String() string {
	switch t {
	case RenderLoginPrompt:
		return "login-prompt"
	case RenderProtected:
		return "protected"
	default:
		return "unknown"
	}
}

// RenderDecision is the output of a guard pass or a login transition. It instructs
// the host UI which path to render, without a navigational reload.
//
// RenderDecision instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RenderDecision struct {
	Target RenderTarget

	// PassID correlates the decision with its audit events and backend requests.
	PassID string

	// Source names the storage scope that produced the session, when one exists.
	Source store.Source

	// Reason is a short diagnostic tag ("no-session", "token-rejected",
	// "backend-unreachable", "validated", "validation-skipped", "login").
	Reason string

	// DataRefresh reports whether the registered refresh callback was invoked.
	DataRefresh bool

	// Stale marks a decision that was superseded by a newer pass before it could
	// be applied. Stale decisions carry no UI effect.
	Stale bool
}

// Renderer is the host-UI capability consumed by the gate and the guard. Both
// methods must be idempotent: applying the same decision twice produces the same
// visible state. Implementations must not trigger a navigational reload.
type Renderer interface {
	ShowLoginPrompt(reason string)
	ShowProtected()
}

// RefreshFunc is the registered data-refresh callback, invoked after protected
// content is requested to render.
type RefreshFunc func(ctx context.Context)

// Backend is the REST collaborator contract. [HTTPBackend] is the canonical
// implementation; tests substitute fakes.
type Backend interface {
	// Login exchanges credentials for a token and identity. Failure is one of
	// ErrInvalidCredentials, ErrNetwork, or ErrServer.
	Login(ctx context.Context, email, password string) (string, Identity, error)

	// Validate confirms the token is still accepted. Failure is one of
	// ErrTokenRejected, ErrNetwork, or ErrServer.
	Validate(ctx context.Context, tok string) (Identity, error)

	// Logout revokes the token server-side. A token the backend no longer
	// recognizes is not an error.
	Logout(ctx context.Context, tok string) error
}

// SessionInfo is an introspection snapshot of the current session state. It is
// assembled locally and never touches the backend.
//
// SessionInfo instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionInfo struct {
	State    AuthState
	Source   store.Source
	Identity Identity

	IssuedAt  time.Time
	ExpiresAt time.Time

	// HasSession reports whether any scope currently holds a session record.
	HasSession bool
}

func identityFromSession(s *store.Session) Identity {
	if s == nil {
		return Identity{}
	}
	return Identity{
		ID:       s.UserID,
		Username: s.Username,
		Email:    s.Email,
		IsAdmin:  s.IsAdmin,
	}
}
