package flows

import (
	"context"

	"github.com/MrEthical07/sessiongate/store"
)

// Guard pass reasons, surfaced in render decisions and audit events.
const (
	ReasonNoSession          = "no-session"
	ReasonValidated          = "validated"
	ReasonValidationSkipped  = "validation-skipped"
	ReasonTokenRejected      = "token-rejected"
	ReasonTokenExpired       = "token-expired"
	ReasonBackendUnreachable = "backend-unreachable"
)

// GuardDeps captures navigation-guard dependencies.
type GuardDeps struct {
	// ValidateOnLoad re-checks the token with the backend; when false the stored
	// record is trusted as-is.
	ValidateOnLoad bool

	Load func(ctx context.Context) (*store.Session, bool)

	// Validate confirms the session. A nil error means valid.
	Validate func(ctx context.Context, sess *store.Session) error

	// IsRejection classifies a validation error as definitive (401 or local
	// expiry) versus transient (backend unreachable, server error). Only
	// definitive rejection clears stored state.
	IsRejection func(err error) bool

	// IsExpiry narrows a rejection to the local-expiry case for reporting.
	IsExpiry func(err error) bool

	// Clear removes the session from both scopes and the legacy mirror.
	Clear func(ctx context.Context) error

	// OnStep observes each decision step when debug tracing is on.
	OnStep func(step string)
}

// Outcome is the flow-local result of one guard pass.
type Outcome struct {
	Protected bool
	Reason    string
	Source    store.Source

	// SessionPresent reports whether any scope held a record at pass start.
	SessionPresent bool

	// Cleared reports whether the pass destroyed stored state.
	Cleared bool
}

// GuardPass executes one navigation-guard evaluation: load, optionally validate,
// and decide the render path. It renders nothing itself; staleness checking and
// UI application belong to the engine, which owns the pass counter.
//
// A transient validation failure renders the login prompt (fail-closed) but keeps
// the stored session: discarding a session the user may have just obtained over a
// hiccup is the defect this module exists to prevent. Only definitive rejection
// clears.
func GuardPass(ctx context.Context, d GuardDeps) Outcome {
	step := func(s string) {
		if d.OnStep != nil {
			d.OnStep(s)
		}
	}

	step("load")
	sess, ok := d.Load(ctx)
	if !ok {
		step("absent")
		return Outcome{Reason: ReasonNoSession}
	}

	if !d.ValidateOnLoad {
		step("trust-local")
		return Outcome{
			Protected:      true,
			Reason:         ReasonValidationSkipped,
			Source:         sess.Source,
			SessionPresent: true,
		}
	}

	step("validate")
	err := d.Validate(ctx, sess)
	if err == nil {
		step("valid")
		return Outcome{
			Protected:      true,
			Reason:         ReasonValidated,
			Source:         sess.Source,
			SessionPresent: true,
		}
	}

	if d.IsRejection(err) {
		step("rejected")
		reason := ReasonTokenRejected
		if d.IsExpiry != nil && d.IsExpiry(err) {
			reason = ReasonTokenExpired
		}

		cleared := d.Clear(ctx) == nil
		return Outcome{
			Reason:         reason,
			Source:         sess.Source,
			SessionPresent: true,
			Cleared:        cleared,
		}
	}

	step("unreachable")
	return Outcome{
		Reason:         ReasonBackendUnreachable,
		Source:         sess.Source,
		SessionPresent: true,
	}
}
