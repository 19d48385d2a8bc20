package sessiongate

import (
	"context"

	"github.com/MrEthical07/sessiongate/internal/flows"

	"github.com/google/uuid"
)

// RunGuard executes one navigation-guard pass: load the session, optionally
// re-validate it with the backend, and apply the resulting render decision. It
// runs once per page load and again after every gate transition.
//
// Each pass takes a ticket from a monotonically increasing counter. If a newer
// pass (or a login/logout transition) supersedes this one while its backend call
// is in flight, the outcome is discarded: the decision comes back with Stale set,
// [ErrStalePass] is returned, and no UI effect is applied. This is what keeps a
// slow pass from clobbering a session another actor just wrote.
//
// RunGuard may return an error when input validation, dependency calls, or security checks fail.
// RunGuard does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RunGuard(ctx context.Context) (RenderDecision, error) {
	if e == nil {
		return RenderDecision{}, ErrEngineNotReady
	}

	pass := e.guardPass.Add(1)
	passID := uuid.NewString()

	e.metricInc(MetricGuardPass)
	e.trace(ctx, passID, "pass-start")

	deps := e.flows.Guard
	if e.debugEnabled(ctx) {
		deps.OnStep = func(step string) {
			e.trace(ctx, passID, step)
		}
	}

	// The clear is gated on the same ticket as the UI application: a pass that
	// was superseded while its backend call was in flight must not destroy the
	// session another actor just wrote.
	deps.Clear = func(ctx context.Context) error {
		e.applyMu.Lock()
		defer e.applyMu.Unlock()

		if e.guardPass.Load() != pass {
			return ErrStalePass
		}
		return e.ClearSession(ctx)
	}

	outcome := flows.GuardPass(ctx, deps)

	e.applyMu.Lock()
	if e.guardPass.Load() != pass {
		e.applyMu.Unlock()

		e.metricInc(MetricGuardPassStale)
		e.emit(ctx, DecisionEvent{
			EventType: "guard.stale",
			PassID:    passID,
			Decision:  outcome.Reason,
		})

		return RenderDecision{PassID: passID, Stale: true}, ErrStalePass
	}

	decision := e.applyOutcome(ctx, passID, outcome)
	e.applyMu.Unlock()

	e.emit(ctx, DecisionEvent{
		EventType: "guard.pass",
		PassID:    passID,
		Source:    decision.Source.String(),
		Decision:  decision.Target.String(),
		Success:   true,
		Metadata:  map[string]string{"reason": decision.Reason},
	})

	return decision, nil
}

// applyOutcome translates a flow outcome into UI effects. Caller holds applyMu.
func (e *Engine) applyOutcome(ctx context.Context, passID string, outcome flows.Outcome) RenderDecision {
	decision := RenderDecision{
		PassID: passID,
		Source: outcome.Source,
		Reason: outcome.Reason,
	}

	if outcome.Protected {
		decision.Target = RenderProtected
		e.state.Store(uint32(StateAuthenticated))
		e.metricInc(MetricGuardProtected)

		if e.renderer != nil {
			e.renderer.ShowProtected()
		}
		if e.refresh != nil {
			e.refresh(ctx)
			decision.DataRefresh = true
		}
		return decision
	}

	decision.Target = RenderLoginPrompt
	e.state.Store(uint32(StateUnauthenticated))
	e.metricInc(MetricGuardLoginPrompt)

	if e.renderer != nil {
		e.renderer.ShowLoginPrompt(outcome.Reason)
	}

	return decision
}

// GuardPassCount returns the current value of the pass counter. Introspection and
// test helper.
func (e *Engine) GuardPassCount() uint64 {
	if e == nil {
		return 0
	}
	return e.guardPass.Load()
}
