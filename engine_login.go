package sessiongate

import (
	"context"

	"github.com/MrEthical07/sessiongate/internal/flows"
	"github.com/MrEthical07/sessiongate/store"

	"github.com/google/uuid"
)

// SubmitLogin authenticates credentials against the backend. On success the
// session is persisted, the legacy mirror is projected, and the post-login render
// decision is applied through [Engine.CompleteLogin], all before SubmitLogin
// returns, so no reload ever has to re-derive the state. On failure the gate
// stays unauthenticated and the classified error (ErrInvalidCredentials,
// ErrNetwork, ErrServer) is surfaced verbatim for the login form.
//
// SubmitLogin may return an error when input validation, dependency calls, or security checks fail.
// SubmitLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SubmitLogin(ctx context.Context, creds Credentials) (RenderDecision, error) {
	if e == nil {
		return RenderDecision{}, ErrEngineNotReady
	}

	e.state.Store(uint32(StateAuthenticating))

	sess, err := flows.SubmitLogin(ctx, e.flows.Login, creds.Email, creds.Password)
	if err != nil {
		e.state.Store(uint32(StateUnauthenticated))
		e.metricInc(MetricLoginFailure)
		e.emit(ctx, DecisionEvent{
			EventType: "login.failure",
			UserEmail: creds.Email,
			Error:     err.Error(),
		})
		return RenderDecision{}, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emit(ctx, DecisionEvent{
		EventType: "login.success",
		UserEmail: sess.Email,
		Success:   true,
	})

	return e.CompleteLogin(ctx, sess), nil
}

// CompleteLogin applies the post-login UI transition for sess: the login prompt is
// hidden, protected content is requested to render, and the registered
// data-refresh callback fires, all without a navigational reload. The transition
// supersedes any in-flight guard pass so a pass started before the login cannot
// clobber the fresh session with a stale absent-session decision.
//
// CompleteLogin is idempotent: applying it twice with the same session produces
// the same visible UI state.
func (e *Engine) CompleteLogin(ctx context.Context, sess *store.Session) RenderDecision {
	decision := RenderDecision{
		Target: RenderProtected,
		PassID: uuid.NewString(),
		Source: store.SourcePersistent,
		Reason: "login",
	}
	if sess != nil {
		decision.Source = sess.Source
	}

	e.applyMu.Lock()
	e.guardPass.Add(1)
	e.state.Store(uint32(StateAuthenticated))

	if e.renderer != nil {
		e.renderer.ShowProtected()
	}
	if e.refresh != nil {
		e.refresh(ctx)
		decision.DataRefresh = true
	}
	e.applyMu.Unlock()

	e.trace(ctx, decision.PassID, "complete-login")

	return decision
}

// Logout revokes the token server-side (best effort), clears both scopes and the
// legacy mirror, and applies the login-prompt render decision. Calling Logout
// with no stored session is a no-op apart from the render request.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context) (RenderDecision, error) {
	if e == nil {
		return RenderDecision{}, ErrEngineNotReady
	}

	var tok string
	if sess, err := e.LoadSession(ctx); err == nil {
		tok = sess.Token
	}

	err := flows.Logout(ctx, e.flows.Logout, tok)

	decision := RenderDecision{
		Target: RenderLoginPrompt,
		PassID: uuid.NewString(),
		Reason: "logout",
	}

	e.applyMu.Lock()
	e.guardPass.Add(1)
	e.state.Store(uint32(StateUnauthenticated))
	if e.renderer != nil {
		e.renderer.ShowLoginPrompt(decision.Reason)
	}
	e.applyMu.Unlock()

	e.metricInc(MetricLogout)
	e.emit(ctx, DecisionEvent{
		EventType: "logout",
		Success:   err == nil,
		Error:     errString(err),
	})

	return decision, err
}
