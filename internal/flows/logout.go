package flows

import "context"

// LogoutDeps captures logout dependencies.
type LogoutDeps struct {
	// BackendLogout revokes the token server-side. Best effort: a failure is
	// observed but never blocks the local clear.
	BackendLogout func(ctx context.Context, tok string) error

	// Clear removes the session from both scopes and the legacy mirror.
	Clear func(ctx context.Context) error

	// OnRevokeError observes a failed server-side revocation.
	OnRevokeError func(err error)
}

// Logout revokes the token server-side when one exists and always clears local
// state. Clearing with no stored session is a no-op, which makes the operation
// idempotent.
func Logout(ctx context.Context, d LogoutDeps, tok string) error {
	if tok != "" && d.BackendLogout != nil {
		if err := d.BackendLogout(ctx, tok); err != nil && d.OnRevokeError != nil {
			d.OnRevokeError(err)
		}
	}

	return d.Clear(ctx)
}
