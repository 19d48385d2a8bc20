package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/sessiongate/store"
)

// ValidateErrors carries host-level sentinel errors used by the validate flow.
type ValidateErrors struct {
	ExpiredLocally error
}

// ValidateDeps captures validation dependencies.
type ValidateDeps struct {
	// InspectJWT enables the advisory local expiry check before any backend call.
	InspectJWT bool
	Leeway     time.Duration

	Now func() time.Time

	// ExpiredLocally reports whether the token is a readable JWT whose exp claim
	// has passed.
	ExpiredLocally func(tok string, now time.Time, leeway time.Duration) bool

	// BackendValidate confirms the token with the backend. Its error is one of
	// the host's classified sentinels (rejected / network / server).
	BackendValidate func(ctx context.Context, tok string) (Identity, error)

	// OnLatency observes the backend round-trip duration.
	OnLatency func(d time.Duration)

	Errors ValidateErrors
}

// ValidateSession confirms sess is still accepted. Expiry evidence available
// locally (the record's own ExpiresAt or a readable JWT exp claim) rejects
// without spending a backend round-trip. Everything else is the backend's call;
// its classified error passes through untouched so the caller can distinguish a
// definitive rejection from an unreachable backend.
func ValidateSession(ctx context.Context, d ValidateDeps, sess *store.Session) (Identity, error) {
	now := d.Now()

	if sess.ExpiresAt > 0 && now.Unix() >= sess.ExpiresAt {
		return Identity{}, d.Errors.ExpiredLocally
	}

	if d.InspectJWT && d.ExpiredLocally != nil && d.ExpiredLocally(sess.Token, now, d.Leeway) {
		return Identity{}, d.Errors.ExpiredLocally
	}

	start := now
	identity, err := d.BackendValidate(ctx, sess.Token)
	if d.OnLatency != nil {
		d.OnLatency(d.Now().Sub(start))
	}
	if err != nil {
		return Identity{}, err
	}

	return identity, nil
}
