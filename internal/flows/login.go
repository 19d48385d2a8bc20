package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/sessiongate/store"
)

// LoginDeps captures login dependencies.
type LoginDeps struct {
	// BackendLogin exchanges credentials for a token and identity. Its error is
	// one of the host's classified sentinels (credentials / network / server).
	BackendLogin func(ctx context.Context, email, password string) (string, Identity, error)

	// WriteSession persists the new record to the persistent scope and projects
	// the legacy mirror, synchronously. When it returns, a load must observe
	// the record (read-after-write).
	WriteSession func(ctx context.Context, sess *store.Session) error

	// InspectExpiry extracts a unix-seconds expiry from a JWT-shaped token.
	// ok=false for opaque tokens; the record then carries no expiry.
	InspectExpiry func(tok string) (int64, bool)

	Now func() time.Time
}

// SubmitLogin authenticates against the backend and persists the resulting
// session. The write completes before this function returns so the caller can
// make a render decision without a reload-and-reread cycle.
func SubmitLogin(ctx context.Context, d LoginDeps, email, password string) (*store.Session, error) {
	tok, identity, err := d.BackendLogin(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sess := &store.Session{
		Token:    tok,
		UserID:   identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		IsAdmin:  identity.IsAdmin,
		IssuedAt: d.Now().Unix(),
		Source:   store.SourcePersistent,
	}

	if d.InspectExpiry != nil {
		if exp, ok := d.InspectExpiry(tok); ok {
			sess.ExpiresAt = exp
		}
	}

	if err := d.WriteSession(ctx, sess); err != nil {
		return nil, err
	}

	return sess, nil
}
