package sessiongate

import (
	"context"
	"strconv"

	"github.com/MrEthical07/sessiongate/store"
)

// Bridge mirrors the canonical session record into the flat legacy keys consumed by
// older views. The mirror is a derived projection with no independent truth: it is
// regenerated on every session change and is never read back as a write source.
//
// The bridge is an explicit registered capability. Hosts that have retired every
// legacy view disable it in [BridgeConfig] instead of probing for it at runtime.
type Bridge struct {
	cfg        BridgeConfig
	persistent store.TokenStore
}

// NewBridge describes the newbridge operation and its observable behavior.
//
// NewBridge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewBridge(cfg BridgeConfig, persistent store.TokenStore) *Bridge {
	return &Bridge{
		cfg:        cfg,
		persistent: persistent,
	}
}

// Project writes the legacy mirror derived from sess, or removes every mirror key
// when sess is nil. The derivation is deterministic: authToken from the token,
// username falling back to the email, userEmail falling back to empty, isAdmin as
// "true"/"false". Projecting the same session twice is a no-op in effect.
//
// Project may return an error when input validation, dependency calls, or security checks fail.
func (b *Bridge) Project(ctx context.Context, sess *store.Session) error {
	if b == nil || !b.cfg.Enabled {
		return nil
	}

	if sess == nil {
		for _, key := range b.keys() {
			if err := b.persistent.Remove(ctx, key); err != nil {
				return err
			}
		}
		return nil
	}

	username := sess.Username
	if username == "" {
		username = sess.Email
	}

	entries := []struct {
		key   string
		value string
	}{
		{b.cfg.AuthTokenKey, sess.Token},
		{b.cfg.UsernameKey, username},
		{b.cfg.UserEmailKey, sess.Email},
		{b.cfg.IsAdminKey, strconv.FormatBool(sess.IsAdmin)},
	}

	for _, e := range entries {
		if err := b.persistent.Set(ctx, e.key, e.value); err != nil {
			return err
		}
	}

	return nil
}

func (b *Bridge) keys() []string {
	return []string{
		b.cfg.AuthTokenKey,
		b.cfg.UsernameKey,
		b.cfg.UserEmailKey,
		b.cfg.IsAdminKey,
	}
}
