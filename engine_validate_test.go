package sessiongate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/sessiongate/store"
)

func signedJWT(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   "42",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return raw
}

func TestValidateSessionFailClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "rejected", err: ErrTokenRejected},
		{name: "network", err: ErrNetwork},
		{name: "server", err: ErrServer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			te := newTestEngine(t, gateTestConfig())
			te.backend.validateFn = func(context.Context, string) (Identity, error) {
				return Identity{}, tc.err
			}

			sess := &store.Session{Token: "tok-1", IssuedAt: 100}
			if te.engine.ValidateSession(context.Background(), sess) {
				t.Fatal("expected fail-closed false")
			}
		})
	}
}

func TestValidateSessionSuccess(t *testing.T) {
	te := newTestEngine(t, gateTestConfig())
	te.backend.validateFn = func(context.Context, string) (Identity, error) {
		return Identity{Username: "alice"}, nil
	}

	if !te.engine.ValidateSession(context.Background(), &store.Session{Token: "tok-1"}) {
		t.Fatal("expected valid session")
	}
}

func TestValidateSessionNilOrEmpty(t *testing.T) {
	te := newTestEngine(t, gateTestConfig())

	if te.engine.ValidateSession(context.Background(), nil) {
		t.Fatal("nil session must be invalid")
	}
	if te.engine.ValidateSession(context.Background(), &store.Session{}) {
		t.Fatal("tokenless session must be invalid")
	}
	if _, validate, _ := te.backend.calls(); validate != 0 {
		t.Fatal("no backend call expected for an empty session")
	}
}

func TestValidateSessionExpiredJWTSkipsBackend(t *testing.T) {
	te := newTestEngine(t, gateTestConfig())

	expired := signedJWT(t, time.Now().Add(-time.Hour))
	sess := &store.Session{Token: expired, IssuedAt: 100}

	if te.engine.ValidateSession(context.Background(), sess) {
		t.Fatal("expected locally expired token to be invalid")
	}
	if _, validate, _ := te.backend.calls(); validate != 0 {
		t.Fatal("local expiry must not spend a backend round-trip")
	}
}

func TestValidateSessionLiveJWTReachesBackend(t *testing.T) {
	te := newTestEngine(t, gateTestConfig())
	te.backend.validateFn = func(context.Context, string) (Identity, error) {
		return Identity{Username: "alice"}, nil
	}

	live := signedJWT(t, time.Now().Add(time.Hour))
	if !te.engine.ValidateSession(context.Background(), &store.Session{Token: live}) {
		t.Fatal("expected live token to validate")
	}
	if _, validate, _ := te.backend.calls(); validate != 1 {
		t.Fatal("expected exactly one backend validation")
	}
}

func TestValidateTokenClassifiedErrors(t *testing.T) {
	te := newTestEngine(t, gateTestConfig())
	te.backend.validateFn = func(context.Context, string) (Identity, error) {
		return Identity{}, ErrTokenRejected
	}

	if _, err := te.engine.ValidateToken(context.Background(), ""); !errors.Is(err, ErrTokenRejected) {
		t.Fatalf("expected ErrTokenRejected for empty token, got %v", err)
	}
	if _, err := te.engine.ValidateToken(context.Background(), "tok-dead"); !errors.Is(err, ErrTokenRejected) {
		t.Fatalf("expected ErrTokenRejected, got %v", err)
	}

	expired := signedJWT(t, time.Now().Add(-time.Hour))
	if _, err := te.engine.ValidateToken(context.Background(), expired); !errors.Is(err, ErrTokenExpiredLocally) {
		t.Fatalf("expected ErrTokenExpiredLocally, got %v", err)
	}
}

func TestValidateTokenReturnsIdentity(t *testing.T) {
	te := newTestEngine(t, gateTestConfig())
	te.backend.validateFn = func(_ context.Context, tok string) (Identity, error) {
		if tok != "tok-1" {
			return Identity{}, ErrTokenRejected
		}
		return Identity{ID: 42, Username: "alice", Email: "alice@example.com", IsAdmin: true}, nil
	}

	identity, err := te.engine.ValidateToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if identity.ID != 42 || identity.Username != "alice" || !identity.IsAdmin {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}
