package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims read from a JWT-shaped session token.
//
// Claims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Claims struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// HasExpiry distinguishes "no exp claim" from a zero timestamp.
	HasExpiry bool
}

var unverifiedParser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Inspect parses raw as a JWT without verifying its signature and returns the
// registered claims. ok is false when raw is not JWT-shaped; opaque backend tokens
// are expected to land there and that is not an error.
func Inspect(raw string) (Claims, bool) {
	if raw == "" {
		return Claims{}, false
	}

	var registered jwt.RegisteredClaims
	if _, _, err := unverifiedParser.ParseUnverified(raw, &registered); err != nil {
		return Claims{}, false
	}

	claims := Claims{
		Subject: registered.Subject,
		Issuer:  registered.Issuer,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
		claims.HasExpiry = true
	}

	return claims, true
}

// ExpiredLocally reports whether raw is a readable JWT whose exp claim is at or
// before now, with leeway subtracted. Opaque tokens and tokens without an exp
// claim report false: absence of evidence is not expiry.
func ExpiredLocally(raw string, now time.Time, leeway time.Duration) bool {
	claims, ok := Inspect(raw)
	if !ok || !claims.HasExpiry {
		return false
	}
	if leeway < 0 {
		leeway = 0
	}
	return !claims.ExpiresAt.Add(leeway).After(now)
}
