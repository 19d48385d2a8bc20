// Package token provides advisory, signature-free inspection of backend-issued
// session tokens.
//
// The backend's token is opaque by contract. When it happens to be a readable JWT,
// [Inspect] extracts the registered claims so an already-expired token can be
// rejected locally before spending a backend round-trip. The result is advisory
// only: a token that inspects as live must still pass backend validation, and a
// token that is not a JWT simply yields no claims.
//
// # Architecture boundaries
//
// This package reads claims. It does NOT verify signatures, hold keys, or make
// authentication decisions. The Engine decides what to do with an inspection
// result.
//
// # What this package must NOT do
//
//   - Treat a readable token as a valid token.
//   - Import sessiongate or store (no upward imports).
//   - Log raw token material.
package token
