// Package middleware exposes an HTTP adapter that enforces the navigation guard on
// the canonical protected base path of a host-served dashboard.
//
// # Guard
//
// [Guard] reads the Authorization bearer token, calls Engine.ValidateToken, and
// either injects the validated identity into the request context or answers 401
// without a redirect. Requests outside the configured protected base path pass
// through untouched. The diagnostic query flag (?sg_debug=1) enables the decision
// trace for that request only.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// session logic itself; all decisions are delegated to Engine.ValidateToken.
//
// # What this package must NOT do
//
//   - Read or write token stores directly (Engine handles I/O).
//   - Serve or resolve the protected views themselves.
//   - Persist the debug flag beyond the current request.
package middleware
