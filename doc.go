// Package sessiongate provides client-side session reconciliation and navigation
// guarding for browser-style admin dashboards backed by a REST authentication API.
//
// The package owns one question: on every page load and after every login attempt,
// is there a valid session, where does its truth live, and should the host UI render
// protected content or a login prompt. Session state lives in two injected storage
// scopes (persistent and tab-scoped); a compatibility bridge mirrors the canonical
// record into legacy flat keys for older views; render decisions propagate
// synchronously after every mutation, never through a navigational reload.
//
// # Architecture boundaries
//
// sessiongate is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (RenderDecision, SessionInfo, DecisionEvent, MetricsSnapshot). All
// internal coordination (flow orchestration, scope precedence, staleness checking,
// audit dispatch) lives under internal/ and is never exported. Storage backends
// live in store/, advisory token inspection in token/, HTTP enforcement in
// middleware/.
//
// # What this package must NOT do
//
//   - Implement the backend's REST endpoints, serve HTML, or style anything.
//   - Trust a token the backend has not confirmed (local inspection is advisory).
//   - Trigger or depend on a full page reload for state synchronization.
//
// # Concurrency contract
//
// Engine methods are safe to call from multiple goroutines after initialization
// through [Builder.Build]. Backend calls suspend the calling operation only;
// superseded guard passes discard their outcome via a monotonic pass counter.
package sessiongate
