// Package store provides durable key-value persistence for session state across two
// storage scopes: persistent (survives restarts) and tab-scoped (dies with the
// execution context).
//
// # Backends
//
//   - [MemoryStore]: in-process map, the canonical tab-scoped backend.
//   - [FileStore]: single JSON file with atomic rename writes, the default
//     persistent backend for single-workstation deployments.
//   - [RedisStore]: Redis-backed persistent scope for kiosk and shared-workstation
//     deployments where "persistent" must outlive any one process.
//
// # Record encoding
//
// Session records are stored as versioned JSON (schema v1–v2) with forward migration
// on read. The encoder is append-only: new versions add fields but never reinterpret
// old ones.
//
// # Architecture boundaries
//
// This package owns raw storage and the [Session] record model. It does NOT validate
// tokens, contact the backend, or decide scope precedence; those responsibilities
// belong to the Engine.
//
// # What this package must NOT do
//
//   - Import sessiongate or token (no upward imports).
//   - Interpret token contents.
//   - Make render or authentication decisions.
package store
