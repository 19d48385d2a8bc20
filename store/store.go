package store

import (
	"context"
	"errors"
)

// ErrStoreUnavailable is an exported constant or variable used by the session engine.
var ErrStoreUnavailable = errors.New("token store unavailable")

// ErrRecordCorrupt is returned when a stored session record cannot be decoded.
var ErrRecordCorrupt = errors.New("session record corrupt")

// Scope identifies a storage lifetime class.
type Scope uint8

const (
	// ScopePersistent is an exported constant or variable used by the session engine.
	ScopePersistent Scope = iota
	// ScopeTabScoped is an exported constant or variable used by the session engine.
	ScopeTabScoped
)

// String returns the wire name of the scope.
func (s Scope) String() string {
	switch s {
	case ScopePersistent:
		return "persistent"
	case ScopeTabScoped:
		return "tab-scoped"
	default:
		return "unknown"
	}
}

// Source identifies which storage scope produced a session record.
type Source uint8

const (
	// SourcePersistent is an exported constant or variable used by the session engine.
	SourcePersistent Source = iota
	// SourceTabScoped is an exported constant or variable used by the session engine.
	SourceTabScoped
	// SourceLegacyMirror is an exported constant or variable used by the session engine.
	SourceLegacyMirror
)

// String returns the wire name of the source.
func (s Source) String() string {
	switch s {
	case SourcePersistent:
		return "persistent"
	case SourceTabScoped:
		return "tab-scoped"
	case SourceLegacyMirror:
		return "legacy-mirror"
	default:
		return "unknown"
	}
}

// TokenStore is the storage contract consumed by the Engine. One instance is bound
// per scope; implementations carry no validation logic. Writes must be visible to
// subsequent reads from the same process (read-after-write consistency). No
// cross-process atomicity is assumed or required.
type TokenStore interface {
	// Get returns the stored value for key, or ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Clear removes every key held by this store instance.
	Clear(ctx context.Context) error
}
