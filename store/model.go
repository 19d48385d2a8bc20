package store

// Session is the canonical authentication record. A Session is created on successful
// backend authentication, mutated only by the Engine, and destroyed on explicit
// logout or a backend token rejection.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	Token string

	UserID   int64
	Username string
	Email    string
	IsAdmin  bool

	// IssuedAt is the unix-seconds creation time and drives scope precedence.
	IssuedAt int64
	// ExpiresAt is unix seconds; zero means non-expiring.
	ExpiresAt int64

	SchemaVersion uint8

	// Source records which scope produced this record. Set by the loader,
	// never persisted.
	Source Source
}

// Authenticated reports whether the record carries a token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Equal compares the persisted fields of two records, ignoring storage-assigned
// metadata (Source, SchemaVersion).
func (s *Session) Equal(other *Session) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Token == other.Token &&
		s.UserID == other.UserID &&
		s.Username == other.Username &&
		s.Email == other.Email &&
		s.IsAdmin == other.IsAdmin &&
		s.IssuedAt == other.IssuedAt &&
		s.ExpiresAt == other.ExpiresAt
}
