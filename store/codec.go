package store

import (
	"encoding/json"
	"fmt"
)

const (
	recordFormatVersionCurrent uint8 = 2
	recordFormatVersionV1      uint8 = 1
)

// recordEnvelope is the persisted JSON shape of a [Session]. v1 records predate
// expiry tracking; decoding one yields ExpiresAt=0 (non-expiring) and the record
// is migrated forward on the next write.
type recordEnvelope struct {
	Version  uint8  `json:"v"`
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
	IssuedAt int64  `json:"issuedAt"`
	// omitempty keeps v2 records byte-compatible with v1 readers that
	// ignore unknown fields.
	ExpiresAt int64 `json:"expiresAt,omitempty"`
}

// Encode serializes a [Session] into its versioned storage form.
func Encode(s *Session) (string, error) {
	if s == nil {
		return "", fmt.Errorf("%w: nil session", ErrRecordCorrupt)
	}
	if s.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrRecordCorrupt)
	}

	env := recordEnvelope{
		Version:   recordFormatVersionCurrent,
		Token:     s.Token,
		UserID:    s.UserID,
		Username:  s.Username,
		Email:     s.Email,
		IsAdmin:   s.IsAdmin,
		IssuedAt:  s.IssuedAt,
		ExpiresAt: s.ExpiresAt,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}

	return string(data), nil
}

// Decode parses a stored record. Unknown versions and malformed payloads return
// [ErrRecordCorrupt]; callers treat that as "no session" (fail-closed).
func Decode(raw string) (*Session, error) {
	var env recordEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}

	if env.Version != recordFormatVersionCurrent && env.Version != recordFormatVersionV1 {
		return nil, fmt.Errorf("%w: unknown record version %d", ErrRecordCorrupt, env.Version)
	}
	if env.Token == "" {
		return nil, fmt.Errorf("%w: record missing token", ErrRecordCorrupt)
	}

	s := &Session{
		Token:         env.Token,
		UserID:        env.UserID,
		Username:      env.Username,
		Email:         env.Email,
		IsAdmin:       env.IsAdmin,
		IssuedAt:      env.IssuedAt,
		SchemaVersion: env.Version,
	}

	if env.Version >= recordFormatVersionCurrent {
		s.ExpiresAt = env.ExpiresAt
	}

	return s, nil
}
