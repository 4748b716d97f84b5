package entity

import "time"

// Record is the single outstanding login code of an identity.
//
// Only the salted hash of the code is kept; the plaintext is never stored.
type Record struct {
	Identity      string
	CodeHash      string
	Salt          string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	AttemptCount  int
	LastAttemptAt *time.Time
}

// Expired reports whether now is past ExpiresAt. The boundary instant is still valid.
func (r Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Exhausted reports whether the failed attempts reached maxAttempts.
func (r Record) Exhausted(maxAttempts int) bool {
	return r.AttemptCount >= maxAttempts
}

// State classifies the record as seen by a verification at now.
func (r *Record) State(now time.Time, maxAttempts int) State {
	switch {
	case r == nil:
		return StateNoCode
	case r.Expired(now):
		return StateExpired
	case r.Exhausted(maxAttempts):
		return StateExhausted
	default:
		return StatePending
	}
}
