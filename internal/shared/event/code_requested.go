package event

import "time"

const CodeRequestedDestination string = "auth.code.requested"

// CodeRequestedMessage never carries the code itself.
type CodeRequestedMessage struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
