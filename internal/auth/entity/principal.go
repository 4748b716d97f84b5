package entity

import "time"

// Principal is the durable account a session is bound to.
type Principal struct {
	ID            int64
	Email         string
	EmailVerified bool
	CreatedAt     time.Time
}
