package uid

import "github.com/google/uuid"

// UUID generates time-ordered version 7 UUID strings for correlation and
// session identifiers.
type UUID struct {
	newV7 func() (uuid.UUID, error)
}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{newV7: uuid.NewV7}
}

// Generate returns a new UUID string. A random version 4 UUID is returned when
// the clock sequence cannot be read.
func (u *UUID) Generate() string {
	id, err := u.newV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
