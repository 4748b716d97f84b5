package entity

// State is the lifecycle position of an identity's login code.
type State int8

const (
	// StateNoCode mean there is no record for the identity.
	StateNoCode State = iota
	// StatePending mean a code was issued and can still be attempted.
	StatePending
	// StateVerified mean the code matched; the record is consumed.
	StateVerified
	// StateExpired mean the validity window elapsed.
	StateExpired
	// StateExhausted mean too many wrong codes were submitted.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateVerified:
		return "Verified"
	case StateExpired:
		return "Expired"
	case StateExhausted:
		return "Exhausted"
	default:
		return "NoCode"
	}
}
