// Package uid generates identifiers: snowflake numbers for principals and
// UUIDs for token ids and correlation ids.
package uid

// NumberID generates unique, roughly time-ordered int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
