package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdentity(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeIdentity(" A@B.com "))
	assert.Equal(t, "a@b.com", NormalizeIdentity("a@b.com"))
	assert.Equal(t, "", NormalizeIdentity("   "))
}

func TestStoreKey(t *testing.T) {
	assert.Equal(t, "YUBiLmNvbQ", StoreKey("a@b.com"))
	assert.Equal(t, StoreKey(NormalizeIdentity(" A@B.com ")), StoreKey(NormalizeIdentity("a@b.com")))
	assert.NotContains(t, StoreKey("user+tag@example.com"), "=")
}

func TestRecord_State(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &Record{ExpiresAt: now.Add(time.Minute)}

	var missing *Record
	assert.Equal(t, StateNoCode, missing.State(now, 5))
	assert.Equal(t, StatePending, rec.State(now, 5))
	assert.Equal(t, StatePending, rec.State(rec.ExpiresAt, 5), "boundary instant is still valid")
	assert.Equal(t, StateExpired, rec.State(rec.ExpiresAt.Add(time.Nanosecond), 5))

	rec.AttemptCount = 5
	assert.Equal(t, StateExhausted, rec.State(now, 5))
	assert.Equal(t, StateExpired, rec.State(now.Add(time.Hour), 5), "expiry is checked before attempts")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "NoCode", StateNoCode.String())
	assert.Equal(t, "Verified", StateVerified.String())
	assert.Equal(t, "Exhausted", StateExhausted.String())
}
