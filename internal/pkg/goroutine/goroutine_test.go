package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager_GoCollectsErrors(t *testing.T) {
	m := NewManager(4)
	boom := errors.New("boom")

	assert.True(t, m.Go(context.Background(), func(context.Context) error { return nil }))
	assert.True(t, m.Go(context.Background(), func(context.Context) error { return boom }))

	assert.ErrorIs(t, m.Wait(), boom)
}

func TestManager_GoAfterWait(t *testing.T) {
	m := NewManager(1)
	assert.NoError(t, m.Wait())

	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
}

func TestManager_GoRecoversPanic(t *testing.T) {
	m := NewManager(1)

	assert.True(t, m.Go(context.Background(), func(context.Context) error { panic("kaboom") }))
	assert.NoError(t, m.Wait())
}

func TestManager_GoLimit(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})

	assert.True(t, m.Go(context.Background(), func(context.Context) error {
		<-release
		return nil
	}))
	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))

	close(release)
	assert.NoError(t, m.Wait())
}

func TestManager_Every(t *testing.T) {
	m := NewManager(4)
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	assert.True(t, m.Every(ctx, "sweep", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return errors.New("logged, not collected")
	}))

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, m.Wait())
}

func TestManager_EveryRejectsZeroInterval(t *testing.T) {
	m := NewManager(1)
	assert.False(t, m.Every(context.Background(), "noop", 0, func(context.Context) error { return nil }))
}
