package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/pkg/clock"
	"github.com/shandysiswandi/otclogin/internal/pkg/goerror"
	"github.com/shandysiswandi/otclogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otclogin/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	if testing.Short() {
		t.Skip("postgres container tests are skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("otclogin"),
		tcpostgres.WithUsername("otclogin"),
		tcpostgres.WithPassword("otclogin"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	sf, err := uid.NewSnowflakeNode(1)
	require.NoError(t, err)

	s := NewDB(pool, sf, clock.New(), instrument.NewNoop())
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))

	return s
}

func newRecord(identity string, now time.Time) entity.Record {
	return entity.Record{
		Identity:  identity,
		CodeHash:  "hash",
		Salt:      "salt",
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
}

func TestDB_CodeLifecycle(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := s.Get(ctx, "a@b.com")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
	assert.ErrorIs(t, s.IncrementAttempt(ctx, "a@b.com", "hash", 5, now), goerror.ErrNotFound)

	require.NoError(t, s.Put(ctx, newRecord("a@b.com", now)))
	assert.ErrorIs(t, s.IncrementAttempt(ctx, "a@b.com", "stale", 5, now), goerror.ErrNotFound)
	require.NoError(t, s.IncrementAttempt(ctx, "a@b.com", "hash", 5, now.Add(time.Second)))

	got, err := s.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 1, got.AttemptCount)
	require.NotNil(t, got.LastAttemptAt)
	assert.True(t, now.Add(time.Second).Equal(*got.LastAttemptAt))
	assert.True(t, now.Add(10*time.Minute).Equal(got.ExpiresAt))

	next := newRecord("a@b.com", now)
	next.CodeHash = "other"
	require.NoError(t, s.Put(ctx, next))

	got, err = s.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "other", got.CodeHash)
	assert.Equal(t, 0, got.AttemptCount)
	assert.Nil(t, got.LastAttemptAt)

	ok, err := s.Consume(ctx, "a@b.com", "hash")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Consume(ctx, "a@b.com", "other")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, s.Delete(ctx, "a@b.com"))
}

func TestDB_IncrementAttemptConcurrent(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.Put(ctx, newRecord("a@b.com", now)))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		refused int
	)
	for range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.IncrementAttempt(ctx, "a@b.com", "hash", 20, now); err != nil {
				assert.ErrorIs(t, err, entity.ErrAttemptsExhausted)
				mu.Lock()
				refused++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 20, got.AttemptCount)
	assert.Equal(t, 10, refused)
}

func TestDB_DeleteExpired(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := newRecord("old@b.com", now.Add(-3*time.Hour))
	require.NoError(t, s.Put(ctx, old))
	require.NoError(t, s.Put(ctx, newRecord("new@b.com", now)))

	n, err := s.DeleteExpired(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Get(ctx, "old@b.com")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestDB_GetOrCreatePrincipal(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	first, created, err := s.GetOrCreatePrincipal(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, first.EmailVerified)

	again, created, err := s.GetOrCreatePrincipal(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
}
