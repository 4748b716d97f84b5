// Package memory keeps login codes and principals in process memory. It is
// the default driver for development and a single-instance deployment.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/pkg/goerror"
)

type Store struct {
	mu      sync.Mutex
	records map[string]entity.Record
}

func NewStore() *Store {
	return &Store{records: make(map[string]entity.Record)}
}

func (s *Store) Put(_ context.Context, rec entity.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.LastAttemptAt = copyTime(rec.LastAttemptAt)
	s.records[entity.StoreKey(rec.Identity)] = rec
	return nil
}

func (s *Store) Get(_ context.Context, identity string) (*entity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[entity.StoreKey(identity)]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	rec.LastAttemptAt = copyTime(rec.LastAttemptAt)
	return &rec, nil
}

// IncrementAttempt charges one attempt to the record carrying codeHash. It
// refuses with entity.ErrAttemptsExhausted once maxAttempts have been spent.
func (s *Store) IncrementAttempt(_ context.Context, identity, codeHash string, maxAttempts int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entity.StoreKey(identity)
	rec, ok := s.records[key]
	if !ok || rec.CodeHash != codeHash {
		return goerror.ErrNotFound
	}
	if rec.AttemptCount >= maxAttempts {
		return entity.ErrAttemptsExhausted
	}

	rec.AttemptCount++
	rec.LastAttemptAt = &at
	s.records[key] = rec
	return nil
}

func (s *Store) Consume(_ context.Context, identity, codeHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entity.StoreKey(identity)
	rec, ok := s.records[key]
	if !ok || rec.CodeHash != codeHash {
		return false, nil
	}

	delete(s.records, key)
	return true, nil
}

func (s *Store) Delete(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, entity.StoreKey(identity))
	return nil
}

func (s *Store) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for key, rec := range s.records {
		if rec.ExpiresAt.Before(before) {
			delete(s.records, key)
			n++
		}
	}

	return n, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
