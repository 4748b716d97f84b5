// Package cache stores login codes in Redis, one hash per identity.
//
// Keys expire on their own after the code's expiry plus the retention window,
// so there is nothing to sweep.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/pkg/goerror"
	"github.com/shandysiswandi/otclogin/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyPrefix        = "otc:"
	defaultRetention = time.Hour
)

const (
	fieldIdentity      = "identity"
	fieldCodeHash      = "code_hash"
	fieldSalt          = "salt"
	fieldCreatedAt     = "created_at"
	fieldExpiresAt     = "expires_at"
	fieldAttemptCount  = "attempt_count"
	fieldLastAttemptAt = "last_attempt_at"
)

// incrementAttempt returns 0 when the record is gone or replaced, -1 when
// the cap is reached and 1 when an attempt was charged.
var incrementAttempt = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'code_hash') ~= ARGV[1] then
	return 0
end
if tonumber(redis.call('HGET', KEYS[1], 'attempt_count')) >= tonumber(ARGV[2]) then
	return -1
end
redis.call('HINCRBY', KEYS[1], 'attempt_count', 1)
redis.call('HSET', KEYS[1], 'last_attempt_at', ARGV[3])
return 1
`)

var consume = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'code_hash') == ARGV[1] then
	redis.call('DEL', KEYS[1])
	return 1
end
return 0
`)

type Cache struct {
	client    redis.UniversalClient
	retention time.Duration
	ins       instrument.Instrumentation
}

func NewCache(client redis.UniversalClient, retention time.Duration, ins instrument.Instrumentation) *Cache {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Cache{client: client, retention: retention, ins: ins}
}

func key(identity string) string {
	return keyPrefix + entity.StoreKey(identity)
}

func (s *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.outbound.cache").Start(ctx, name)
}

func (s *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, entity.ErrAttemptsExhausted) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Put replaces the whole hash in one MULTI so no field of a prior record survives.
func (s *Cache) Put(ctx context.Context, rec entity.Record) (err error) {
	ctx, span := s.startSpan(ctx, "Put")
	defer func() { s.endSpan(span, err) }()

	k := key(rec.Identity)
	fields := map[string]any{
		fieldIdentity:      rec.Identity,
		fieldCodeHash:      rec.CodeHash,
		fieldSalt:          rec.Salt,
		fieldCreatedAt:     rec.CreatedAt.UnixMilli(),
		fieldExpiresAt:     rec.ExpiresAt.UnixMilli(),
		fieldAttemptCount:  rec.AttemptCount,
		fieldLastAttemptAt: "",
	}
	if rec.LastAttemptAt != nil {
		fields[fieldLastAttemptAt] = rec.LastAttemptAt.UnixMilli()
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, fields)
		pipe.PExpireAt(ctx, k, rec.ExpiresAt.Add(s.retention))
		return nil
	})
	return err
}

func (s *Cache) Get(ctx context.Context, identity string) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer func() { s.endSpan(span, err) }()

	values, err := s.client.HGetAll(ctx, key(identity)).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, goerror.ErrNotFound
	}

	return decodeRecord(values)
}

func (s *Cache) IncrementAttempt(ctx context.Context, identity, codeHash string, maxAttempts int, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "IncrementAttempt")
	defer func() { s.endSpan(span, err) }()

	n, err := incrementAttempt.Run(ctx, s.client, []string{key(identity)}, codeHash, maxAttempts, at.UnixMilli()).Int()
	if err != nil {
		return err
	}

	switch n {
	case 0:
		return goerror.ErrNotFound
	case -1:
		return entity.ErrAttemptsExhausted
	}

	return nil
}

func (s *Cache) Consume(ctx context.Context, identity, codeHash string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "Consume")
	defer func() { s.endSpan(span, err) }()

	n, err := consume.Run(ctx, s.client, []string{key(identity)}, codeHash).Int()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (s *Cache) Delete(ctx context.Context, identity string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { s.endSpan(span, err) }()

	return s.client.Del(ctx, key(identity)).Err()
}

// DeleteExpired is a no-op; key TTLs purge abandoned records.
func (s *Cache) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func decodeRecord(values map[string]string) (*entity.Record, error) {
	createdAt, err := parseMilli(values[fieldCreatedAt])
	if err != nil {
		return nil, err
	}

	expiresAt, err := parseMilli(values[fieldExpiresAt])
	if err != nil {
		return nil, err
	}

	attempts, err := strconv.Atoi(values[fieldAttemptCount])
	if err != nil {
		return nil, err
	}

	rec := &entity.Record{
		Identity:     values[fieldIdentity],
		CodeHash:     values[fieldCodeHash],
		Salt:         values[fieldSalt],
		CreatedAt:    createdAt,
		ExpiresAt:    expiresAt,
		AttemptCount: attempts,
	}

	if v := values[fieldLastAttemptAt]; v != "" {
		at, err := parseMilli(v)
		if err != nil {
			return nil, err
		}
		rec.LastAttemptAt = &at
	}

	return rec, nil
}

func parseMilli(v string) (time.Time, error) {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
