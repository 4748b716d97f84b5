package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/pkg/goerror"
)

const (
	queryPutCode = `
INSERT INTO auth_login_codes (identity_key, identity, code_hash, salt, created_at, expires_at, attempt_count, last_attempt_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (identity_key) DO UPDATE SET
    identity = EXCLUDED.identity,
    code_hash = EXCLUDED.code_hash,
    salt = EXCLUDED.salt,
    created_at = EXCLUDED.created_at,
    expires_at = EXCLUDED.expires_at,
    attempt_count = EXCLUDED.attempt_count,
    last_attempt_at = EXCLUDED.last_attempt_at`

	queryGetCode = `
SELECT identity, code_hash, salt, created_at, expires_at, attempt_count, last_attempt_at
FROM auth_login_codes
WHERE identity_key = $1`

	queryIncrementAttempt = `
UPDATE auth_login_codes
SET attempt_count = attempt_count + 1, last_attempt_at = $4
WHERE identity_key = $1 AND code_hash = $2 AND attempt_count < $3`

	queryAttemptCount = `SELECT attempt_count FROM auth_login_codes WHERE identity_key = $1 AND code_hash = $2`

	queryConsumeCode = `DELETE FROM auth_login_codes WHERE identity_key = $1 AND code_hash = $2`

	queryDeleteCode = `DELETE FROM auth_login_codes WHERE identity_key = $1`

	queryDeleteExpiredCodes = `DELETE FROM auth_login_codes WHERE expires_at < $1`
)

func (s *DB) Put(ctx context.Context, rec entity.Record) (err error) {
	ctx, span := s.startSpan(ctx, "Put")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryPutCode,
		entity.StoreKey(rec.Identity),
		rec.Identity,
		rec.CodeHash,
		rec.Salt,
		rec.CreatedAt,
		rec.ExpiresAt,
		rec.AttemptCount,
		rec.LastAttemptAt,
	)
	return s.mapError(err)
}

func (s *DB) Get(ctx context.Context, identity string) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer func() { s.endSpan(span, err) }()

	var rec entity.Record
	err = s.conn.QueryRow(ctx, queryGetCode, entity.StoreKey(identity)).Scan(
		&rec.Identity,
		&rec.CodeHash,
		&rec.Salt,
		&rec.CreatedAt,
		&rec.ExpiresAt,
		&rec.AttemptCount,
		&rec.LastAttemptAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &rec, nil
}

// IncrementAttempt bumps the counter in the row itself, guarded by the cap,
// so concurrent attempts are all counted and never pass maxAttempts.
func (s *DB) IncrementAttempt(ctx context.Context, identity, codeHash string, maxAttempts int, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "IncrementAttempt")
	defer func() { s.endSpan(span, err) }()

	key := entity.StoreKey(identity)

	tag, err := s.conn.Exec(ctx, queryIncrementAttempt, key, codeHash, maxAttempts, at)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing updated: either the row is gone or replaced, or the cap is spent.
	var attempts int
	if err := s.conn.QueryRow(ctx, queryAttemptCount, key, codeHash).Scan(&attempts); err != nil {
		return s.mapError(err)
	}
	if attempts >= maxAttempts {
		return entity.ErrAttemptsExhausted
	}

	return goerror.ErrNotFound
}

func (s *DB) Consume(ctx context.Context, identity, codeHash string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "Consume")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryConsumeCode, entity.StoreKey(identity), codeHash)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

func (s *DB) Delete(ctx context.Context, identity string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryDeleteCode, entity.StoreKey(identity))
	return s.mapError(err)
}

func (s *DB) DeleteExpired(ctx context.Context, before time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpired")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryDeleteExpiredCodes, before)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
