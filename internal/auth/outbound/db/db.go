package db

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/pkg/clock"
	"github.com/shandysiswandi/otclogin/internal/pkg/goerror"
	"github.com/shandysiswandi/otclogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otclogin/internal/pkg/uid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed schema.sql
var schema string

type DB struct {
	conn  *pgxpool.Pool
	uid   uid.NumberID
	clock clock.Clocker
	ins   instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, uid uid.NumberID, clock clock.Clocker, ins instrument.Instrumentation) *DB {
	return &DB{
		conn:  conn,
		uid:   uid,
		clock: clock,
		ins:   ins,
	}
}

// Migrate creates the tables when they do not exist yet.
func (s *DB) Migrate(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "Migrate")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, schema)
	return err
}

// mapError turns pgx.ErrNoRows into goerror.ErrNotFound and unique violations (23505) into goerror.ErrConflict.
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) &&
		!errors.Is(err, entity.ErrAttemptsExhausted) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
