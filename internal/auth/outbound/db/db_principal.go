package db

import (
	"context"
	"errors"

	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/pkg/goerror"
)

const (
	queryCreatePrincipal = `
INSERT INTO auth_principals (id, email, email_verified, created_at)
VALUES ($1, $2, TRUE, $3)
ON CONFLICT (email) DO NOTHING
RETURNING id, email, email_verified, created_at`

	queryGetPrincipalByEmail = `
SELECT id, email, email_verified, created_at
FROM auth_principals
WHERE email = $1`
)

// GetOrCreatePrincipal inserts a verified principal unless the email already
// has one. A concurrent insert of the same email falls through to the select.
func (s *DB) GetOrCreatePrincipal(ctx context.Context, email string) (_ *entity.Principal, _ bool, err error) {
	ctx, span := s.startSpan(ctx, "GetOrCreatePrincipal")
	defer func() { s.endSpan(span, err) }()

	var p entity.Principal
	err = s.conn.QueryRow(ctx, queryCreatePrincipal, s.uid.Generate(), email, s.clock.Now()).
		Scan(&p.ID, &p.Email, &p.EmailVerified, &p.CreatedAt)
	if err == nil {
		return &p, true, nil
	}
	if err = s.mapError(err); !errors.Is(err, goerror.ErrNotFound) {
		return nil, false, err
	}

	err = s.conn.QueryRow(ctx, queryGetPrincipalByEmail, email).
		Scan(&p.ID, &p.Email, &p.EmailVerified, &p.CreatedAt)
	if err != nil {
		return nil, false, s.mapError(err)
	}

	return &p, false, nil
}
