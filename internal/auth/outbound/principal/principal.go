// Package principal maps an email to a durable principal and mints the
// session token bound to it.
package principal

import (
	"context"

	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otclogin/internal/pkg/jwt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type repository interface {
	GetOrCreatePrincipal(ctx context.Context, email string) (*entity.Principal, bool, error)
}

type Principal struct {
	repo repository
	jwt  jwt.JWT
	ins  instrument.Instrumentation
}

func New(repo repository, jwt jwt.JWT, ins instrument.Instrumentation) *Principal {
	return &Principal{repo: repo, jwt: jwt, ins: ins}
}

func (p *Principal) GetOrCreatePrincipal(ctx context.Context, email string) (*entity.Principal, bool, error) {
	ctx, span := p.ins.Tracer("auth.outbound.principal").Start(ctx, "GetOrCreatePrincipal")
	defer span.End()

	pr, created, err := p.repo.GetOrCreatePrincipal(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}

	span.SetAttributes(attribute.Bool("principal.created", created))
	return pr, created, nil
}

func (p *Principal) MintSessionToken(ctx context.Context, pr entity.Principal) (string, error) {
	_, span := p.ins.Tracer("auth.outbound.principal").Start(ctx, "MintSessionToken")
	defer span.End()

	token, err := p.jwt.Generate(pr.ID, pr.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return token, nil
}
