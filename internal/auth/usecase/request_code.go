package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/pkg/goerror"
)

type RequestCodeInput struct {
	Email string `validate:"required,address"`
}

type RequestCodeOutput struct {
	Success bool
}

// RequestCode issues a fresh code for the identity, replacing any outstanding
// one, and emails it. The stored record is kept even when delivery fails.
func (s *Usecase) RequestCode(ctx context.Context, in RequestCodeInput) (*RequestCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "RequestCode")
	defer span.End()

	in.Email = entity.NormalizeIdentity(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	code, err := s.generator.Code()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate login code", "error", err)
		return nil, goerror.NewServer(err)
	}

	salt, err := s.generator.Salt()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate login code salt", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	ttl := s.codeTTL()
	rec := entity.Record{
		Identity:  in.Email,
		CodeHash:  string(s.hasher.Hash(code, salt)),
		Salt:      salt,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.store.Put(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo put login code", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.notifier.SendCode(ctx, in.Email, code, ttl); err != nil {
		if errors.Is(err, entity.ErrNotifierUnconfigured) {
			slog.ErrorContext(ctx, "login code not sent, mail transport is not configured", "email", in.Email)
			return nil, goerror.NewBusiness("Email delivery is not configured", goerror.CodeFailedPrecondition)
		}

		slog.ErrorContext(ctx, "failed to send login code", "email", in.Email, "error", err)
		return nil, goerror.NewServerMsg(err, "Failed to send login code")
	}

	if err := s.repoMessaging.PublishCodeRequested(ctx, CodeRequestedEvent{
		Email:     in.Email,
		ExpiresAt: rec.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish code requested", "email", in.Email, "error", err)
	}

	return &RequestCodeOutput{Success: true}, nil
}
