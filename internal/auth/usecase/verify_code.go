package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/pkg/goerror"
)

const (
	outcomeSuccess      = "success"
	outcomeInvalidInput = "invalid_input"
	outcomeNotFound     = "not_found"
	outcomeExpired      = "expired"
	outcomeExhausted    = "exhausted"
	outcomeInvalidCode  = "invalid_code"
	outcomeError        = "error"
)

type VerifyCodeInput struct {
	Email string `validate:"required,address"`
	Code  string `validate:"required"`
}

type VerifyCodeOutput struct {
	SessionToken string
	PrincipalID  int64
	NewPrincipal bool
}

// VerifyCode checks the submitted code against the outstanding record.
//
// Expiry is checked before the attempt budget, and both before the hash, so
// an expired or exhausted record is rejected even for the right code. Every
// submission reaching the hash check first reserves an attempt at the store,
// so concurrent guesses can never compare more than maxAttempts times.
func (s *Usecase) VerifyCode(ctx context.Context, in VerifyCodeInput) (_ *VerifyCodeOutput, err error) {
	ctx, span := s.startSpan(ctx, "VerifyCode")
	defer span.End()

	outcome := outcomeError
	defer func() { s.recordVerify(ctx, outcome) }()

	in.Email = entity.NormalizeIdentity(in.Email)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		outcome = outcomeInvalidInput
		return nil, goerror.NewInvalidInput(err)
	}

	if digits := s.generator.Digits(); utf8.RuneCountInString(in.Code) != digits {
		outcome = outcomeInvalidInput
		return nil, goerror.NewInvalidInput(nil, "code", "code must be "+strconv.Itoa(digits)+" characters")
	}

	rec, err := s.store.Get(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		outcome = outcomeNotFound
		return nil, goerror.NewBusiness("No active code, request a new one", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get login code", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	maxAttempts := s.maxAttempts()

	switch rec.State(now, maxAttempts) {
	case entity.StateExpired:
		s.discard(ctx, in.Email, entity.StateExpired)
		outcome = outcomeExpired
		return nil, goerror.NewBusiness("Code has expired, request a new one", goerror.CodeExpired)

	case entity.StateExhausted:
		s.discard(ctx, in.Email, entity.StateExhausted)
		outcome = outcomeExhausted
		return nil, goerror.NewBusiness("Too many attempts, request a new code", goerror.CodeTooManyRequest)
	}

	attemptErr := s.store.IncrementAttempt(ctx, in.Email, rec.CodeHash, maxAttempts, now)
	switch {
	case errors.Is(attemptErr, entity.ErrAttemptsExhausted):
		s.discard(ctx, in.Email, entity.StateExhausted)
		outcome = outcomeExhausted
		return nil, goerror.NewBusiness("Too many attempts, request a new code", goerror.CodeTooManyRequest)

	case errors.Is(attemptErr, goerror.ErrNotFound):
		// Replaced or consumed meanwhile; a matching code then fails at Consume.
		attemptErr = nil

	case attemptErr != nil:
		slog.ErrorContext(ctx, "failed to repo increment login code attempt", "email", in.Email, "error", attemptErr)
	}

	if !s.hasher.Verify(rec.CodeHash, in.Code, rec.Salt) {
		if attemptErr != nil && s.cfg.GetBool("modules.auth.strict_attempt_count") {
			return nil, goerror.NewServer(attemptErr)
		}

		outcome = outcomeInvalidCode
		return nil, goerror.NewBusiness("Invalid code", goerror.CodeForbidden)
	}

	consumed, err := s.store.Consume(ctx, in.Email, rec.CodeHash)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume login code", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !consumed {
		slog.WarnContext(ctx, "login code was replaced or consumed concurrently", "email", in.Email)
		outcome = outcomeNotFound
		return nil, goerror.NewBusiness("No active code, request a new one", goerror.CodeNotFound)
	}

	principal, created, err := s.principal.GetOrCreatePrincipal(ctx, in.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get or create principal", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.principal.MintSessionToken(ctx, *principal)
	if err != nil {
		slog.ErrorContext(ctx, "failed to mint session token", "principal_id", principal.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishLoginVerified(ctx, LoginVerifiedEvent{
		PrincipalID:  principal.ID,
		Email:        principal.Email,
		NewPrincipal: created,
		VerifiedAt:   now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish login verified", "principal_id", principal.ID, "error", err)
	}

	outcome = outcomeSuccess
	return &VerifyCodeOutput{
		SessionToken: token,
		PrincipalID:  principal.ID,
		NewPrincipal: created,
	}, nil
}

// discard deletes a record that can no longer be attempted. Failures are logged only.
func (s *Usecase) discard(ctx context.Context, identity string, state entity.State) {
	if err := s.store.Delete(ctx, identity); err != nil {
		slog.WarnContext(ctx, "failed to repo delete login code", "email", identity, "state", state.String(), "error", err)
	}
}
