package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/pkg/clock"
	"github.com/shandysiswandi/otclogin/internal/pkg/config"
	"github.com/shandysiswandi/otclogin/internal/pkg/hash"
	"github.com/shandysiswandi/otclogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otclogin/internal/pkg/otp"
	"github.com/shandysiswandi/otclogin/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultCodeTTL     = 10 * time.Minute
	defaultMaxAttempts = 5
	defaultRetention   = time.Hour
)

type CodeRequestedEvent struct {
	Email     string
	ExpiresAt time.Time
}

type LoginVerifiedEvent struct {
	PrincipalID  int64
	Email        string
	NewPrincipal bool
	VerifiedAt   time.Time
}

// repoStore keeps at most one record per identity. Get returns
// goerror.ErrNotFound when the identity has no record. IncrementAttempt
// charges the record carrying codeHash; it returns goerror.ErrNotFound when
// that record is gone and entity.ErrAttemptsExhausted once maxAttempts are spent.
type repoStore interface {
	Put(ctx context.Context, rec entity.Record) error
	Get(ctx context.Context, identity string) (*entity.Record, error)
	IncrementAttempt(ctx context.Context, identity, codeHash string, maxAttempts int, at time.Time) error
	// Consume deletes the record only if it still carries codeHash and reports whether it did.
	Consume(ctx context.Context, identity, codeHash string) (bool, error)
	Delete(ctx context.Context, identity string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type notifier interface {
	// SendCode returns entity.ErrNotifierUnconfigured or entity.ErrNotifierFailed on failure.
	SendCode(ctx context.Context, email, code string, ttl time.Duration) error
}

type principalStore interface {
	GetOrCreatePrincipal(ctx context.Context, email string) (*entity.Principal, bool, error)
	MintSessionToken(ctx context.Context, p entity.Principal) (string, error)
}

type repoMessaging interface {
	PublishCodeRequested(ctx context.Context, msg CodeRequestedEvent) error
	PublishLoginVerified(ctx context.Context, msg LoginVerifiedEvent) error
}

type Usecase struct {
	store         repoStore
	notifier      notifier
	principal     principalStore
	repoMessaging repoMessaging
	validator     validator.Validator
	hasher        hash.Salted
	generator     otp.Generator
	clock         clock.Clocker
	cfg           config.Config
	ins           instrument.Instrumentation
	verifyCounter metric.Int64Counter
}

type Dependency struct {
	Store         repoStore
	Notifier      notifier
	Principal     principalStore
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Hasher        hash.Salted
	Generator     otp.Generator
	Clock         clock.Clocker
	Config        config.Config
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		store:         dep.Store,
		notifier:      dep.Notifier,
		principal:     dep.Principal,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		hasher:        dep.Hasher,
		generator:     dep.Generator,
		clock:         dep.Clock,
		cfg:           dep.Config,
		ins:           dep.Instrument,
	}

	counter, err := s.ins.Meter("auth.usecase").Int64Counter("auth.otc.verify",
		metric.WithDescription("Number of login code verifications by outcome"))
	if err != nil {
		slog.Error("failed to create verify outcome counter", "error", err)
	}
	s.verifyCounter = counter

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) recordVerify(ctx context.Context, outcome string) {
	if s.verifyCounter == nil {
		return
	}
	s.verifyCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (s *Usecase) codeTTL() time.Duration {
	if d := s.cfg.GetMinute("modules.auth.code_ttl_minutes"); d > 0 {
		return d
	}
	return defaultCodeTTL
}

func (s *Usecase) maxAttempts() int {
	if n := s.cfg.GetInt("modules.auth.max_attempts"); n > 0 {
		return n
	}
	return defaultMaxAttempts
}

func (s *Usecase) retention() time.Duration {
	if d := s.cfg.GetMinute("modules.auth.store.retention_minutes"); d > 0 {
		return d
	}
	return defaultRetention
}
