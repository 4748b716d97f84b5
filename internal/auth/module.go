package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/auth/inbound"
	"github.com/shandysiswandi/otclogin/internal/auth/outbound/cache"
	"github.com/shandysiswandi/otclogin/internal/auth/outbound/db"
	"github.com/shandysiswandi/otclogin/internal/auth/outbound/email"
	"github.com/shandysiswandi/otclogin/internal/auth/outbound/memory"
	"github.com/shandysiswandi/otclogin/internal/auth/outbound/mq"
	"github.com/shandysiswandi/otclogin/internal/auth/outbound/principal"
	"github.com/shandysiswandi/otclogin/internal/auth/usecase"
	"github.com/shandysiswandi/otclogin/internal/pkg/clock"
	"github.com/shandysiswandi/otclogin/internal/pkg/config"
	"github.com/shandysiswandi/otclogin/internal/pkg/goroutine"
	"github.com/shandysiswandi/otclogin/internal/pkg/hash"
	"github.com/shandysiswandi/otclogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otclogin/internal/pkg/jwt"
	"github.com/shandysiswandi/otclogin/internal/pkg/mail"
	"github.com/shandysiswandi/otclogin/internal/pkg/messaging"
	"github.com/shandysiswandi/otclogin/internal/pkg/otp"
	"github.com/shandysiswandi/otclogin/internal/pkg/router"
	"github.com/shandysiswandi/otclogin/internal/pkg/uid"
	"github.com/shandysiswandi/otclogin/internal/pkg/validator"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

var (
	ErrUnknownDriver  = errors.New("auth: unknown driver")
	ErrMissingBackend = errors.New("auth: driver backend is not connected")
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Hasher     hash.Salted                `validate:"required"`
	Generator  otp.Generator              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`

	// DBConn is required by the postgres drivers only.
	DBConn *pgxpool.Pool
	// CacheConn is required by the redis store driver only.
	CacheConn *redis.Client
}

type store interface {
	Put(ctx context.Context, rec entity.Record) error
	Get(ctx context.Context, identity string) (*entity.Record, error)
	IncrementAttempt(ctx context.Context, identity, codeHash string, maxAttempts int, at time.Time) error
	Consume(ctx context.Context, identity, codeHash string) (bool, error)
	Delete(ctx context.Context, identity string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type principalRepo interface {
	GetOrCreatePrincipal(ctx context.Context, email string) (*entity.Principal, bool, error)
}

func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	var dbAuth *db.DB
	if dep.DBConn != nil {
		dbAuth = db.NewDB(dep.DBConn, dep.UID, dep.Clock, dep.Instrument)
		if dep.Config.GetBool("database.auto_migrate") {
			if err := dbAuth.Migrate(dep.Ctx); err != nil {
				return nil, fmt.Errorf("auth: migrate schema: %w", err)
			}
		}
	}

	repoStore, err := newStore(dep, dbAuth)
	if err != nil {
		return nil, err
	}

	repoPrincipal, err := newPrincipalRepo(dep, dbAuth)
	if err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Dependency{
		Store:         repoStore,
		Notifier:      email.New(dep.Mail, dep.Config, dep.Instrument),
		Principal:     principal.New(repoPrincipal, dep.JWT, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Validator:     dep.Validator,
		Hasher:        dep.Hasher,
		Generator:     dep.Generator,
		Clock:         dep.Clock,
		Config:        dep.Config,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	if interval := dep.Config.GetSecond("modules.auth.sweep_interval_seconds"); interval > 0 {
		dep.Goroutine.Every(dep.Ctx, "auth.sweep", interval, func(ctx context.Context) error {
			_, err := uc.Sweep(ctx)
			return err
		})
	}

	return uc, nil
}

func driver(cfg config.Config, key string) string {
	if d := strings.ToLower(strings.TrimSpace(cfg.GetString(key))); d != "" {
		return d
	}
	return DriverMemory
}

func newStore(dep Dependency, dbAuth *db.DB) (store, error) {
	switch d := driver(dep.Config, "modules.auth.store.driver"); d {
	case DriverMemory:
		return memory.NewStore(), nil
	case DriverRedis:
		if dep.CacheConn == nil {
			return nil, fmt.Errorf("%w: %s store needs redis.url", ErrMissingBackend, d)
		}
		retention := dep.Config.GetMinute("modules.auth.store.retention_minutes")
		return cache.NewCache(dep.CacheConn, retention, dep.Instrument), nil
	case DriverPostgres:
		if dbAuth == nil {
			return nil, fmt.Errorf("%w: %s store needs database.url", ErrMissingBackend, d)
		}
		return dbAuth, nil
	default:
		return nil, fmt.Errorf("%w: store %q", ErrUnknownDriver, d)
	}
}

func newPrincipalRepo(dep Dependency, dbAuth *db.DB) (principalRepo, error) {
	switch d := driver(dep.Config, "modules.auth.principal.driver"); d {
	case DriverMemory:
		return memory.NewPrincipals(dep.UID, dep.Clock), nil
	case DriverPostgres:
		if dbAuth == nil {
			return nil, fmt.Errorf("%w: %s principal repository needs database.url", ErrMissingBackend, d)
		}
		return dbAuth, nil
	default:
		return nil, fmt.Errorf("%w: principal %q", ErrUnknownDriver, d)
	}
}
