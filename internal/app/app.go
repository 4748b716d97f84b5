package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
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

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hasher    hash.Salted
	generator otp.Generator
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources, dbConn and cacheConn stay nil when not configured
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	mail      mail.Mail
	messaging messaging.Publisher

	// server
	router     *router.Router
	httpServer *http.Server

	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()

	return app
}
