package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otclogin/internal/auth"
)

func (a *App) initModules() {
	if _, err := auth.New(auth.Dependency{
		Ctx:        a.ctx,
		Router:     a.router,
		Mail:       a.mail,
		Messaging:  a.messaging,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		Clock:      a.clock,
		Hasher:     a.hasher,
		Generator:  a.generator,
		Validator:  a.validator,
		JWT:        a.jwt,
		Goroutine:  a.goroutine,
		DBConn:     a.dbConn,
		CacheConn:  a.cacheConn,
	}); err != nil {
		slog.Error("failed to init module auth", "error", err)
		os.Exit(1)
	}
}
