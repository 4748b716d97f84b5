package app

import (
	"context"
	"net/http"
	"time"

	"github.com/shandysiswandi/otclogin/internal/pkg/router"
)

const (
	healthUp   = "up"
	healthDown = "down"
)

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h healthResponse) StatusCode() int {
	if h.Status == healthDown {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func (h healthResponse) Message() string {
	return "service is " + h.Status
}

// health reports the backends this instance connected to at start.
func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: healthUp, Checks: map[string]string{}}
	check := func(name string, err error) {
		if err != nil {
			resp.Status = healthDown
			resp.Checks[name] = healthDown
			return
		}
		resp.Checks[name] = healthUp
	}

	if a.dbConn != nil {
		check("database", a.dbConn.Ping(ctx))
	}
	if a.cacheConn != nil {
		check("redis", a.cacheConn.Ping(ctx).Err())
	}

	return resp, nil
}
