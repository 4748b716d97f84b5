package router

import (
	"net/http"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otclogin/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed in app.maintenance.endpoints.
func middlewareMaintenance(cfg config.Config) Middleware {
	var endpoints map[string]struct{}
	if cfg != nil {
		endpoints = lo.SliceToMap(cfg.GetArray("app.maintenance.endpoints"), func(e string) (string, struct{}) {
			return e, struct{}{}
		})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, blocked := endpoints[matchedRoutePath(r)]; blocked {
				writeJSON(w, errorResponse{Message: "service is under maintenance", Kind: "ERROR_CODE_UNAVAILABLE"}, http.StatusServiceUnavailable)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
