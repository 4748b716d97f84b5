package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shandysiswandi/otclogin/internal/pkg/goerror"
	"github.com/shandysiswandi/otclogin/internal/pkg/stacktrace"
)

// middlewareRecoverer turns a handler panic into the standard 500 envelope.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			//nolint:errorlint // sentinel compared by identity
			if err, ok := rvr.(error); ok && err == http.ErrAbortHandler {
				panic(rvr)
			}

			stack := debug.Stack()
			attrs := []any{"panic", fmt.Sprint(rvr), "method", r.Method, "path", r.URL.Path}
			if frames := stacktrace.InternalPaths(stack); len(frames) > 0 {
				attrs = append(attrs, "stack", frames)
			} else {
				attrs = append(attrs, "stack", string(stack))
			}
			slog.ErrorContext(r.Context(), "recovered from handler panic", attrs...)

			writeJSON(w, errorResponse{
				Message: "Internal server error",
				Kind:    goerror.CodeInternal.String(),
			}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
