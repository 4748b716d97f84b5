package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
)

// Start serves HTTP in the background. The returned channel closes once a
// termination signal arrives or the listener fails, and the caller then runs
// Stop.
func (a *App) Start() <-chan struct{} {
	done := make(chan struct{})
	sigCtx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	go func() {
		<-sigCtx.Done()
		stop()
		close(done)
		slog.Info("shutdown requested")
	}()

	return done
}

// Stop drains in-flight requests, halts the sweeper and then releases
// resources newest first.
func (a *App) Stop(ctx context.Context) {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "http server shutdown incomplete", "error", err)
	}

	if a.cancel != nil {
		a.cancel()
	}

	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background job ended with error", "error", err)
	}

	for _, c := range slices.Backward(a.closers) {
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "name", c.name, "error", err)
			continue
		}
		slog.InfoContext(ctx, "resource closed", "name", c.name)
	}

	slog.InfoContext(ctx, "application stopped")
}
