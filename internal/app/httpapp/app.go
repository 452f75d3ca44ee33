package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// App owns the HTTP listener lifecycle.
type App struct {
	logger     *slog.Logger
	httpServer *http.Server
	port       int
}

func New(logger *slog.Logger, handler http.Handler, port int, timeout time.Duration) *App {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		IdleTimeout:  4 * timeout,
	}
	return &App{
		logger:     logger,
		httpServer: srv,
		port:       port,
	}
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	const op = "httpapp.Run"

	log := a.logger.With(
		slog.String("op", op),
		slog.Int("port", a.port),
	)

	log.Info("HTTP server is running", slog.String("address", a.httpServer.Addr))

	err := a.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Stop drains in-flight requests until ctx expires.
func (a *App) Stop(ctx context.Context) {
	const op = "httpapp.Stop"
	log := a.logger.With(slog.String("op", op))
	log.Info("stopping HTTP server", slog.Int("port", a.port))

	if err := a.httpServer.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}
