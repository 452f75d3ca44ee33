package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobtrack/internal/app"
	"jobtrack/internal/config"
	"jobtrack/internal/lib/handlers/slogpretty"
)

const (
	envLocal = "local"
	envProd  = "prod"

	shutdownTimeout = 10 * time.Second
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yaml"
	}

	cfg := config.LoadConfig(configPath)
	logger := setupLogger(cfg.Env)
	logger.Info("starting jobtrack server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	application := app.New(ctx, logger, cfg)
	cancel()

	go application.HTTPSrv.MustRun()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	application.HTTPSrv.Stop(shutdownCtx)
	application.Close(shutdownCtx)

	logger.Info("shutting down jobtrack server")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		panic("unknown environment: " + env)
	}
	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}
	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
