package app

import (
	"context"
	"log/slog"

	"jobtrack/internal/api"
	"jobtrack/internal/app/httpapp"
	"jobtrack/internal/config"
	jwtlib "jobtrack/internal/lib/jwt"
	"jobtrack/internal/services/auth"
	"jobtrack/internal/storage/mongodb"
	"jobtrack/internal/storage/sqlite"
)

type App struct {
	HTTPSrv  *httpapp.App
	Accounts *sqlite.Storage
	Sessions *mongodb.Storage
}

func New(ctx context.Context, logger *slog.Logger, cfg *config.Config) *App {
	accounts, err := sqlite.New(cfg.StoragePath)
	if err != nil {
		panic(err)
	}

	sessions, err := mongodb.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Timeout)
	if err != nil {
		panic(err)
	}

	codec, err := jwtlib.NewCodec(
		cfg.Tokens.Algorithm,
		cfg.Tokens.AccessSecret,
		cfg.Tokens.RefreshSecret,
		cfg.Tokens.AccessTTL,
		cfg.Tokens.RefreshTTL,
	)
	if err != nil {
		panic(err)
	}

	authService := auth.New(logger, accounts, sessions, codec)
	server := api.New(logger, authService, accounts, accounts, accounts, codec)
	httpApp := httpapp.New(logger, server.Handler(), cfg.HTTP.Port, cfg.HTTP.Timeout)

	return &App{
		HTTPSrv:  httpApp,
		Accounts: accounts,
		Sessions: sessions,
	}
}

// Close releases the storage handles after the server has stopped.
func (a *App) Close(ctx context.Context) {
	_ = a.Accounts.Close()
	_ = a.Sessions.Close(ctx)
}
