// Package server initializes and runs the application server: it loads
// configuration, connects to PostgreSQL, applies schema migrations, builds
// the services and serves the HTTP API until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/pradeep-dev/papertrail/internal/logging"
	"github.com/pradeep-dev/papertrail/internal/server/config"
	"github.com/pradeep-dev/papertrail/internal/server/httpapi"
	"github.com/pradeep-dev/papertrail/internal/server/repositories/repomanager"
	"github.com/pradeep-dev/papertrail/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context) (*App, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	logger := logging.NewLogger(os.Stdout, logging.ParseLevel(cfg.App.LogLevel), cfg.App.Pretty)

	db, err := openDB(ctx, &cfg, logger)
	if err != nil {
		return nil, err
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	noteService := services.NewNoteService(db, manager)
	userService := services.NewUserService(db, manager, &cfg)
	imageService := services.NewImageService(&cfg)

	srv := httpapi.NewServer(cfg.HTTP.Addr, logger, userService, noteService, imageService, cfg.Auth.SecretKey)

	return &App{config: &cfg, logger: logger, db: db, server: srv}, nil
}

// openDB opens the connection pool and pings it with retries so the server
// survives a database that is still starting up.
func openDB(ctx context.Context, cfg *config.Config, logger logging.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(cfg.Database.PingRetryAttempts),
		retry.Delay(cfg.Database.PingRetryDelay),
		retry.OnRetry(func(attempt uint, err error) {
			logger.Warn(ctx, "failed ping to database", "attempt", attempt, "error", err)
		}),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Run serves until ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")
	defer app.db.Close()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return app.server.Run(ctx) })

	return eg.Wait()
}
