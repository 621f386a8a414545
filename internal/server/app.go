// Package server wires configuration, storage, services and the HTTP API
// together and runs them until the process is asked to stop.
package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/dbsauth/internal/logging"
	"github.com/dmitrijs2005/dbsauth/internal/server/auth"
	"github.com/dmitrijs2005/dbsauth/internal/server/config"
	"github.com/dmitrijs2005/dbsauth/internal/server/httpserver"
	"github.com/dmitrijs2005/dbsauth/internal/server/metrics"
	"github.com/dmitrijs2005/dbsauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dbsauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/dbsauth/internal/server/services"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

const (
	dbPingRetries = 5
	dbPingBackoff = 500 * time.Millisecond
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *services.UserService
	metrics     *metrics.Metrics
	pool        *pgxpool.Pool
}

// NewLogger returns the process logger: JSON in production, text otherwise.
func NewLogger(c *config.Config) logging.Logger {
	format := "text"
	if c.IsProduction() {
		format = "json"
	}
	return logging.NewLogger(format, os.Stdout, slog.LevelInfo)
}

// NewApp validates c, opens storage and builds the services. An empty DSN
// selects the in-memory store.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	app := &App{config: c, logger: logger, metrics: metrics.New()}

	var repo users.Repository
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "No database configured, using in-memory user store")
		repo = users.NewMemoryRepository()
	} else {
		pool, err := connectPostgres(ctx, c.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		app.pool = pool

		rm := repomanager.NewPostgresRepositoryManager()
		db := stdlib.OpenDBFromPool(pool)
		defer db.Close()
		if err := rm.RunMigrations(ctx, db); err != nil {
			pool.Close()
			return nil, oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
		}
		repo = rm.Users(pool)
	}

	tokens, err := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	if err != nil {
		app.Close()
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	app.userService = services.NewUserService(repo, auth.NewBcryptHasher(), tokens, logger)
	return app, nil
}

// connectPostgres opens a pool and waits, with exponential backoff, until
// the database answers a ping.
func connectPostgres(ctx context.Context, dsn string, logger logging.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	backoff := retry.WithMaxRetries(dbPingRetries, retry.NewExponential(dbPingBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			logger.Warn(ctx, "Database not ready, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping database").Wrap(err)
	}

	return pool, nil
}

// Close releases the database pool, if any.
func (app *App) Close() {
	if app.pool != nil {
		app.pool.Close()
	}
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := httpserver.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.userService, app.metrics, httpserver.Options{
		AllowedOrigins: app.config.AllowedOrigins,
		Production:     app.config.IsProduction(),
		RefreshTTL:     app.config.RefreshTokenValidityDuration,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives. It
// returns the first server error, if any.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return runErr
}
