// Package app initializes and runs the authentication server. It wires the
// storage backends, runs schema migrations, starts the HTTP endpoint and the
// token sweeper, and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkpost/backend/internal/auth"
	"github.com/inkpost/backend/internal/config"
	"github.com/inkpost/backend/internal/httpapi"
	"github.com/inkpost/backend/internal/logging"
	"github.com/inkpost/backend/internal/repositories"
	"github.com/inkpost/backend/internal/repositories/blacklist"
	"github.com/inkpost/backend/internal/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager *repositories.Manager
	auth    *services.AuthService
	sweeper *services.Sweeper
	handler http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	manager, err := repositories.NewManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := manager.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var denyList blacklist.Repository
	switch cfg.BlacklistBackend {
	case config.BlacklistBackendRedis:
		denyList = blacklist.NewRedisRepository(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	default:
		denyList = manager.Blacklist()
	}

	codec, err := auth.NewCodec(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		cfg.TokenIssuer,
	)
	if err != nil {
		return nil, fmt.Errorf("token codec error: %w", err)
	}

	authService := services.NewAuthService(
		manager.Users(),
		manager.RefreshTokens(),
		denyList,
		codec,
		auth.NewPasswordHasher(cfg.BcryptCost),
		logger,
	)

	return &App{
		config:  cfg,
		logger:  logger,
		manager: manager,
		auth:    authService,
		sweeper: services.NewSweeper(authService, cfg.CleanupInterval, logger),
		handler: httpapi.NewRouter(httpapi.NewHandler(authService, logger), cfg.AllowedOrigins),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{Addr: app.config.HTTPAddr, Handler: app.handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")
	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "app stopped")
}
