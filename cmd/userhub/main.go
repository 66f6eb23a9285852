package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/userhub/userhub/internal/accounts"
	"github.com/userhub/userhub/internal/app"
	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/observability"
	"github.com/userhub/userhub/internal/permissions"
	"github.com/userhub/userhub/internal/platform/cache"
	"github.com/userhub/userhub/internal/platform/db"
	"github.com/userhub/userhub/internal/rbac"
	"github.com/userhub/userhub/internal/roles"
	"github.com/userhub/userhub/internal/shared"
	"github.com/userhub/userhub/internal/users"
	"github.com/userhub/userhub/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("userhub exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 10, MaxConnIdleTime: 5 * time.Minute})
	if err != nil {
		return err
	}
	defer dbpool.Close()

	if cfg.DBAutoMigrate {
		if err := db.RunMigrations(ctx, dbpool); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	var redisClient *redis.Client
	if cfg.TokenRevocationStore == app.RevocationStoreRedis {
		redisClient, err = cache.New(ctx, cfg.Redis())
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	validator := shared.NewValidator()
	hasher := shared.NewBcryptHasher(cfg.BcryptCost)
	metrics := observability.NewMetrics()

	permissionRepo := permissions.NewRepository(dbpool)
	roleRepo := roles.NewRepository(dbpool)
	userRepo := users.NewRepository(dbpool)

	userService := users.NewService(userRepo, roleRepo, hasher, logger)
	if _, err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	var revocations auth.RevocationStore = auth.NewPostgresRevocationStore(dbpool)
	if redisClient != nil {
		revocations = auth.NewRedisRevocationStore(redisClient)
	}
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSignerKey), cfg.JWTIssuer, cfg.JWTValidDuration, cfg.JWTRefreshableDuration)
	authService := auth.NewService(userRepo, roleRepo, hasher, tokens, revocations, logger).WithObserver(metrics)
	authn := auth.Authenticator{Service: authService, Logger: logger}.Middleware

	inspector := asynq.NewInspector(cfg.Asynq())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthHandler:        auth.NewHandler(logger, authService, validator),
		UsersHandler:       users.NewHandler(logger, userService, validator, authn),
		RolesHandler:       roles.NewHandler(logger, roles.NewService(roleRepo, permissionRepo), validator, authn),
		PermissionsHandler: permissions.NewHandler(logger, permissions.NewService(permissionRepo), validator, authn),
		AccountsHandler:    accounts.NewHandler(logger, accounts.NewService(accounts.NewRepository(dbpool)), validator),
		JobHandler:         jobs.NewHandler(inspector, logger),
		Authn:              authn,
		RBACMiddleware:     rbac.Middleware{Logger: logger},
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
