// Command server runs the movie catalog API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/poofware/cinema-api/internal/app"
	"github.com/poofware/cinema-api/internal/config"
	"github.com/poofware/cinema-api/internal/domain"
	"github.com/poofware/cinema-api/internal/health"
	"github.com/poofware/cinema-api/internal/http/handler"
	"github.com/poofware/cinema-api/internal/http/middleware"
	"github.com/poofware/cinema-api/internal/http/router"
	"github.com/poofware/cinema-api/internal/observability"
	"github.com/poofware/cinema-api/internal/repository"
	"github.com/poofware/cinema-api/internal/security"
	"github.com/poofware/cinema-api/internal/service"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:           "cinema-api",
		Short:         "Movie catalog REST API with JWT auth and token revocation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), envFile)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "env file loaded before reading configuration")
	return cmd
}

func run(ctx context.Context, envFile string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logger, loggerProvider, err := observability.NewLogger(ctx, cfg)
	if err != nil {
		return err
	}
	runtime, err := observability.InitRuntime(ctx, cfg, logger, loggerProvider)
	if err != nil {
		return err
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Director{}, &domain.Movie{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not reachable at boot, readiness will report it", "error", err)
	}
	cancelPing()

	jwtMgr, err := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTKey)
	if err != nil {
		return err
	}
	blacklist := service.NewRedisTokenBlacklist(redisClient, "")

	users := repository.NewUserRepository(db)
	directors := repository.NewDirectorRepository(db)
	movies := repository.NewMovieRepository(db)

	authSvc := service.NewAuthService(users, jwtMgr, blacklist, cfg.TokenTTL, cfg.BcryptCost)
	directorSvc := service.NewDirectorService(directors)
	movieSvc := service.NewMovieService(movies, directors)
	userSvc := service.NewUserService(users, cfg.BcryptCost)

	readiness := health.NewProbeRunner(10*time.Second, 2*time.Second,
		health.NewGormChecker("postgres", db),
		health.NewRedisChecker("redis", redisClient),
	)
	bgCtx, stopBackground := context.WithCancel(context.Background())
	go readiness.Run(bgCtx)

	h := router.NewRouter(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc),
		DirectorHandler:  handler.NewDirectorHandler(directorSvc),
		MovieHandler:     handler.NewMovieHandler(movieSvc),
		UserHandler:      handler.NewUserHandler(userSvc),
		JWTManager:       jwtMgr,
		Blacklist:        blacklist,
		CORSOrigins:      cfg.CORSOrigins,
		APIRateLimitRPM:  cfg.APIRateLimitRPM,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
		GlobalRateLimiter: middleware.NewDistributedRateLimiter(
			redisClient, cfg.APIRateLimitRPM, time.Minute, middleware.FailOpen, "api").Middleware(),
		AuthRateLimiter: middleware.NewDistributedRateLimiter(
			redisClient, cfg.AuthRateLimitRPM, time.Minute, middleware.FailClosed, "auth").Middleware(),
		Readiness:      readiness,
		EnableOTelHTTP: cfg.OTELTracesEnabled,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	a := app.New(cfg, logger, server, runtime, db, redisClient, readiness, stopBackground)
	return serve(ctx, a)
}

func serve(ctx context.Context, a *app.App) error {
	a.Logger.Info("server starting", "addr", a.Server.Addr, "profile", a.Config.Profile)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(a)
	})
	return g.Wait()
}

// shutdown drains in-flight requests, stops background tasks, flushes
// telemetry and closes the stores, each phase under its own deadline.
func shutdown(a *app.App) error {
	a.Logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), a.ShutdownTimeout)
	defer cancel()

	var errs []error

	drainCtx, cancelDrain := context.WithTimeout(ctx, a.ShutdownHTTPDrainTimeout)
	if err := a.Server.Shutdown(drainCtx); err != nil {
		errs = append(errs, fmt.Errorf("drain http server: %w", err))
	}
	cancelDrain()

	a.StopBackgroundTasks()

	obsCtx, cancelObs := context.WithTimeout(ctx, a.ShutdownObservabilityTimeout)
	if err := a.Observability.Shutdown(obsCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown observability: %w", err))
	}
	cancelObs()

	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	a.Logger.Info("server stopped")
	return errors.Join(errs...)
}
