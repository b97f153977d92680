package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/tours-service/internal/api/http"
	"github.com/spec-kit/tours-service/internal/api/http/handlers"
	"github.com/spec-kit/tours-service/internal/auth"
	"github.com/spec-kit/tours-service/internal/cache"
	"github.com/spec-kit/tours-service/internal/config"
	"github.com/spec-kit/tours-service/internal/events"
	"github.com/spec-kit/tours-service/internal/mailer"
	"github.com/spec-kit/tours-service/internal/observability"
	"github.com/spec-kit/tours-service/internal/persistence"
	"github.com/spec-kit/tours-service/internal/repository"
	"github.com/spec-kit/tours-service/internal/service"
	"github.com/spec-kit/tours-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	tourRepo := repository.NewTourRepository(pool)

	tourCache := cache.TourCache(cache.NoopTourCache{})
	if cfg.Cache.Enabled {
		tourCache = cache.NewRedisTourCache(redis.Client, cfg.Cache.TTL(), logger)
	}

	mail := mailer.NewMailer(cfg.Mail, logger)

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, mail, logger).RegisterHandlers()
	notifications := worker.NewNotificationWorker(dispatcher, logger, 128)
	notifications.Start()

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Mailer:            mail,
		Events:            notifications,
		Logger:            logger,
	})
	userService := service.NewUserService(userRepo)
	tourService := service.NewTourService(tourRepo, tourCache, logger)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	readiness := map[string]handlers.Pinger{"postgres": pg}
	if redis.Client != nil {
		readiness["redis"] = redis
	}

	cookie := auth.CookieOptions{TTL: cfg.Auth.CookieTTL(), Secure: cfg.Auth.SecureCookie}
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness, metrics),
		Auth:           handlers.NewAuthHandler(authService, cookie),
		Users:          handlers.NewUsersHandler(userService),
		Tours:          handlers.NewToursHandler(tourService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notifications.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
