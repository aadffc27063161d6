package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/exam-portal/internal/api/http"
	"github.com/spec-kit/exam-portal/internal/api/http/handlers"
	"github.com/spec-kit/exam-portal/internal/auth"
	"github.com/spec-kit/exam-portal/internal/config"
	"github.com/spec-kit/exam-portal/internal/events"
	"github.com/spec-kit/exam-portal/internal/mailer"
	"github.com/spec-kit/exam-portal/internal/observability"
	"github.com/spec-kit/exam-portal/internal/persistence"
	"github.com/spec-kit/exam-portal/internal/repository"
	"github.com/spec-kit/exam-portal/internal/service"
	"github.com/spec-kit/exam-portal/internal/storage"
	"github.com/spec-kit/exam-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	metrics := observability.NewMetrics()
	validate := validator.New()

	pool := pg.PoolHandle()
	profileRepo := repository.NewProfileRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	store := storage.NewSupabaseStore(cfg.Storage, logger)
	attachmentService := service.NewAttachmentService(store, logger)

	var provider mailer.Provider
	if cfg.Email.BrevoAPIKey != "" {
		provider = mailer.NewBrevoProvider(cfg.Email, logger)
	} else {
		logger.Warn("BREVO_API_KEY not set; emails will be recorded, not sent")
		provider = &mailer.DummyProvider{}
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(
		notificationRepo, provider, dispatcher, logger, metrics, cfg.Email, cfg.Sweep)
	notificationService.RegisterHandlers()

	authService := service.NewAuthService(cfg.Auth, profileRepo)
	profileService := service.NewProfileService(profileRepo, departmentRepo, attachmentService, validate)
	departmentService := service.NewDepartmentService(departmentRepo, redis.Client, logger)
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo:    requestRepo,
		ResponseRepo:   responseRepo,
		DepartmentRepo: departmentRepo,
		ProfileRepo:    profileRepo,
		Attachments:    attachmentService,
		Dispatcher:     dispatcher,
		Validate:       validate,
		Logger:         logger,
	})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), profileRepo)

	sweeper := worker.NewSweeper(notificationService, redis.Client, logger, cfg.Sweep)
	go sweeper.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Departments:    handlers.NewDepartmentsHandler(departmentService),
		Profiles:       handlers.NewProfilesHandler(profileService),
		Requests:       handlers.NewRequestsHandler(requestService),
		AdminRequests:  handlers.NewAdminRequestsHandler(requestService),
		Notifications:  handlers.NewNotificationsHandler(notificationService, notificationRepo),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
