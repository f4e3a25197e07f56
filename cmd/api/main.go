package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/iskolarhub/iskolar-api/internal/config"
	"github.com/iskolarhub/iskolar-api/internal/database"
	"github.com/iskolarhub/iskolar-api/internal/handler"
	"github.com/iskolarhub/iskolar-api/internal/middleware"
	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/repository"
	"github.com/iskolarhub/iskolar-api/internal/router"
	"github.com/iskolarhub/iskolar-api/internal/service"
	"github.com/iskolarhub/iskolar-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Scholarship{}, &models.Application{}, &models.Document{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NatsURL != "" {
		natsConn, err = nats.Connect(cfg.NatsURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, status events disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	uploader, err := storage.New(storage.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create storage client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	scholarshipRepo := repository.NewScholarshipRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	reportRepo := repository.NewReportRepository(db)

	statusEvents := service.NewNatsStatusPublisher(natsConn, cfg.StatusEventSubject, logger)

	authService := service.NewAuthService(userRepo, redisClient, validate, cfg.JWTSecret, cfg.TokenTTL, cfg.RefreshTokenTTL, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	scholarshipService := service.NewScholarshipService(scholarshipRepo, validate, logger)
	applicationService := service.NewApplicationService(applicationRepo, scholarshipRepo, validate, statusEvents, logger)
	documentService := service.NewDocumentService(documentRepo, applicationRepo, validate, uploader, logger)
	reportService := service.NewReportService(reportRepo, redisClient, cfg.DashboardCacheTTL, logger)
	seedService := service.NewSeedService(scholarshipRepo, userRepo, applicationRepo, cfg.SeedEnabled, cfg.SeedToken, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	scholarshipHandler := handler.NewScholarshipHandler(scholarshipService, logger)
	applicationHandler := handler.NewApplicationHandler(applicationService, logger)
	documentHandler := handler.NewDocumentHandler(documentService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	seedHandler := handler.NewSeedHandler(seedService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        authHandler,
		UserHandler:        userHandler,
		ScholarshipHandler: scholarshipHandler,
		ApplicationHandler: applicationHandler,
		DocumentHandler:    documentHandler,
		ReportHandler:      reportHandler,
		SeedHandler:        seedHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
		DB:                 db,
		Redis:              redisClient,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
