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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assessment-api/internal/config"
	"github.com/noah-isme/gema-assessment-api/internal/database"
	"github.com/noah-isme/gema-assessment-api/internal/handler"
	"github.com/noah-isme/gema-assessment-api/internal/middleware"
	"github.com/noah-isme/gema-assessment-api/internal/models"
	"github.com/noah-isme/gema-assessment-api/internal/observability"
	"github.com/noah-isme/gema-assessment-api/internal/repository"
	"github.com/noah-isme/gema-assessment-api/internal/router"
	"github.com/noah-isme/gema-assessment-api/internal/service"
	"github.com/noah-isme/gema-assessment-api/pkg/blob"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	shutdownTracer, err := observability.InitTracer(context.Background(), cfg.AppName, cfg.OTelEndpoint)
	if err != nil {
		log.Fatalf("failed to initialise tracing: %v", err)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Program{}, &models.Student{}, &models.Assessment{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, roster cache disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	storage, err := newStorage(cfg, logger)
	if err != nil {
		log.Fatalf("failed to configure blob storage: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	uploadOpts := service.UploadOptions{MaxSizeMB: cfg.UploadMaxSizeMB, Concurrency: cfg.UploadConcurrency}

	programRepo := repository.NewProgramRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	files := service.NewFileResolver(storage, cfg.SignedURLTTL, logger)
	rosterCache := service.NewRosterCache(redisClient, cfg.RosterCacheTTL, logger)

	programService := service.NewProgramService(programRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, programRepo, assessmentRepo, rosterCache, validate, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, programRepo, submissionRepo, storage, files, validate, uploadOpts, logger)
	submissionService := service.NewSubmissionService(assessmentRepo, submissionRepo, studentRepo, storage, files, rosterCache, validate, uploadOpts, logger)
	gradingService := service.NewGradingService(assessmentRepo, submissionRepo, files, rosterCache, validate, logger)
	reportService := service.NewReportService(programRepo, assessmentRepo, studentRepo, submissionRepo, files, cfg.ReportSignedURLTTL, logger)

	submitLimiter := middleware.RateLimit("submissions", cfg.SubmissionRateLimitPerMin, time.Minute)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB*10 + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProgramHandler:    handler.NewProgramHandler(programService, logger),
		StudentHandler:    handler.NewStudentHandler(studentService, logger),
		AssessmentHandler: handler.NewAssessmentHandler(assessmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, submitLimiter, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
		ReportHandler:     handler.NewReportHandler(reportService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, shutdownTracer)
}

func newStorage(cfg config.Config, logger zerolog.Logger) (blob.Storage, error) {
	switch cfg.StorageProvider {
	case config.StorageProviderMinio:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return blob.NewMinio(ctx, blob.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		}, logger)
	case config.StorageProviderCloudinary:
		return blob.NewCloudinary(blob.CloudinaryConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
	default:
		logger.Warn().Msg("no storage provider configured, using placeholder references")
		return blob.NewPlaceholder(logger), nil
	}
}

func waitForShutdown(app *fiber.App, shutdownTracer observability.ShutdownFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	if err := shutdownTracer(ctx); err != nil {
		log.Printf("tracer shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
