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
	"github.com/rs/zerolog"

	"github.com/noah-isme/lingua-go-api/internal/config"
	"github.com/noah-isme/lingua-go-api/internal/database"
	"github.com/noah-isme/lingua-go-api/internal/handler"
	"github.com/noah-isme/lingua-go-api/internal/middleware"
	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/repository"
	"github.com/noah-isme/lingua-go-api/internal/router"
	"github.com/noah-isme/lingua-go-api/internal/service"
	"github.com/noah-isme/lingua-go-api/pkg/ai"
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

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Rubric{},
		&models.Activity{},
		&models.Submission{},
		&models.Evaluation{},
		&models.Mistake{},
		&models.Feedback{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	gateway, err := ai.NewOpenAIGateway(ai.OpenAIConfig{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: float32(cfg.OpenAITemperature),
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("failed to create ai gateway: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionRepo := repository.NewSubmissionRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	mistakeRepo := repository.NewMistakeRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, logger)
	scoringService := service.NewScoringService(evaluationRepo, gateway, logger, service.ScoringConfig{ModelName: cfg.OpenAIModel})
	mistakeService := service.NewMistakeService(mistakeRepo, submissionRepo, evaluationRepo, gateway, redisClient, logger, service.MistakeConfig{
		ChallengeWindow:   cfg.ChallengeWindow,
		ChallengeCacheTTL: cfg.ChallengeCacheTTL,
	})
	feedbackService := service.NewFeedbackService(feedbackRepo, gateway, notificationService, logger)
	evaluationService := service.NewEvaluationService(submissionRepo, evaluationRepo, mistakeRepo, scoringService, mistakeService, feedbackService, notificationService, logger)
	authoringService := service.NewAuthoringService(gateway, logger)

	evaluationHandler := handler.NewEvaluationHandler(evaluationService, validate, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)
	studentHandler := handler.NewStudentHandler(mistakeService, notificationService, logger)
	authoringHandler := handler.NewAuthoringHandler(authoringService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: evaluationHandler,
		FeedbackHandler:   feedbackHandler,
		StudentHandler:    studentHandler,
		AuthoringHandler:  authoringHandler,
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
