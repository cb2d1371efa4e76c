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

	"github.com/noah-isme/quizzo-go-api/internal/cache"
	"github.com/noah-isme/quizzo-go-api/internal/config"
	"github.com/noah-isme/quizzo-go-api/internal/database"
	"github.com/noah-isme/quizzo-go-api/internal/handler"
	"github.com/noah-isme/quizzo-go-api/internal/middleware"
	"github.com/noah-isme/quizzo-go-api/internal/models"
	"github.com/noah-isme/quizzo-go-api/internal/notify"
	"github.com/noah-isme/quizzo-go-api/internal/repository"
	"github.com/noah-isme/quizzo-go-api/internal/router"
	"github.com/noah-isme/quizzo-go-api/internal/service"
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
		&models.User{},
		&models.Course{},
		&models.Chapter{},
		&models.Quiz{},
		&models.Question{},
		&models.Submission{},
		&models.Subscription{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	store := cache.NewRedisStore(redisClient, cfg.CacheNamespace, cfg.CacheDefaultTTL, logger)

	notifier := notify.NewNopNotifier()
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Drain()
		notifier = notify.NewNATSNotifier(conn, cfg.NATSSubject, logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	accessService := service.NewAccessService(quizRepo, subscriptionRepo, logger)
	quizService := service.NewQuizService(accessService, quizRepo, questionRepo, submissionRepo, subscriptionRepo, store, logger)
	submissionService := service.NewSubmissionService(accessService, quizRepo, questionRepo, submissionRepo, userRepo, store, notifier, validate, logger)
	revaluationService := service.NewRevaluationService(quizRepo, questionRepo, submissionRepo, userRepo, store, logger)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, chapterRepo, quizRepo, store, cache.NewInvalidator(store), logger)
	dashboardService := service.NewDashboardService(userRepo, quizRepo, questionRepo, submissionRepo, subscriptionRepo, store, logger)
	adminContentService := service.NewAdminContentService(quizRepo, questionRepo, submissionRepo, chapterRepo, revaluationService, store, validate, logger)
	adminStatsService := service.NewAdminStatsService(userRepo, chapterRepo, quizRepo, questionRepo, submissionRepo, store, logger)

	quizHandler := handler.NewQuizHandler(quizService, submissionService, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, validate, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	publicHandler := handler.NewPublicHandler(dashboardService, logger)
	adminHandler := handler.NewAdminHandler(adminContentService, adminStatsService, revaluationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		QuizHandler:         quizHandler,
		SubscriptionHandler: subscriptionHandler,
		DashboardHandler:    dashboardHandler,
		PublicHandler:       publicHandler,
		AdminHandler:        adminHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
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
