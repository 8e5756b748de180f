package router

import (
	"fmt"
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-social/backend/internal/chat"
	"github.com/anonto42/nano-social/backend/internal/events"
	"github.com/anonto42/nano-social/backend/internal/handlers"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SetupRoutes migrates the relational schema, wires repositories, services
// and handlers, and returns a cleanup func for the background collaborators.
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, firebaseAuth *auth.Client, logger *zap.Logger) (func(), error) {
	err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Notification{},
		&models.ActiveFriend{},
		&models.Contributor{},
	)
	if err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	mongoDB := db.Mongo.Database(cfg.MongoDatabase)
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	activityRepo := repositories.NewPostgresActivityRepository(db.Postgres)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	storyRepo := repositories.NewMongoStoryRepository(mongoDB)
	commentRepo := repositories.NewMongoCommentRepository(mongoDB)
	messageRepo := repositories.NewMongoMessageRepository(mongoDB)

	// --- Collaborators ---
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaNotificationTopic)
		log.Printf("Publishing notifications to Kafka topic %q.", cfg.KafkaNotificationTopic)
	}
	registry := chat.NewRegistry(db.Redis, logger)

	// --- Services ---
	notifier := services.NewNotifier(notificationRepo, publisher, registry, logger)
	activity := services.NewActivityRecorder(activityRepo, friendshipRepo, logger)
	relationships := services.NewRelationshipService(userRepo, friendshipRepo, notificationRepo, notifier, logger)
	content := services.NewContentService(userRepo, friendshipRepo, postRepo, storyRepo, commentRepo, activity, notifier, logger)
	ranking := services.NewRankingService(userRepo, friendshipRepo, activityRepo, postRepo, storyRepo)
	notifications := services.NewNotificationService(notificationRepo, userRepo)
	chatService := chat.NewService(messageRepo, userRepo, registry, logger)

	// --- Unprotected routes for authentication ---
	var verifier handlers.IDTokenVerifier
	if firebaseAuth != nil {
		verifier = firebaseAuth
	}
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(userRepo, verifier, cfg.JWTSecret, logger).RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes ---
	api := e.Group("/api/v1")
	if cfg.AuthMode == "firebase" && firebaseAuth != nil {
		api.Use(middleware.FirebaseAuthMiddleware(firebaseAuth, userRepo))
		log.Println("Firebase authentication middleware applied to /api/v1 group.")
	} else {
		api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		log.Println("JWT authentication middleware applied to /api/v1 group.")
	}

	handlers.NewUserHandler(userRepo, logger).RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	handlers.NewFriendshipHandler(relationships, ranking, logger).RegisterFriendshipRoutes(api)
	log.Println("Friendship routes configured.")

	handlers.NewPostHandler(content, logger).RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	handlers.NewCommentHandler(content, logger).RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	handlers.NewStoryHandler(content, logger).RegisterStoryRoutes(api)
	log.Println("Story routes configured.")

	handlers.NewNotificationHandler(notifications, logger).RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	handlers.NewChatHandler(chatService, registry, logger).RegisterChatRoutes(api)
	log.Println("Chat routes configured.")

	log.Println("All routes configured.")

	cleanup := func() {
		registry.Close()
		if err := publisher.Close(); err != nil {
			logger.Warn("close event publisher", zap.Error(err))
		}
	}
	return cleanup, nil
}
