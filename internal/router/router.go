package router

import (
	"log"

	"github.com/journeymate/backend/internal/auth"
	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/events"
	"github.com/journeymate/backend/internal/handlers"
	"github.com/journeymate/backend/internal/middleware"
	"github.com/journeymate/backend/internal/repositories"
	"github.com/journeymate/backend/internal/services"
	"github.com/journeymate/backend/pkg/config"
	"github.com/journeymate/backend/pkg/filestore"
	"github.com/journeymate/backend/pkg/validators"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from. Mongo, Redis and Firebase are optional.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Mongo    *mongo.Database
	Redis    *redis.Client
	Firebase handlers.FirebaseVerifier
	Files    *filestore.Store
	Events   *events.Recorder
}

// New builds a ready to serve echo instance.
func New(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler

	config.SetupMiddleware(e, deps.Config)
	SetupRoutes(e, deps)
	return e
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) {
	cfg := deps.Config

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck(deps.DB))

	// --- Services ---
	store := repositories.NewStore(deps.DB)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiration)

	userService := services.NewUserService(store, deps.Files, deps.Events, cfg.BcryptCost)
	tripService := services.NewTripService(store, deps.Files, deps.Events)
	joinRequestService := services.NewJoinRequestService(store, deps.Events)
	feedbackService := services.NewFeedbackService(store, deps.Events)
	savedPostService := services.NewSavedPostService(store)
	messageService := services.NewMessageService(store, deps.Events)
	notificationService := services.NewNotificationService(store)

	api := e.Group("/api")
	// The limiter runs after jwt on protected groups so buckets are keyed per caller.
	limit := middleware.NewTokenBucket(cfg.RateLimit, deps.Redis)

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(userService, issuer, deps.Firebase)
	authHandler.RegisterAuthRoutes(api.Group("/auth", limit))
	if deps.Firebase == nil {
		log.Println("Firebase not configured, firebase-login disabled.")
	}
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	jwt := middleware.JWTAuth(issuer, store.Users)

	handlers.NewUserHandler(userService).RegisterUserRoutes(api.Group("/users", jwt, limit))
	handlers.NewTripHandler(tripService).RegisterTripRoutes(api.Group("/trips", jwt, limit))
	handlers.NewJoinRequestHandler(joinRequestService).RegisterJoinRequestRoutes(api.Group("/join-requests", jwt, limit))
	handlers.NewFeedbackHandler(feedbackService).RegisterFeedbackRoutes(api.Group("/trip-feedback", jwt, limit))
	handlers.NewSavedPostHandler(savedPostService).RegisterSavedPostRoutes(api.Group("/saved-posts", jwt, limit))
	handlers.NewMessageHandler(messageService).RegisterMessageRoutes(api.Group("/messages", jwt, limit))
	handlers.NewNotificationHandler(notificationService).RegisterNotificationRoutes(api.Group("/notifications", jwt, limit))
	log.Println("Protected routes configured.")

	if deps.Mongo != nil {
		admin := api.Group("/admin", jwt, middleware.RequireRole(authz.RoleAdmin), limit)
		activities := repositories.NewMongoActivityRepository(deps.Mongo)
		handlers.NewActivityHandler(activities).RegisterActivityRoutes(admin)
		log.Println("Admin activity routes configured.")
	}

	log.Println("All routes configured.")
}
