package router

import (
	"fmt"

	"github.com/anonto42/memories/backend/internal/cache"
	"github.com/anonto42/memories/backend/internal/events"
	"github.com/anonto42/memories/backend/internal/handlers"
	"github.com/anonto42/memories/backend/internal/middleware"
	"github.com/anonto42/memories/backend/internal/models"
	"github.com/anonto42/memories/backend/internal/ratelimit"
	"github.com/anonto42/memories/backend/internal/repositories"
	"github.com/anonto42/memories/backend/internal/services"
	"github.com/anonto42/memories/backend/internal/storage"
	"github.com/anonto42/memories/backend/pkg/config"
	"github.com/anonto42/memories/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Dependencies are the connections the routes are built over. Mongo, Redis
// and Nats may be nil when the configuration does not use them.
type Dependencies struct {
	Config   *config.Config
	Postgres *gorm.DB
	Mongo    *mongo.Client
	Firebase *firebase.App
	Redis    *redis.Client
	Nats     *nats.Conn
	Logger   zerolog.Logger
}

// Migrate runs the PostgreSQL auto-migrations
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.UserTag{}); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	return nil
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	log := deps.Logger
	cfg := deps.Config

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	tagRepo := repositories.NewPostgresUserTagRepository(deps.Postgres)
	postRepo, err := newPostRepository(deps)
	if err != nil {
		return err
	}
	store, err := newObjectStore(deps)
	if err != nil {
		return err
	}
	log.Info().Str("doc_store", cfg.DocStore).Str("object_store", cfg.ObjectStore).Msg("Storage configured.")

	var timelines cache.TimelineCache = cache.NopTimelineCache{}
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.SignInAttempts, cfg.SignInWindow)
	if deps.Redis != nil {
		timelines = cache.NewRedisTimelineCache(deps.Redis, cfg.TimelineCacheTTL)
		limiter = ratelimit.NewRedisLimiter(deps.Redis, cfg.SignInAttempts, cfg.SignInWindow)
		log.Info().Msg("Redis timeline cache and sign-in limiter configured.")
	}
	var publisher events.Publisher = events.NopPublisher{}
	if deps.Nats != nil {
		publisher = events.NewNatsPublisher(deps.Nats)
		log.Info().Msg("NATS post events configured.")
	}

	// --- Services ---
	userService := services.NewUserService(userRepo, log)
	tagService := services.NewTagService(tagRepo)
	postService := services.NewPostService(postRepo, userService, store, timelines, publisher, log)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(deps.Firebase.AuthClient, limiter, userService, log).RegisterAuthRoutes(authGroup)
	log.Info().Msg("Auth routes configured.")

	// --- Protected routes (require a Firebase ID token) ---
	api := e.Group("/api/v1")
	api.Use(middleware.FirebaseAuthMiddleware(deps.Firebase.AuthClient))
	log.Info().Msg("Firebase authentication middleware applied to /api/v1 group.")

	handlers.NewUserHandler(userService).RegisterUserRoutes(api)
	log.Info().Msg("User routes configured.")

	handlers.NewTagHandler(tagService).RegisterTagRoutes(api)
	log.Info().Msg("Tag routes configured.")

	handlers.NewPostHandler(postService).RegisterPostRoutes(api)
	log.Info().Msg("Post routes configured.")

	handlers.NewFeedHandler(postService).RegisterFeedRoutes(api)
	log.Info().Msg("Feed routes configured.")

	log.Info().Msg("All routes configured.")
	return nil
}

func newPostRepository(deps Dependencies) (repositories.PostRepository, error) {
	switch deps.Config.DocStore {
	case "mongo":
		if deps.Mongo == nil {
			return nil, fmt.Errorf("mongo post store selected without a mongo connection")
		}
		return repositories.NewMongoPostRepository(deps.Mongo.Database(deps.Config.MongoDatabase)), nil
	case "firestore":
		if deps.Firebase.Firestore == nil {
			return nil, fmt.Errorf("firestore post store selected without a firestore client")
		}
		return repositories.NewFirestorePostRepository(deps.Firebase.Firestore), nil
	}
	return nil, fmt.Errorf("unsupported doc store: %s", deps.Config.DocStore)
}

func newObjectStore(deps Dependencies) (storage.ObjectStore, error) {
	cfg := deps.Config
	switch cfg.ObjectStore {
	case "minio":
		return storage.NewMinioObjectStore(storage.MinioOptions{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioAccessKey,
			SecretAccessKey: cfg.MinioSecretKey,
			Bucket:          cfg.MinioBucket,
			Region:          cfg.MinioRegion,
			UseSSL:          cfg.MinioUseSSL,
			PublicBaseURL:   cfg.MinioPublicBaseURL,
		})
	case "firebase":
		if deps.Firebase.Bucket == nil {
			return nil, fmt.Errorf("firebase object store selected without a storage bucket")
		}
		return storage.NewFirebaseObjectStore(deps.Firebase.Bucket, deps.Firebase.BucketName), nil
	}
	return nil, fmt.Errorf("unsupported object store: %s", cfg.ObjectStore)
}
