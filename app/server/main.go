package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/halcyonchat/halcyon/config"
	"github.com/halcyonchat/halcyon/internal/api/handlers"
	"github.com/halcyonchat/halcyon/internal/api/middleware"
	"github.com/halcyonchat/halcyon/internal/api/routes"
	"github.com/halcyonchat/halcyon/internal/cache"
	"github.com/halcyonchat/halcyon/internal/logger"
	"github.com/halcyonchat/halcyon/internal/providers/llm"
	pgrepo "github.com/halcyonchat/halcyon/internal/repositories/postgres"
	"github.com/halcyonchat/halcyon/internal/services"
	"github.com/halcyonchat/halcyon/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	ctx := context.Background()

	// PostgreSQL owns all durable state
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.MigratePostgres(); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	log.Info("PostgreSQL connected")

	// Redis backs the conversation read cache; the app runs without it
	var readCache cache.Cache
	if err := config.InitRedis(); err != nil {
		log.Warnf("Redis unavailable, running without cache: %v", err)
	} else {
		readCache = cache.NewRedisCache(config.RedisClient)
		log.Info("Redis connected")
	}

	// Completion provider
	var provider llm.Provider
	var err error
	switch os.Getenv("LLM_PROVIDER") {
	case "vertex":
		provider, err = llm.NewVertexGemini(ctx,
			os.Getenv("GOOGLE_CLOUD_PROJECT"),
			os.Getenv("VERTEX_LOCATION"),
			os.Getenv("VERTEX_MODEL"))
		if err != nil {
			log.Fatalf("Vertex init error: %v", err)
		}
	default:
		provider = llm.NewOpenRouter(os.Getenv("OPENROUTER_API_KEY"), os.Getenv("OPENROUTER_BASE_URL"))
	}
	defer provider.Close()

	// Avatar storage
	var uploader storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcs, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer gcs.Close()
		uploader = gcs
	} else {
		log.Warn("GCS_BUCKET not set, avatar upload disabled")
	}

	// Wiring
	userRepo := pgrepo.NewUserRepo(config.PostgresDB)
	convRepo := pgrepo.NewConversationRepo(config.PostgresDB)
	msgRepo := pgrepo.NewMessageRepo(config.PostgresDB)

	userSvc := services.NewUserService(userRepo, convRepo, msgRepo)
	convSvc := services.NewConversationService(convRepo, readCache)
	msgSvc := services.NewMessageService(msgRepo, convRepo, readCache)
	chatSvc := services.NewChatService(provider)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:         handlers.NewAuthHandler(userSvc),
		Conversation: handlers.NewConversationHandler(convSvc),
		Message:      handlers.NewMessageHandler(msgSvc),
		Chat:         handlers.NewChatHandler(chatSvc, log),
		Profile:      handlers.NewProfileHandler(userSvc, uploader),
		SessionAuth:  middleware.SessionAuth(userSvc, log),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
