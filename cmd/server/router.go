package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"listing-reel-backend/internal/config"
	"listing-reel-backend/internal/handlers"
	"listing-reel-backend/internal/middleware"
	"listing-reel-backend/internal/queue"
	"listing-reel-backend/internal/store"
	"listing-reel-backend/internal/supabase"
)

const sseKeepAlive = 25 * time.Second

type routerDeps struct {
	store    store.Store
	logs     handlers.WebhookLogger
	dbPing   handlers.Pinger
	redis    *redis.Client
	storage  *supabase.StorageClient
	bus      handlers.Subscriber
	queue    queue.Enqueuer
	resolver handlers.RenderResolver
	listings handlers.ListingExtractor
}

func newRouter(cfg *config.Config, deps routerDeps, log zerolog.Logger) (*gin.Engine, error) {
	limitStore, err := middleware.NewRateLimitStore(deps.redis)
	if err != nil {
		return nil, err
	}
	analyzeLimit, err := middleware.NewIPRateLimiter(cfg.AnalyzeRateLimit, limitStore)
	if err != nil {
		return nil, err
	}

	// Interfaces stay nil when storage is not configured.
	var (
		projectFiles handlers.ProjectFiles
		objects      handlers.ObjectReader
	)
	if deps.storage != nil {
		projectFiles, objects = deps.storage, deps.storage
	}

	listingsHandler := handlers.NewListingsHandler(deps.listings, log.With().Str("handler", "listings").Logger())
	projectsHandler := handlers.NewProjectsHandler(deps.store, projectFiles, log.With().Str("handler", "projects").Logger())
	statusHandler := handlers.NewStatusHandler(deps.store)
	filesHandler := handlers.NewFilesHandler(deps.store, objects)
	videosHandler := handlers.NewVideosHandler(deps.store, deps.queue, log.With().Str("handler", "videos").Logger())
	statsHandler := handlers.NewStatsHandler(deps.store)
	eventsHandler := handlers.NewEventsHandler(deps.store, deps.bus, sseKeepAlive, log.With().Str("handler", "events").Logger())
	webhookHandler := handlers.NewWebhookHandler(cfg.WebhookToken, deps.logs, deps.resolver, log.With().Str("handler", "webhooks").Logger())
	healthHandler := handlers.NewHealthHandler(deps.dbPing, deps.redis)

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log.With().Str("component", "http").Logger()))
	router.Use(middleware.Prometheus())
	router.Use(middleware.Secure(middleware.SecureOptions(!cfg.IsProduction())))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check and metrics (no auth)
	router.GET("/health", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Webhook (no auth, uses shared token)
	router.POST("/api/v1/webhooks/:provider", webhookHandler.HandleWebhook)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/listings/analyze", analyzeLimit, listingsHandler.Analyze)
	api.POST("/videos/generate", videosHandler.Generate)

	// Project routes
	api.POST("/projects", projectsHandler.CreateProject)
	api.GET("/projects", projectsHandler.ListProjects)
	api.GET("/projects/:project_id", projectsHandler.GetProject)
	api.DELETE("/projects/:project_id", projectsHandler.DeleteProject)

	// Status, assets and render output
	api.GET("/projects/:project_id/status", statusHandler.GetStatus)
	api.GET("/projects/:project_id/assets", statusHandler.GetAssets)
	api.GET("/projects/:project_id/render", filesHandler.GetRender)

	// Change streams
	api.GET("/projects/:project_id/events", eventsHandler.ProjectEvents)
	api.GET("/events", eventsHandler.UserEvents)

	api.GET("/stats", statsHandler.GetStats)

	return router, nil
}
