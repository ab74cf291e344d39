// @title           Listing Reel Backend API
// @version         1.0.0
// @description     Backend API that turns public real-estate listings into marketing videos. It extracts listing data, runs the render pipeline in the background and streams project status changes.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"listing-reel-backend/docs"
	"listing-reel-backend/internal/config"
	"listing-reel-backend/internal/database"
	"listing-reel-backend/internal/extractor"
	"listing-reel-backend/internal/handlers"
	"listing-reel-backend/internal/pipeline"
	"listing-reel-backend/internal/queue"
	"listing-reel-backend/internal/realtime"
	"listing-reel-backend/internal/render"
	"listing-reel-backend/internal/store"
	"listing-reel-backend/internal/supabase"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = newLogger(cfg)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	hub := realtime.NewHub(log.With().Str("component", "bus").Logger())
	defer hub.Close()

	// Store: Postgres when configured, otherwise in process
	var (
		st     store.Store
		logs   handlers.WebhookLogger
		dbPing handlers.Pinger
	)
	if cfg.DatabaseURL != "" {
		migrator, err := database.NewMigrator(cfg.DatabaseURL, log.With().Str("component", "migrator").Logger())
		if err != nil {
			log.Fatal().Err(err).Msg("initialize migrator")
		}
		if err := migrator.Run(); err != nil {
			log.Fatal().Err(err).Msg("run migrations")
		}
		migrator.Close()
		log.Info().Msg("migrations completed successfully")

		dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		defer dbClient.Close()
		st, logs, dbPing = dbClient, dbClient, dbClient

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("create listener pool")
		}
		defer pool.Close()
		listener := realtime.NewPGListener(pool, hub, log.With().Str("component", "pglistener").Logger())
		g.Go(func() error {
			return listener.Run(gctx)
		})
	} else {
		log.Warn().Msg("DATABASE_URL not set; using in-memory store")
		mem := store.NewMemoryStore(hub)
		st, logs, dbPing = mem, mem, mem
	}

	// Supabase: storage for render output, PostgREST for webhook logs
	var storageClient *supabase.StorageClient
	if cfg.SupabaseURL != "" {
		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("initialize supabase client")
		}
		logs = supabaseClient

		storageClient, err = supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("initialize storage client")
		}
	}

	var redisClient *redis.Client
	var redisOpt *redis.Options
	if cfg.RedisURL != "" {
		redisOpt, err = redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(redisOpt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("ping redis")
		}
	}

	// Renderer
	var renderer render.Renderer
	var resolver handlers.RenderResolver
	if cfg.RenderEngineURL != "" {
		cb := render.NewCallbackRenderer(cfg.RenderEngineURL, cfg.RenderCallbackURL, cfg.RenderEngineKey, cfg.RenderTimeout,
			log.With().Str("component", "renderer").Logger())
		renderer, resolver = cb, cb
	} else {
		var objects render.ObjectStore
		if storageClient != nil {
			objects = storageClient
		}
		renderer = render.NewStubRenderer(cfg.RenderDelay, objects, log.With().Str("component", "renderer").Logger())
	}

	orchestrator := pipeline.NewOrchestrator(st, renderer, log.With().Str("component", "pipeline").Logger())

	// Queue: asynq when Redis is configured, otherwise in process
	var enqueuer queue.Enqueuer
	var shutdownQueue func(context.Context) error
	if redisClient != nil {
		asynqOpt := queue.RedisClientOpt(redisOpt)
		asynqEnq := queue.NewAsynqEnqueuer(asynqOpt, cfg.QueueTaskTimeout, log.With().Str("component", "queue").Logger())
		defer asynqEnq.Close()
		worker := queue.NewWorker(asynqOpt, cfg.WorkerConcurrency, orchestrator, log.With().Str("component", "worker").Logger())
		if err := worker.Start(); err != nil {
			log.Fatal().Err(err).Msg("start asynq worker")
		}
		enqueuer = asynqEnq
		shutdownQueue = func(context.Context) error {
			worker.Shutdown()
			return nil
		}
	} else {
		local := queue.NewLocalQueue(orchestrator, cfg.WorkerConcurrency, cfg.QueueSize, log.With().Str("component", "queue").Logger())
		enqueuer = local
		shutdownQueue = local.Shutdown
	}

	ex := extractor.New(log.With().Str("component", "extractor").Logger(),
		extractor.WithHTTPClient(extractor.NewPublicClient(cfg.FetchTimeout)),
		extractor.WithMaxBytes(cfg.FetchMaxBytes),
	)

	router, err := newRouter(cfg, routerDeps{
		store:    st,
		logs:     logs,
		dbPing:   dbPing,
		redis:    redisClient,
		storage:  storageClient,
		bus:      hub,
		queue:    enqueuer,
		resolver: resolver,
		listings: ex,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Close open event streams first; they never end on their own.
		hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
		if err := shutdownQueue(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("queue shutdown; in-flight runs were cancelled")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsProduction() {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}
