package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"klaso-client/internal/api"
	"klaso-client/internal/config"
	"klaso-client/internal/db"
	"klaso-client/internal/logger"
	"klaso-client/internal/queue"
	"klaso-client/internal/remote"
	"klaso-client/internal/repository"
	"klaso-client/internal/session"
	"klaso-client/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Str("backend", cfg.Backend.BaseURL).Msg("Starting API gateway")

	// Session and backend collaborators
	holder := session.NewHolder()
	client := remote.NewClient(cfg, holder)
	sessionService := session.NewService(remote.NewAuthClient(client), holder)
	repos := repository.NewSet(remote.NewResources(client), holder)

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	if err := db.EnsureSchema(context.Background(), database); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare export ledger")
	}

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize S3 storage
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	handler := api.NewHandler(cfg, api.Dependencies{
		Session:  sessionService,
		Repos:    repos,
		Ledger:   db.NewRepository(database),
		Producer: queue.NewProducer(redisClient, cfg),
		Archive:  s3Storage,
		Checks: map[string]api.Pinger{
			"mysql": api.PingerFunc(database.PingContext),
			"redis": redisClient,
		},
	})

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.RecoveryMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.CORSMiddleware())
	router.MaxMultipartMemory = cfg.Server.MaxUploadSize

	api.SetupRoutes(router, handler)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// No write timeout: snapshot streams stay open.
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
