package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/user/stickers-back/internal/auth"
	"github.com/user/stickers-back/internal/cache"
	"github.com/user/stickers-back/internal/config"
	"github.com/user/stickers-back/internal/database"
	"github.com/user/stickers-back/internal/gates"
	"github.com/user/stickers-back/internal/handlers"
	"github.com/user/stickers-back/internal/logger"
	"github.com/user/stickers-back/internal/middleware"
	"github.com/user/stickers-back/internal/packs"
	"github.com/user/stickers-back/internal/realtime"
	"github.com/user/stickers-back/internal/storage"
)

func main() {
	cfg := config.Load()

	logg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logg.Sync()

	// Database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(context.Background()); err != nil {
		logg.Fatal("failed to run migrations", "error", err)
	}
	logg.Info("database migrations completed")

	// Services
	tokenService := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Repositories
	authRepo := auth.NewRepository(db.Pool)
	packsRepo := packs.NewRepository(db.Pool)

	// S3 Storage
	s3Storage, err := storage.NewS3Storage(storage.Config{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		CDNURL:          cfg.S3CDNURL,
	})
	if err != nil {
		logg.Fatal("failed to create S3 storage", "error", err)
	}
	logg.Info("S3 storage initialized")

	// Redis Cache (optional)
	var redisCache *cache.RedisCache
	if cfg.RedisAddr != "" && cfg.RedisAddr != "disabled" {
		redisCache, err = cache.NewRedisCache(cfg.RedisAddr)
		if err != nil {
			logg.Warn("redis not available, running without cache", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			logg.Info("redis cache initialized")
		}
	} else {
		logg.Info("redis disabled, running without cache")
	}

	// Vote gate (feature-flagged)
	voteGate := gates.NewVoteChecker(gates.Config{
		Enabled: cfg.VoteGateEnabled,
		BaseURL: cfg.VoteGateURL,
		APIKey:  cfg.VoteGateAPIKey,
		AppID:   cfg.VoteGateAppID,
	})

	// Centrifuge realtime node
	rtNode, err := realtime.NewNode(tokenService, logg)
	if err != nil {
		logg.Fatal("failed to create realtime node", "error", err)
	}
	rtNotifier := realtime.NewNotifier(rtNode)

	// Pack service
	packService := packs.NewService(packsRepo, s3Storage, authRepo, voteGate, rtNotifier, logg)

	// Handlers
	packsHandler := handlers.NewPacksHandler(packService, redisCache, logg)

	// Router
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /api/packs", packsHandler.List)
	mux.HandleFunc("GET /api/packs/{key}", packsHandler.GetPack)
	mux.HandleFunc("GET /api/packs/{key}/info", packsHandler.GetPackInfo)
	mux.HandleFunc("GET /api/packs/{key}/stickers", packsHandler.GetStickers)
	mux.HandleFunc("GET /api/packs/{key}/stickers/{name}", packsHandler.GetSticker)

	// Owner routes
	authMiddleware := middleware.Auth(tokenService)
	mux.Handle("POST /api/packs", authMiddleware(http.HandlerFunc(packsHandler.CreatePack)))
	mux.Handle("POST /api/packs/{key}/publish", authMiddleware(http.HandlerFunc(packsHandler.Publish)))
	mux.Handle("POST /api/packs/{key}/stickers", authMiddleware(http.HandlerFunc(packsHandler.AddSticker)))
	mux.Handle("PATCH /api/packs/{key}", authMiddleware(http.HandlerFunc(packsHandler.UpdatePack)))
	mux.Handle("PATCH /api/packs/{key}/stickers/{name}", authMiddleware(http.HandlerFunc(packsHandler.EditSticker)))
	mux.Handle("DELETE /api/packs/{key}", authMiddleware(http.HandlerFunc(packsHandler.DeletePack)))
	mux.Handle("DELETE /api/packs/{key}/stickers/{name}", authMiddleware(http.HandlerFunc(packsHandler.DeleteSticker)))

	// Trusted bot route
	botMiddleware := middleware.Bot(cfg.BotAPIKey)
	mux.Handle("POST /api/packs/{key}/stickers/{name}/uses", botMiddleware(http.HandlerFunc(packsHandler.IncrementUse)))

	// Centrifuge WebSocket endpoint
	mux.Handle("GET /api/ws", rtNode.WebsocketHandler())

	// Apply CORS
	handler := middleware.CORS(mux)

	// Server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logg.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := rtNode.Shutdown(ctx); err != nil {
			logg.Error("centrifuge shutdown error", "error", err)
		}

		if err := server.Shutdown(ctx); err != nil {
			logg.Fatal("server shutdown failed", "error", err)
		}
	}()

	logg.Info("server starting", "port", cfg.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logg.Fatal("server failed", "error", err)
	}

	logg.Info("server stopped")
}
