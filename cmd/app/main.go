package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RyanGano/skull-king/internal/config"
	"github.com/RyanGano/skull-king/internal/db"
	httpServer "github.com/RyanGano/skull-king/internal/http"
	"github.com/RyanGano/skull-king/internal/http/handlers"
	"github.com/RyanGano/skull-king/internal/logger"
	"github.com/RyanGano/skull-king/internal/repository"
	"github.com/RyanGano/skull-king/internal/service"

	"github.com/gin-gonic/gin"
)

// Version is set at build time
var Version = "dev"

func main() {
	cfg := config.Load()

	logger.Init(cfg.LogLevel, cfg.LogFormat == "json")
	log := logger.Get()

	// Pick the game store: Postgres when configured, otherwise the
	// in-memory store (the original service runs the same way).
	var store repository.Store
	if cfg.DatabaseURL != "" {
		pool := db.Connect(cfg.DatabaseURL)
		defer pool.Close()

		repo := repository.NewGameRepository(pool)
		if err := repo.Migrate(context.Background()); err != nil {
			logger.Fatal("migration failed", "error", err)
		}
		store = repo
		log.Info("using postgres game store")
	} else {
		store = repository.NewMemoryStore()
		log.Warn("DATABASE_URL not set - games live in memory only")
	}

	var cache service.HashCache
	if cfg.RedisAddr != "" {
		cache = repository.NewHashCache(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		log.Info("fingerprint cache enabled", "addr", cfg.RedisAddr)
	}

	games := service.NewGameService(store, cache)
	tokens := service.NewTokenIssuer(cfg.TokenSecret)
	h := handlers.NewHandler(games, tokens)

	r := gin.Default()

	// CORS so the scoreboard app can talk to us from its own origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.CORSOrigin == "*" || origin == cfg.CORSOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
}
