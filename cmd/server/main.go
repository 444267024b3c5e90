package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiards/internal/api"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/database"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/migrations"
	"github.com/playmatatu/billiards/internal/redis"
	"github.com/playmatatu/billiards/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres and Redis are required in production. In development the
	// server runs in memory when they are unreachable.
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		conn, err := database.Connect(ctx, cfg.DatabaseURL)
		switch {
		case err == nil:
			db = conn
			defer db.Close()
		case cfg.IsProduction():
			log.Fatalf("Failed to connect to database: %v", err)
		default:
			log.Printf("[DB] Database unavailable, round history disabled: %v", err)
		}
	}

	if db != nil && cfg.MigrateOnStart {
		log.Println("[MIGRATE] Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		conn, err := redis.Connect(ctx, cfg.RedisURL)
		switch {
		case err == nil:
			rdb = conn
			defer rdb.Close()
		case cfg.IsProduction():
			log.Fatalf("Failed to connect to Redis: %v", err)
		default:
			log.Printf("[REDIS] Redis unavailable, snapshots and round events disabled: %v", err)
		}
	}

	gm := game.NewSessionManager(ctx, db, rdb, cfg)
	hub := ws.NewHub(gm, cfg.FrameBroadcastEvery)
	gm.SetHooks(hub.OnFrame, hub.OnRoundOver)
	go hub.Run(ctx)

	ws.StartRoundEventSubscriber(ctx, rdb, hub)
	game.StartIdleWorker(ctx, gm, rdb, cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, gm, hub, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting billiards server on port %s (tick=%s)", port, cfg.TickInterval())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	gm.Shutdown()
}
