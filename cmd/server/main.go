package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/chessbets/backend/internal/admin"
	"github.com/chessbets/backend/internal/api"
	"github.com/chessbets/backend/internal/config"
	"github.com/chessbets/backend/internal/database"
	"github.com/chessbets/backend/internal/game"
	"github.com/chessbets/backend/internal/migrations"
	"github.com/chessbets/backend/internal/redis"
	"github.com/chessbets/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Apply DB-backed config overrides on top of the environment
	if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
		log.Printf("[CONFIG] No runtime config applied: %v", err)
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// Initialize Match Manager with Redis and config
	game.InitializeManager(db, rdb, cfg)

	// Wire Redis and start match event subscriber in WS layer
	ws.SetRedisClient(rdb)
	ws.StartMatchEventSubscriber(context.Background())

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Initialize API handlers
	api.SetupRoutes(router, db, rdb, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting ChessBets server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
