package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/chessbets/backend/internal/api/handlers"
	"github.com/chessbets/backend/internal/config"
	"github.com/chessbets/backend/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORS(cfg))

	// No-cache headers keep development clients from holding stale match state
	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		v1.POST("/auth/session", handlers.CreateSession(cfg))

		// Match endpoints
		match := v1.Group("/match")
		{
			match.GET("/:token", handlers.GetMatch())
			match.GET("/:token/ws", handlers.HandleMatchWebSocket())

			authed := match.Group("", handlers.RequirePlayer(cfg))
			{
				authed.POST("", handlers.CreateMatch())
				authed.POST("/:token/confirm", handlers.ConfirmMatch())
				authed.POST("/:token/move", handlers.SubmitMove())
				authed.POST("/:token/outcome", handlers.SubmitOutcome())
				authed.POST("/:token/settle", handlers.SettleMatch())
			}
		}

		// Player endpoints
		player := v1.Group("/player")
		{
			player.GET("/:id", handlers.GetProfile())
			player.GET("/:id/stake-limit", handlers.GetStakeLimit())
			player.GET("/:id/wallet", handlers.GetWallet(db))
			player.POST("/init", handlers.RequirePlayer(cfg), handlers.InitializeProfile())
		}

		// Admin endpoints (Redis session auth)
		adminGroup := v1.Group("/admin")
		{
			adminGroup.POST("/login", handlers.AdminLogin(db, rdb, cfg))
			adminGroup.POST("/logout", handlers.AdminLogout(rdb))

			protected := adminGroup.Group("", handlers.AdminSessionMiddleware(rdb))
			{
				protected.GET("/accounts", handlers.GetAdminAccounts(db))
				protected.GET("/transactions", handlers.GetAccountTransactions(db))
				protected.GET("/escrow/:token", handlers.GetEscrowLedger(db))
				protected.POST("/credit", handlers.CreditWallet(db))
				protected.PUT("/profile/:id", handlers.ForceProfileUpdate(db, cfg))
				protected.GET("/audit", handlers.GetAuditLogs(db))
				protected.GET("/config", handlers.GetRuntimeConfig(db))
				protected.PUT("/config", handlers.UpdateRuntimeConfig(db, cfg))
			}
		}
	}
}
