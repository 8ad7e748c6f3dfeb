package middleware

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/chessbets/backend/internal/config"
)

// CORS returns a CORS middleware configured for the environment
func CORS(cfg *config.Config) gin.HandlerFunc {
	log.Printf("[CORS] Environment: %s, FrontendURL: %s", cfg.Environment, cfg.FrontendURL)

	corsConfig := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"Accept", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		MaxAge: 12 * time.Hour, // Cache preflight responses
	}

	if cfg.Environment == "development" {
		corsConfig.AllowOrigins = []string{
			"http://localhost:5173", // Vite dev server
			"http://127.0.0.1:5173",
		}
		corsConfig.AllowCredentials = true
		corsConfig.AllowAllOrigins = false
	} else {
		// Production: explicit allowed origins with credentials for cookie auth
		allowedOrigins := []string{
			"https://chessbets.io",
			"https://app.chessbets.io",
		}
		if cfg.FrontendURL != "" {
			allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
		}
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowAllOrigins = false
		log.Printf("[CORS] Production allowed origins: %v", allowedOrigins)
	}

	return cors.New(corsConfig)
}
