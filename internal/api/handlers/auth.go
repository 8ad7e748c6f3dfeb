package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/chessbets/backend/internal/config"
)

// CreateSession issues a signed session token for a player id.
// Identity proof (wallet signature verification) happens upstream at the
// gateway; this service only binds the asserted id into a short-lived JWT.
func CreateSession(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlayerID string `json:"player_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "player_id required"})
			return
		}

		playerID := normalizePlayerID(req.PlayerID)
		if playerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player_id"})
			return
		}

		exp := time.Now().Add(time.Duration(cfg.SessionTimeoutMin) * time.Minute)
		claims := jwt.MapClaims{"player_id": playerID, "exp": exp.Unix()}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      signed,
			"player_id":  playerID,
			"expires_at": exp.UTC(),
		})
	}
}

// RequirePlayer validates the bearer token and stores the player id on the context
func RequirePlayer(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}
		playerID, _ := claims["player_id"].(string)
		if playerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		c.Set("player_id", playerID)
		c.Next()
	}
}

// sessionPlayer returns the authenticated player id set by RequirePlayer
func sessionPlayer(c *gin.Context) string {
	return c.GetString("player_id")
}
