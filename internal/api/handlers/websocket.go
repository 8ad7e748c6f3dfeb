package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chessbets/backend/internal/game"
	"github.com/chessbets/backend/internal/ws"
)

// HandleMatchWebSocket attaches the caller to the live event stream of a match.
// player_id query is optional; anonymous spectators get a synthetic id.
func HandleMatchWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if _, err := game.Manager.GetMatch(token); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}

		playerID := normalizePlayerID(c.Query("player_id"))
		if playerID == "" {
			playerID = "spectator-" + c.ClientIP() + "-" + token
		}

		if err := ws.ServeMatch(c.Writer, c.Request, token, playerID); err != nil {
			log.Printf("[WS] upgrade failed for match %s: %v", token, err)
		}
	}
}
