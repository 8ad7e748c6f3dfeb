package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chessbets/backend/internal/game"
	"github.com/chessbets/backend/internal/wager"
)

// CreateMatch opens a match between the authenticated player and an opponent.
// The stake is screened but no funds move until the match is confirmed.
func CreateMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Opponent    string `json:"opponent" binding:"required"`
			Stake       int64  `json:"stake" binding:"required"`
			TimeControl string `json:"time_control" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "opponent, stake and time_control required"})
			return
		}

		opponent := normalizePlayerID(req.Opponent)
		if opponent == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opponent id"})
			return
		}
		if req.Stake <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stake must be positive"})
			return
		}

		caller := sessionPlayer(c)
		match, err := game.Manager.CreateMatch(c.Request.Context(), caller, opponent, req.Stake, req.TimeControl)
		if err != nil {
			log.Printf("[MATCH] Create failed for %s vs %s: %v", caller, opponent, err)
			respondWagerError(c, err)
			return
		}

		c.JSON(http.StatusCreated, match)
	}
}

// GetMatch returns the current match state
func GetMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		match, err := game.Manager.GetMatch(c.Param("token"))
		if err != nil {
			respondWagerError(c, err)
			return
		}
		c.JSON(http.StatusOK, match)
	}
}

// ConfirmMatch escrows both stakes and starts the clocks
func ConfirmMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		match, err := game.Manager.GetMatch(token)
		if err != nil {
			respondWagerError(c, err)
			return
		}
		caller := sessionPlayer(c)
		if caller != match.PlayerOne && caller != match.PlayerTwo {
			respondWagerError(c, wager.ErrNotParticipant)
			return
		}

		if err := game.Manager.ConfirmMatch(c.Request.Context(), token); err != nil {
			log.Printf("[MATCH] Confirm failed for %s: %v", token, err)
			respondWagerError(c, err)
			return
		}

		match, err = game.Manager.GetMatch(token)
		if err != nil {
			respondWagerError(c, err)
			return
		}
		c.JSON(http.StatusOK, match)
	}
}

// SubmitMove records one move by the authenticated player
func SubmitMove() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Move string `json:"move" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "move required"})
			return
		}

		match, err := game.Manager.SubmitMove(c.Request.Context(), c.Param("token"), sessionPlayer(c), req.Move)
		if err != nil {
			respondWagerError(c, err)
			return
		}
		c.JSON(http.StatusOK, match)
	}
}

// SubmitOutcome records a terminal result reported by a participant
func SubmitOutcome() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Result string `json:"result" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "result required"})
			return
		}

		match, err := game.Manager.SubmitOutcome(c.Request.Context(), c.Param("token"), sessionPlayer(c), req.Result)
		if err != nil {
			respondWagerError(c, err)
			return
		}
		c.JSON(http.StatusOK, match)
	}
}

// SettleMatch pays out a finished match and updates both ratings.
// white_owner / black_owner are optional opening royalty recipients.
func SettleMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			WhiteOwner string `json:"white_owner"`
			BlackOwner string `json:"black_owner"`
		}
		// body is optional
		_ = c.ShouldBindJSON(&req)

		settlement, err := game.Manager.SettleMatch(c.Request.Context(), c.Param("token"), req.WhiteOwner, req.BlackOwner)
		if err != nil {
			log.Printf("[SETTLE] Settle failed for %s: %v", c.Param("token"), err)
			respondWagerError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total":          settlement.Total,
			"winner_share":   settlement.WinnerShare,
			"platform_share": settlement.PlatformShare,
			"royalty_each":   settlement.RoyaltyEach,
			"draw":           settlement.Draw,
			"transfers":      settlement.Transfers,
		})
	}
}
