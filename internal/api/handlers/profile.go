package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/chessbets/backend/internal/accounts"
	"github.com/chessbets/backend/internal/game"
	"github.com/chessbets/backend/internal/wager"
)

// InitializeProfile creates the rating profile and wallet for the
// authenticated player
func InitializeProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := sessionPlayer(c)
		profile, err := game.Manager.InitializeProfile(c.Request.Context(), playerID)
		if err != nil {
			log.Printf("[PROFILE] Init failed for %s: %v", playerID, err)
			respondWagerError(c, err)
			return
		}
		c.JSON(http.StatusCreated, profile)
	}
}

// GetProfile returns a player's rating profile
func GetProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := normalizePlayerID(c.Param("id"))
		if playerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
			return
		}
		profile, err := game.Manager.GetProfile(playerID)
		if err != nil {
			respondWagerError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// GetStakeLimit reports the stake ceiling currently applied to a player,
// after tier, betting-pattern and account-age adjustments
func GetStakeLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := normalizePlayerID(c.Param("id"))
		if playerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
			return
		}
		profile, err := game.Manager.GetProfile(playerID)
		if err != nil {
			respondWagerError(c, err)
			return
		}

		d := profile.ToDomain()
		c.JSON(http.StatusOK, gin.H{
			"player_id":      playerID,
			"max_stake":      wager.MaxStake(d, time.Now().UTC()),
			"is_provisional": d.Provisional,
			"games":          d.Games,
		})
	}
}

// GetWallet returns the player's wallet and winnings balances
func GetWallet(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := normalizePlayerID(c.Param("id"))
		if playerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
			return
		}

		wallet, err := accounts.GetOrCreateAccount(db, accounts.AccountPlayerWallet, playerID)
		if err != nil {
			respondWagerError(c, err)
			return
		}
		winnings, err := accounts.GetOrCreateAccount(db, accounts.AccountPlayerWinnings, playerID)
		if err != nil {
			respondWagerError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"player_id": playerID,
			"wallet":    wallet.Balance,
			"winnings":  winnings.Balance,
		})
	}
}
