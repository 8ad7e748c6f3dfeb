package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/chessbets/backend/internal/wager"
)

// player ids are wallet-style identifiers: letters, digits, dash, underscore
var validPlayerID = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

// normalizePlayerID validates the external player identifier.
// Returns "" when the id is unusable.
func normalizePlayerID(id string) string {
	if !validPlayerID.MatchString(id) {
		return ""
	}
	return id
}

// respondWagerError maps core errors onto HTTP statuses so handlers stay thin
func respondWagerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, wager.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient wallet balance"})
	case errors.Is(err, wager.ErrStakeCapExceeded),
		errors.Is(err, wager.ErrStakeExceedsLimit),
		errors.Is(err, wager.ErrSuspiciousStakePattern),
		errors.Is(err, wager.ErrInvalidTimeControl),
		errors.Is(err, wager.ErrSameParticipant),
		errors.Is(err, wager.ErrInvalidResult),
		errors.Is(err, wager.ErrInvalidWinner):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, wager.ErrAlreadyConfirmed),
		errors.Is(err, wager.ErrConfirmationExpired),
		errors.Is(err, wager.ErrNotConfirmed),
		errors.Is(err, wager.ErrGameAlreadyOver),
		errors.Is(err, wager.ErrGameNotOver),
		errors.Is(err, wager.ErrNotYourTurn),
		errors.Is(err, wager.ErrAlreadySettled),
		errors.Is(err, wager.ErrAlreadyInitialized),
		errors.Is(err, wager.ErrNoWinnerYet):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, wager.ErrNotParticipant),
		errors.Is(err, wager.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
