package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/chessbets/backend/internal/admin"
	"github.com/chessbets/backend/internal/config"
	"github.com/chessbets/backend/internal/game"
	"github.com/chessbets/backend/internal/models"
)

const adminCookieName = "cb_admin_session"

// RoleStatsAuthority is required for endpoints that overwrite rating state
const RoleStatsAuthority = "stats_authority"

// AdminLogin verifies admin credentials and issues a Redis-backed session
func AdminLogin(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			AdminID string `json:"admin_id" binding:"required"`
			Token   string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "admin_id and token required"})
			return
		}

		adminAcc, err := admin.ValidateAdminToken(db, req.AdminID, req.Token)
		if err != nil {
			admin.LogAdminAction(db, req.AdminID, c.ClientIP(), "/api/v1/admin/login", "login", map[string]interface{}{"admin_id": req.AdminID}, false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		b := make([]byte, 24)
		if _, err := rand.Read(b); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		session := hex.EncodeToString(b)

		sessionData, _ := json.Marshal(map[string]interface{}{
			"admin_id": adminAcc.AdminID,
			"roles":    adminAcc.Roles,
		})
		ttl := time.Duration(cfg.SessionTimeoutMin) * time.Minute
		if err := rdb.Set(context.Background(), fmt.Sprintf("admin_session:%s", session), sessionData, ttl).Err(); err != nil {
			log.Printf("[ADMIN] Failed to store session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		admin.LogAdminAction(db, adminAcc.AdminID, c.ClientIP(), "/api/v1/admin/login", "login", map[string]interface{}{"admin_id": adminAcc.AdminID}, true)
		c.SetCookie(adminCookieName, session, int(ttl.Seconds()), "/api/v1/admin", "", cfg.Environment == "production", true)
		c.JSON(http.StatusOK, gin.H{"ok": true, "admin_id": adminAcc.AdminID, "roles": adminAcc.Roles})
	}
}

// AdminLogout drops the Redis session and clears the cookie
func AdminLogout(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(adminCookieName); err == nil && token != "" {
			rdb.Del(context.Background(), fmt.Sprintf("admin_session:%s", token))
		}
		c.SetCookie(adminCookieName, "", -1, "/api/v1/admin", "", false, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// AdminSessionMiddleware validates admin session from cookie
func AdminSessionMiddleware(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		sessionJSON, err := rdb.Get(context.Background(), fmt.Sprintf("admin_session:%s", token)).Result()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		var sessionData struct {
			AdminID string   `json:"admin_id"`
			Roles   []string `json:"roles"`
		}
		if err := json.Unmarshal([]byte(sessionJSON), &sessionData); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		c.Set("admin_id", sessionData.AdminID)
		c.Set("admin_roles", sessionData.Roles)
		c.Next()
	}
}

func adminHasRole(c *gin.Context, role string) bool {
	roles, _ := c.Get("admin_roles")
	list, ok := roles.([]string)
	if !ok {
		return false
	}
	for _, r := range list {
		if r == role {
			return true
		}
	}
	return false
}

// GetAdminAccounts returns every ledger account and its balance
func GetAdminAccounts(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := c.GetString("admin_id")

		var rows []models.Account
		err := db.Select(&rows, `
			SELECT id, account_type, owner_player_id, balance, created_at, updated_at
			FROM accounts ORDER BY account_type, id`)
		if err != nil {
			log.Printf("[ADMIN] Failed to load accounts: %v", err)
			admin.LogAdminAction(db, adminID, c.ClientIP(), "/api/v1/admin/accounts", "get_accounts", nil, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		admin.LogAdminAction(db, adminID, c.ClientIP(), "/api/v1/admin/accounts", "get_accounts", map[string]interface{}{"count": len(rows)}, true)
		c.JSON(http.StatusOK, rows)
	}
}

// GetAccountTransactions returns the double-entry ledger with pagination
func GetAccountTransactions(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := c.GetString("admin_id")
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit <= 0 || limit > 500 {
			limit = 50
		}

		var rows []models.AccountTransaction
		err := db.Select(&rows, `
			SELECT id, debit_account_id, credit_account_id, amount, reference_type, reference_id, description, created_at
			FROM account_transactions ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			admin.LogAdminAction(db, adminID, c.ClientIP(), "/api/v1/admin/transactions", "get_transactions", nil, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		admin.LogAdminAction(db, adminID, c.ClientIP(), "/api/v1/admin/transactions", "get_transactions", map[string]interface{}{"count": len(rows)}, true)
		c.JSON(http.StatusOK, rows)
	}
}

// GetEscrowLedger returns stake-in/payout entries for a match
func GetEscrowLedger(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		match, err := game.Manager.GetMatch(c.Param("token"))
		if err != nil {
			respondWagerError(c, err)
			return
		}

		var rows []models.EscrowLedger
		err = db.Select(&rows, `
			SELECT id, match_id, entry_type, player_id, amount, balance_after, description, created_at
			FROM escrow_ledger WHERE match_id=$1 ORDER BY id`, match.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// CreditWallet tops up a player wallet (development/testing path)
func CreditWallet(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := c.GetString("admin_id")

		var req struct {
			PlayerID string `json:"player_id" binding:"required"`
			Amount   int64  `json:"amount" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "player_id and amount required"})
			return
		}

		playerID := normalizePlayerID(req.PlayerID)
		if playerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player_id"})
			return
		}

		balance, err := game.Manager.CreditWallet(c.Request.Context(), playerID, req.Amount)
		if err != nil {
			admin.LogAdminAction(db, adminID, c.ClientIP(), "/api/v1/admin/credit", "credit_wallet", map[string]interface{}{"player_id": playerID, "amount": req.Amount}, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		admin.LogAdminAction(db, adminID, c.ClientIP(), "/api/v1/admin/credit", "credit_wallet", map[string]interface{}{"player_id": playerID, "amount": req.Amount}, true)
		c.JSON(http.StatusOK, gin.H{"player_id": playerID, "balance": balance})
	}
}

// ForceProfileUpdate overwrites a rating profile out of band.
// Restricted to the configured stats authority or admins carrying the
// stats_authority role.
func ForceProfileUpdate(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := c.GetString("admin_id")
		if adminID != cfg.StatsAuthorityID && !adminHasRole(c, RoleStatsAuthority) {
			admin.LogAdminAction(db, adminID, c.ClientIP(), "/api/v1/admin/profile", "force_profile_update", map[string]interface{}{"player_id": c.Param("id")}, false)
			c.JSON(http.StatusForbidden, gin.H{"error": "stats_authority role required"})
			return
		}

		playerID := normalizePlayerID(c.Param("id"))
		if playerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
			return
		}

		var patch models.PlayerProfile
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile payload"})
			return
		}

		profile, err := game.Manager.ForceProfileUpdate(c.Request.Context(), playerID, &patch)
		if err != nil {
			admin.LogAdminAction(db, adminID, c.ClientIP(), "/api/v1/admin/profile", "force_profile_update", map[string]interface{}{"player_id": playerID}, false)
			respondWagerError(c, err)
			return
		}

		admin.LogAdminAction(db, adminID, c.ClientIP(), "/api/v1/admin/profile", "force_profile_update", map[string]interface{}{"player_id": playerID, "rating": profile.Rating}, true)
		c.JSON(http.StatusOK, profile)
	}
}

// GetAuditLogs returns recent admin activity
func GetAuditLogs(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit <= 0 || limit > 500 {
			limit = 50
		}

		logs, err := admin.GetAdminAuditLogs(db, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, logs)
	}
}

// GetRuntimeConfig returns all DB-backed config overrides
func GetRuntimeConfig(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		configs, err := admin.GetAllRuntimeConfig(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, configs)
	}
}

// UpdateRuntimeConfig updates one config key and applies it live
func UpdateRuntimeConfig(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := c.GetString("admin_id")

		var req struct {
			Key   string `json:"key" binding:"required"`
			Value string `json:"value" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "key and value required"})
			return
		}

		if err := admin.UpdateRuntimeConfigValue(db, req.Key, req.Value, adminID); err != nil {
			admin.LogAdminAction(db, adminID, c.ClientIP(), "/api/v1/admin/config", "update_config", map[string]interface{}{"key": req.Key}, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
			log.Printf("[CONFIG] Failed to re-apply runtime config: %v", err)
		}

		admin.LogAdminAction(db, adminID, c.ClientIP(), "/api/v1/admin/config", "update_config", map[string]interface{}{"key": req.Key, "value": req.Value}, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
