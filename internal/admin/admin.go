package admin

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/chessbets/backend/internal/models"
)

// GetAdminAccount retrieves an admin account by its operator id
func GetAdminAccount(db *sqlx.DB, adminID string) (*models.AdminAccount, error) {
	var admin models.AdminAccount
	err := db.Get(&admin, `SELECT admin_id, display_name, token_hash, roles, created_at, updated_at FROM admin_accounts WHERE admin_id=$1`, adminID)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// VerifyAdminToken checks if the provided token matches the stored hash
func VerifyAdminToken(hashedToken, plainToken string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken))
	return err == nil
}

// CreateAdminAccount creates or refreshes an admin account (used for seeding)
func CreateAdminAccount(db *sqlx.DB, adminID, displayName, plainToken string, roles []string) error {
	hashedToken, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash token: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO admin_accounts (admin_id, display_name, token_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (admin_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			token_hash = EXCLUDED.token_hash,
			roles = EXCLUDED.roles,
			updated_at = NOW()
	`, adminID, displayName, string(hashedToken), pq.Array(roles))

	return err
}

// HasRole reports whether the account carries the given role
func HasRole(admin *models.AdminAccount, role string) bool {
	for _, r := range admin.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// LogAdminAction records an admin action in the audit log
func LogAdminAction(db *sqlx.DB, adminID, ip, route, action string, details map[string]interface{}, success bool) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Printf("Failed to marshal admin audit details: %v", err)
		detailsJSON = []byte("{}")
	}

	_, err = db.Exec(`
		INSERT INTO admin_audit (admin_id, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, adminID, ip, route, action, detailsJSON, success)

	if err != nil {
		log.Printf("Failed to log admin action: %v", err)
	}

	return err
}

// GetAdminAuditLogs retrieves recent admin audit logs with pagination
func GetAdminAuditLogs(db *sqlx.DB, limit, offset int) ([]models.AdminAudit, error) {
	var logs []models.AdminAudit
	query := `
		SELECT id, admin_id, ip, route, action, details, success, created_at
		FROM admin_audit
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	err := db.Select(&logs, query, limit, offset)
	return logs, err
}

// ValidateAdminToken validates an admin id + token combination
func ValidateAdminToken(db *sqlx.DB, adminID, token string) (*models.AdminAccount, error) {
	admin, err := GetAdminAccount(db, adminID)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[ADMIN] No admin account found for id: %s", adminID)
			return nil, fmt.Errorf("admin account not found")
		}
		log.Printf("[ADMIN] Database error: %v", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !VerifyAdminToken(admin.TokenHash, token) {
		log.Printf("[ADMIN] Token verification failed for id: %s", adminID)
		return nil, fmt.Errorf("invalid token")
	}

	return admin, nil
}
