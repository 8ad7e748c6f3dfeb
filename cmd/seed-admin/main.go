package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/chessbets/backend/internal/admin"
	"github.com/chessbets/backend/internal/config"
	"github.com/chessbets/backend/internal/database"
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

	// Seed admin account
	adminID := os.Getenv("ADMIN_ID")
	if adminID == "" {
		adminID = "admin"
		log.Printf("Using default admin id: %s", adminID)
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		adminToken = "change-me-in-production"
		log.Printf("WARNING: Using default admin token. Set ADMIN_TOKEN env var in production!")
	}

	displayName := "Admin"
	roles := []string{"super_admin", "stats_authority"}

	err = admin.CreateAdminAccount(db, adminID, displayName, adminToken, roles)
	if err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}

	log.Printf("✓ Admin account created/updated successfully")
	log.Printf("  Admin ID: %s", adminID)
	log.Printf("  Display Name: %s", displayName)
	log.Printf("  Roles: %v", roles)
	log.Println("\nYou can now login at /api/v1/admin/login with:")
	log.Printf("  Admin ID: %s", adminID)
	log.Printf("  Token: %s", adminToken)
}
