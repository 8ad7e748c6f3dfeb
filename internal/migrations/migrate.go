package migrations

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const (
	migrationsDir   = "migrations"
	migrationsTable = "schema_migrations_migrate"
)

// RunMigrations applies the file-based migrations in ./migrations with the
// postgres driver. A database that already carries the schema (player_profiles
// exists) but has no migrate metadata gets baselined to the latest version
// first, so redeploying onto a hand-provisioned database does not replay the
// initial migration.
func RunMigrations(databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("database URL is empty")
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open DB: %w", err)
	}
	defer sqlDB.Close()

	driver, err := pg.WithInstance(sqlDB, &pg.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if needsBaseline(sqlDB) {
		if latest := latestMigrationVersion(migrationsDir); latest > 0 {
			log.Printf("[MIGRATE] Baseline DB to version %d (existing schema present)", latest)
			if ferr := m.Force(int(latest)); ferr != nil {
				log.Printf("[MIGRATE] Force to version %d failed: %v", latest, ferr)
			}
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration up failed: %w", err)
	}

	log.Printf("[MIGRATE] Migrations applied (no changes or up completed)")
	return nil
}

// needsBaseline reports whether the schema exists without migrate metadata.
func needsBaseline(sqlDB *sql.DB) bool {
	tableExists := func(name string) bool {
		var exists bool
		row := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", name)
		return row.Scan(&exists) == nil && exists
	}
	return tableExists("player_profiles") && !tableExists(migrationsTable)
}

// latestMigrationVersion scans the migrations directory for files with a
// numeric version prefix (e.g. 000001_) and returns the highest version.
func latestMigrationVersion(dir string) int64 {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	re := regexp.MustCompile(`^0*([0-9]+)_`)
	var max int64
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(f.Name())
		if len(m) < 2 {
			continue
		}
		if v, _ := strconv.ParseInt(m[1], 10, 64); v > max {
			max = v
		}
	}
	return max
}
