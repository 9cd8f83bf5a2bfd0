package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaStatus describes the ledger schema after migrations ran.
type SchemaStatus struct {
	Version uint
	// Legacy is set when the transactions table predates the migrations
	// and still stores dates as DATETIME.
	Legacy bool
}

// RunMigrations brings the ledger schema at dbPath up to date and reports
// the version reached. The first migration uses IF NOT EXISTS, so a table
// left by an older tracker is adopted with its rows and column types.
func RunMigrations(dbPath string) (SchemaStatus, error) {
	// Separate connection so closing the migrator does not close the store's handle
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	legacy, err := hasLegacyDateColumn(migrateDB)
	if err != nil {
		return SchemaStatus{}, err
	}

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return SchemaStatus{}, fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return SchemaStatus{}, fmt.Errorf("schema version %d is dirty", version)
	}
	return SchemaStatus{Version: version, Legacy: legacy}, nil
}

// hasLegacyDateColumn reports whether an existing transactions table keeps
// its date column as DATETIME. A missing table is not legacy.
func hasLegacyDateColumn(db *sql.DB) (bool, error) {
	rows, err := db.Query(`PRAGMA table_info(transactions)`)
	if err != nil {
		return false, fmt.Errorf("inspect transactions table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("scan table info: %w", err)
		}
		if name == "date" {
			return !strings.EqualFold(colType, "TEXT"), nil
		}
	}
	return false, rows.Err()
}
