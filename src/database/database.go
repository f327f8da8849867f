package database

import (
	"database/sql"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/username/fintrack/backend/src/logger"
	_ "modernc.org/sqlite"
)

var (
	DB     *sql.DB
	dbPath string
)

func InitDB(databasePath string) {
	if err := openAndMigrate(databasePath); err != nil {
		stdlog.Fatalf("failed to initialize database at %s: %v", databasePath, err)
	}
}

func openAndMigrate(databasePath string) error {
	if dir := filepath.Dir(databasePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	DB = db
	dbPath = databasePath

	if logger.L != nil {
		logger.L.Info("Checking database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database schema for:", databasePath)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		amount REAL NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		category TEXT DEFAULT 'Uncategorized',
		kind TEXT NOT NULL,
		description TEXT DEFAULT '',
		amount_eur REAL
	);`
	if _, err := DB.Exec(createTableStatement); err != nil {
		return fmt.Errorf("creating transactions table: %w", err)
	}

	return migrateAmountEURColumn()
}

// ResetDatabase is the factory reset: it closes the connection, deletes the
// database file and reopens a fresh schema at the same path. Meant for local
// development, not production data.
func ResetDatabase() error {
	if DB != nil {
		if err := DB.Close(); err != nil && logger.L != nil {
			logger.L.Warn("Closing database before reset failed", "error", err)
		}
	}
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing database file %s: %w", dbPath, err)
	}
	if logger.L != nil {
		logger.L.Info("Database file removed, recreating fresh schema", "databasePath", dbPath)
	}
	return openAndMigrate(dbPath)
}

// migrateAmountEURColumn adds the amount_eur column to databases created
// before normalized amounts existed. Rows stay NULL until a backfill pass.
func migrateAmountEURColumn() error {
	rows, err := DB.Query(`PRAGMA table_info(transactions)`)
	if err != nil {
		return fmt.Errorf("inspecting transactions table: %w", err)
	}
	defer rows.Close()

	hasColumn := false
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("scanning table info: %w", err)
		}
		if name == "amount_eur" {
			hasColumn = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating table info: %w", err)
	}

	if !hasColumn {
		if logger.L != nil {
			logger.L.Info("Adding amount_eur column to transactions table")
		}
		if _, err := DB.Exec(`ALTER TABLE transactions ADD COLUMN amount_eur REAL`); err != nil {
			return fmt.Errorf("adding amount_eur column: %w", err)
		}
	}
	return nil
}
