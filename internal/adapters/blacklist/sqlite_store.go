package blacklist

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name: "sqlite",
	createTable: `
		CREATE TABLE IF NOT EXISTS domains (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			domain_name TEXT NOT NULL UNIQUE
		)
	`,
	exists: `SELECT EXISTS(SELECT 1 FROM domains WHERE domain_name = ?)`,
	insert: `INSERT OR IGNORE INTO domains (domain_name) VALUES (?)`,
	count:  `SELECT COUNT(*) FROM domains`,
}

// NewSQLiteStore opens (or creates) a SQLite blacklist database
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return newSQLStore(db, sqliteDialect, logger)
}
