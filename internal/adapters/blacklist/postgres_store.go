package blacklist

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var postgresDialect = dialect{
	name: "postgres",
	createTable: `
		CREATE TABLE IF NOT EXISTS domains (
			id SERIAL PRIMARY KEY,
			domain_name TEXT NOT NULL UNIQUE
		)
	`,
	exists: `SELECT EXISTS(SELECT 1 FROM domains WHERE domain_name = $1)`,
	insert: `INSERT INTO domains (domain_name) VALUES ($1) ON CONFLICT (domain_name) DO NOTHING`,
	count:  `SELECT COUNT(*) FROM domains`,
}

// NewPostgresStore connects to a PostgreSQL blacklist database
func NewPostgresStore(dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}
	return newSQLStore(db, postgresDialect, logger)
}
