package blacklist

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	name: "mysql",
	createTable: `
		CREATE TABLE IF NOT EXISTS domains (
			id INT AUTO_INCREMENT PRIMARY KEY,
			domain_name VARCHAR(253) NOT NULL,
			UNIQUE KEY uq_domain_name (domain_name)
		)
	`,
	exists: `SELECT EXISTS(SELECT 1 FROM domains WHERE domain_name = ?)`,
	insert: `INSERT IGNORE INTO domains (domain_name) VALUES (?)`,
	count:  `SELECT COUNT(*) FROM domains`,
}

// NewMySQLStore connects to a MySQL blacklist database
func NewMySQLStore(dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}
	return newSQLStore(db, mysqlDialect, logger)
}
