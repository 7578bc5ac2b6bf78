package blacklist

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// dialect holds the statements that differ between SQL engines. Every
// engine stores domains in the same `domains(domain_name UNIQUE)` table.
type dialect struct {
	name        string
	createTable string
	exists      string
	insert      string
	count       string
}

// SQLStore is a database/sql implementation of the BlacklistRepository interface
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

// newSQLStore verifies the connection and creates the domains table
func newSQLStore(db *sql.DB, d dialect, logger *zap.Logger) (*SQLStore, error) {
	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", d.name, err)
	}

	// Create table if it doesn't exist
	if _, err := db.Exec(d.createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create domains table: %w", err)
	}

	logger.Info("Initialized blacklist store", zap.String("type", d.name))

	return &SQLStore{
		db:      db,
		dialect: d,
		logger:  logger,
	}, nil
}

// Exists checks if a domain is in the store
func (s *SQLStore) Exists(ctx context.Context, domain string) (bool, error) {
	var found bool
	err := s.db.QueryRowContext(ctx, s.dialect.exists, strings.ToLower(domain)).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to query blacklist: %w", err)
	}
	return found, nil
}

// AddDomains inserts domains in one transaction, ignoring duplicates
func (s *SQLStore) AddDomains(ctx context.Context, domains []string) (int, error) {
	if len(domains) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.insert)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, domain := range domains {
		result, err := stmt.ExecContext(ctx, strings.ToLower(domain))
		if err != nil {
			return 0, fmt.Errorf("failed to insert domain %s: %w", domain, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit domains: %w", err)
	}

	s.logger.Debug("Added domains to blacklist",
		zap.String("type", s.dialect.name),
		zap.Int("submitted", len(domains)),
		zap.Int("inserted", inserted))

	return inserted, nil
}

// Count returns the number of stored domains
func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, s.dialect.count).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count domains: %w", err)
	}
	return count, nil
}

// Stop closes the database connection
func (s *SQLStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close blacklist database",
			zap.String("type", s.dialect.name),
			zap.Error(err))
	}
}
