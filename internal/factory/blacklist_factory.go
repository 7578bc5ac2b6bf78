package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/razavidev/dea-detector/internal/adapters/blacklist"
	"github.com/razavidev/dea-detector/internal/config"
	"github.com/razavidev/dea-detector/internal/ports"
	"github.com/razavidev/dea-detector/internal/signals"
	"go.uber.org/zap"
)

// BlacklistFactory creates blacklist stores based on configuration
type BlacklistFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewBlacklistFactory creates a new blacklist factory
func NewBlacklistFactory(cfg *config.Config, logger *zap.Logger) *BlacklistFactory {
	return &BlacklistFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateBlacklistStore creates a blacklist store based on the configuration
func (f *BlacklistFactory) CreateBlacklistStore() (ports.BlacklistStore, error) {
	blCfg, err := f.cfg.GetBlacklist()
	if err != nil {
		return nil, err
	}

	switch blCfg.Type {
	case "memory":
		return blacklist.NewMemoryStore(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(blCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return blacklist.NewSQLiteStore(blCfg.SQLitePath, f.logger)
	case "mysql":
		return blacklist.NewMySQLStore(blCfg.MySQLDSN, f.logger)
	case "postgres":
		return blacklist.NewPostgresStore(blCfg.PostgresDSN, f.logger)
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), blCfg.Timeout)
		defer cancel()
		return blacklist.NewRedisStore(ctx, blCfg.RedisAddress, blCfg.RedisKey, f.logger)
	default:
		return nil, fmt.Errorf("unsupported blacklist type: %s", blCfg.Type)
	}
}

// CreateBlacklistClient wraps store with the configured timeout and failure policy
func (f *BlacklistFactory) CreateBlacklistClient(store ports.BlacklistStore) (*signals.BlacklistClient, error) {
	blCfg, err := f.cfg.GetBlacklist()
	if err != nil {
		return nil, err
	}

	policy, err := signals.ParseFailPolicy(blCfg.FailPolicy)
	if err != nil {
		return nil, err
	}

	return signals.NewBlacklistClient(store, policy, blCfg.Timeout, f.logger), nil
}
