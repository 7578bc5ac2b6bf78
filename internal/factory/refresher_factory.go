package factory

import (
	"context"
	"strings"

	"github.com/razavidev/dea-detector/internal/config"
	"github.com/razavidev/dea-detector/internal/core"
	"github.com/razavidev/dea-detector/internal/refresh"
	"go.uber.org/zap"
)

// RefresherFactory creates the blacklist refresher based on configuration
type RefresherFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRefresherFactory creates a new refresher factory
func NewRefresherFactory(cfg *config.Config, logger *zap.Logger) *RefresherFactory {
	return &RefresherFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRefresher creates a refresher writing into store. The S3 client is
// only loaded when a source uses the s3:// scheme.
func (f *RefresherFactory) CreateRefresher(store core.BlacklistRepository) (*refresh.Refresher, error) {
	rfCfg, err := f.cfg.GetRefresh()
	if err != nil {
		return nil, err
	}

	var s3Fetcher refresh.Fetcher
	for _, source := range rfCfg.Sources {
		if strings.HasPrefix(source, "s3://") {
			s3, err := refresh.NewS3Fetcher(context.Background(), rfCfg.S3Region)
			if err != nil {
				return nil, err
			}
			s3Fetcher = s3
			break
		}
	}

	fetcher := refresh.NewSchemeFetcher(refresh.NewHTTPFetcher(rfCfg.HTTPTimeout, rfCfg.MaxRetries, f.logger), s3Fetcher)
	return refresh.NewRefresher(rfCfg.Sources, fetcher, store, rfCfg.Interval, f.logger), nil
}

// RefreshOnStartup reports whether the long-running service refreshes before its first tick
func (f *RefresherFactory) RefreshOnStartup() bool {
	return f.cfg.GetBool("refresh.on_startup")
}
