package factory

import (
	"fmt"

	"github.com/razavidev/dea-detector/internal/adapters/filter"
	"github.com/razavidev/dea-detector/internal/adapters/httpapi"
	"github.com/razavidev/dea-detector/internal/config"
	"github.com/razavidev/dea-detector/internal/ports"
	"go.uber.org/zap"
)

// FrontendFactory creates the long-running front end based on configuration
type FrontendFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	assessor ports.Assessor
	store    ports.BlacklistStore
}

// NewFrontendFactory creates a new front-end factory
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger, assessor ports.Assessor, store ports.BlacklistStore) *FrontendFactory {
	return &FrontendFactory{
		cfg:      cfg,
		logger:   logger,
		assessor: assessor,
		store:    store,
	}
}

// CreateFrontend creates a front end based on the configuration
func (f *FrontendFactory) CreateFrontend() (ports.Frontend, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, err
	}

	switch serverCfg.FrontendType {
	case "http":
		return httpapi.NewServer(
			f.assessor,
			f.store,
			f.logger,
			serverCfg.ListenAddress,
			serverCfg.RequestTimeout,
		), nil
	case "policy":
		return filter.NewPolicyFilter(
			f.assessor,
			f.logger,
			serverCfg.PolicyAddress,
			serverCfg.PolicyRejectMessage,
			serverCfg.PolicyScoreHeader,
			serverCfg.RequestTimeout,
		), nil
	default:
		return nil, fmt.Errorf("unsupported frontend type: %s", serverCfg.FrontendType)
	}
}
