package factory

import (
	"fmt"

	"github.com/razavidev/dea-detector/internal/adapters/resolver"
	"github.com/razavidev/dea-detector/internal/config"
	"github.com/razavidev/dea-detector/internal/core"
	"go.uber.org/zap"
)

// ResolverFactory creates DNS resolvers based on configuration
type ResolverFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewResolverFactory creates a new resolver factory
func NewResolverFactory(cfg *config.Config, logger *zap.Logger) *ResolverFactory {
	return &ResolverFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateResolver creates a resolver based on the configuration
func (f *ResolverFactory) CreateResolver() (core.Resolver, error) {
	dnsCfg, err := f.cfg.GetDNS()
	if err != nil {
		return nil, err
	}

	switch dnsCfg.Resolver {
	case "direct":
		return resolver.NewDirectResolver(dnsCfg.Servers, dnsCfg.Timeout, f.logger), nil
	case "system":
		return resolver.NewSystemResolver(f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported resolver type: %s", dnsCfg.Resolver)
	}
}
