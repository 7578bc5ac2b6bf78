package di

import (
	"go.uber.org/dig"

	"github.com/razavidev/dea-detector/internal/config"
	"github.com/razavidev/dea-detector/internal/core"
	"github.com/razavidev/dea-detector/internal/factory"
	"github.com/razavidev/dea-detector/internal/logging"
	"github.com/razavidev/dea-detector/internal/ports"
	"github.com/razavidev/dea-detector/internal/refresh"
	"github.com/razavidev/dea-detector/internal/signals"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideEngine(container); err != nil {
		return nil, err
	}

	// Register front end
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideEngine registers everything between the configuration and the
// assessor. The caller provides *config.Config and *zap.Logger.
func provideEngine(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewResolverFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewBlacklistFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewServiceFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewRefresherFactory); err != nil {
		return err
	}

	// Register resolver
	if err := container.Provide(func(f *factory.ResolverFactory) (core.Resolver, error) {
		return f.CreateResolver()
	}); err != nil {
		return err
	}

	// Register blacklist store and client
	if err := container.Provide(func(f *factory.BlacklistFactory) (ports.BlacklistStore, error) {
		return f.CreateBlacklistStore()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.BlacklistFactory, store ports.BlacklistStore) (*signals.BlacklistClient, error) {
		return f.CreateBlacklistClient(store)
	}); err != nil {
		return err
	}

	// Register refresher
	if err := container.Provide(func(f *factory.RefresherFactory, store ports.BlacklistStore) (*refresh.Refresher, error) {
		return f.CreateRefresher(store)
	}); err != nil {
		return err
	}

	// Register risk service
	if err := container.Provide(func(
		f *factory.ServiceFactory,
		resolver core.Resolver,
		client *signals.BlacklistClient,
	) (*core.RiskService, error) {
		return f.CreateRiskService(resolver, client)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(svc *core.RiskService) ports.Assessor {
		return svc
	}); err != nil {
		return err
	}

	return nil
}
