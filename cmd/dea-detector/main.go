package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/razavidev/dea-detector/internal/di"
	"github.com/razavidev/dea-detector/internal/factory"
	"github.com/razavidev/dea-detector/internal/ports"
	"github.com/razavidev/dea-detector/internal/refresh"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	frontend ports.Frontend,
	store ports.BlacklistStore,
	refresher *refresh.Refresher,
	refresherFactory *factory.RefresherFactory,
) error {
	defer logger.Sync()
	defer store.Stop()

	// Start the front end
	if err := frontend.Start(); err != nil {
		logger.Error("Failed to start front end", zap.Error(err))
		return err
	}

	// Keep the blacklist current in the background
	refresher.Start(refresherFactory.RefreshOnStartup())

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	refresher.Stop()

	if err := frontend.Stop(); err != nil {
		logger.Error("Failed to stop front end", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
