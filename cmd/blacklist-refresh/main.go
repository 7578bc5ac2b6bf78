package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/razavidev/dea-detector/internal/di"
	"github.com/razavidev/dea-detector/internal/ports"
	"github.com/razavidev/dea-detector/internal/refresh"
	"go.uber.org/zap"
)

func main() {
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Refresh failed: %v\n", err)
		os.Exit(1)
	}
}

// run performs a single refresh and prints its statistics
func run(logger *zap.Logger, store ports.BlacklistStore, refresher *refresh.Refresher) error {
	defer logger.Sync()
	defer store.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := refresher.Run(ctx)
	if err != nil {
		return err
	}

	total, err := store.Count(ctx)
	if err != nil {
		logger.Warn("Failed to count blacklist", zap.Error(err))
	}

	return json.NewEncoder(os.Stdout).Encode(struct {
		refresh.Stats
		Total int64 `json:"total"`
	}{stats, total})
}
