package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/razavidev/dea-detector/internal/adapters/filter"
	"github.com/razavidev/dea-detector/internal/di"
	"github.com/razavidev/dea-detector/internal/ports"
	"go.uber.org/zap"
)

// Exit status 2 means at least one address was flagged.
const exitFlagged = 2

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	var flagged int
	err = container.Invoke(func(logger *zap.Logger, cli *filter.CliFilter, store ports.BlacklistStore) error {
		defer logger.Sync()
		defer store.Stop()

		var err error
		flagged, err = run(context.Background(), logger, cli, flags)
		return err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
	if flagged > 0 {
		os.Exit(exitFlagged)
	}
}

func run(ctx context.Context, logger *zap.Logger, cli *filter.CliFilter, flags *di.CLIFlags) (int, error) {
	opts := flags.Options()

	if len(flags.Addresses) > 0 {
		flagged := 0
		for _, email := range flags.Addresses {
			result, err := cli.ProcessAddress(ctx, email, opts)
			if err != nil {
				return flagged, err
			}
			if result.IsDEA {
				flagged++
			}
		}
		return flagged, nil
	}

	// Read addresses from file or stdin
	var r io.Reader = os.Stdin
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return 0, fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		r = file
		logger.Info("Reading addresses from file", zap.String("file", flags.InputFile))
	} else {
		logger.Info("Reading addresses from stdin")
	}

	return cli.ProcessReader(ctx, r, opts)
}
