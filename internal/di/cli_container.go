package di

import (
	"flag"
	"os"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/razavidev/dea-detector/internal/adapters/filter"
	"github.com/razavidev/dea-detector/internal/config"
	"github.com/razavidev/dea-detector/internal/core"
	"github.com/razavidev/dea-detector/internal/logging"
	"github.com/razavidev/dea-detector/internal/ports"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Signal flags
	CatchAll bool
	Verify   bool

	// Engine flags
	Threshold     float64
	BlacklistType string
	SQLitePath    string
	DNSServers    string

	// Output flags
	JSON       bool
	Verbose    bool
	JSONLog    bool
	ConfigFile string
	InputFile  string

	// Addresses are the positional arguments
	Addresses []string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	return ParseFlagSet(flag.CommandLine, os.Args[1:])
}

// ParseFlagSet registers the CLI flags on fs and parses args
func ParseFlagSet(fs *flag.FlagSet, args []string) *CLIFlags {
	flags := &CLIFlags{}

	// Signal flags
	fs.BoolVar(&flags.CatchAll, "catch-all", false, "Probe the domain's exchanges for catch-all behaviour")
	fs.BoolVar(&flags.Verify, "verify", false, "Verify the mailbox over SMTP")

	// Engine flags
	fs.Float64Var(&flags.Threshold, "threshold", core.DefaultThreshold, "Score above which an address is flagged")
	fs.StringVar(&flags.BlacklistType, "blacklist", "sqlite", "Blacklist store (memory, sqlite)")
	fs.StringVar(&flags.SQLitePath, "db", "./disposable_emails.db", "Path to the SQLite blacklist")
	fs.StringVar(&flags.DNSServers, "dns", "", "Comma separated DNS servers (default: /etc/resolv.conf)")

	// Output flags
	fs.BoolVar(&flags.JSON, "json", false, "Print results as JSON lines")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Print every signal and enable debug logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")
	fs.StringVar(&flags.InputFile, "file", "", "File with one address per line (use stdin if no addresses are given)")

	_ = fs.Parse(args)
	flags.Addresses = fs.Args()
	return flags
}

// Options returns the assessment options selected on the command line
func (f *CLIFlags) Options() core.AssessOptions {
	return core.AssessOptions{
		ProbeCatchAll: f.CatchAll,
		VerifyMailbox: f.Verify,
	}
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			v := config.NewEmptyViper()
			v.SetConfigFile(flags.ConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", v.ConfigFileUsed()))
			if flags.CatchAll {
				v.Set("probe.enabled", true)
			}
			if flags.Verify {
				v.Set("verify.enabled", true)
			}
			return config.NewFromViper(v), nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideEngine(container); err != nil {
		return nil, err
	}

	// Register CLI front end
	if err := container.Provide(func(assessor ports.Assessor, logger *zap.Logger, flags *CLIFlags) *filter.CliFilter {
		return filter.NewCliFilter(assessor, logger, os.Stdout, flags.JSON, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("scoring.threshold", flags.Threshold)
	v.Set("blacklist.type", flags.BlacklistType)
	v.Set("blacklist.sqlite_path", flags.SQLitePath)
	if flags.DNSServers != "" {
		v.Set("dns.servers", splitList(flags.DNSServers))
	}

	// The optional collectors are only built when requested
	v.Set("probe.enabled", flags.CatchAll)
	v.Set("verify.enabled", flags.Verify)

	return config.NewFromViper(v)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
