package filter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/razavidev/dea-detector/internal/core"
	"github.com/razavidev/dea-detector/internal/ports"
	"go.uber.org/zap"
)

// CliFilter implements a command-line interface for address assessment
type CliFilter struct {
	assessor ports.Assessor
	logger   *zap.Logger
	out      io.Writer
	jsonOut  bool
	verbose  bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(assessor ports.Assessor, logger *zap.Logger, out io.Writer, jsonOut, verbose bool) *CliFilter {
	return &CliFilter{
		assessor: assessor,
		logger:   logger,
		out:      out,
		jsonOut:  jsonOut,
		verbose:  verbose,
	}
}

// ProcessAddress assesses one address and prints the result
func (f *CliFilter) ProcessAddress(ctx context.Context, email string, opts core.AssessOptions) (*core.RiskAssessment, error) {
	f.logger.Debug("Processing address", zap.String("email", email))

	startTime := time.Now()
	result := f.assessor.Assess(ctx, email, opts)
	duration := time.Since(startTime)

	if f.jsonOut {
		if err := json.NewEncoder(f.out).Encode(result); err != nil {
			return nil, fmt.Errorf("failed to write result: %w", err)
		}
		return result, nil
	}

	fmt.Fprintf(f.out, "\n=== %s ===\n", email)
	if result.Error != "" {
		fmt.Fprintf(f.out, "Error: %s\n", result.Error)
	}
	fmt.Fprintf(f.out, "Is DEA: %t\n", result.IsDEA)
	fmt.Fprintf(f.out, "Risk score: %.4f (threshold %.2f)\n", result.Score, f.assessor.Threshold())

	if f.verbose && result.Error == "" {
		s := result.Signals
		fmt.Fprintf(f.out, "\n--- Signals ---\n")
		fmt.Fprintf(f.out, "Major provider: %t\n", s.IsMajorProvider)
		fmt.Fprintf(f.out, "MX records found: %t\n", s.MXRecordsFound)
		fmt.Fprintf(f.out, "Suspicious MX hostname: %t\n", s.SuspiciousMXHostname)
		fmt.Fprintf(f.out, "SPF record found: %t%s\n", s.SPFRecordFound, unknownSuffix(s.SPFLookupFailed))
		fmt.Fprintf(f.out, "AAAA records found: %t%s\n", s.AAAARecordsFound, unknownSuffix(s.AAAALookupFailed))
		fmt.Fprintf(f.out, "Blacklisted: %t\n", s.IsBlacklisted)
		fmt.Fprintf(f.out, "Randomness: %.4f\n", s.RandomnessScore)
		if s.CatchAllChecked {
			fmt.Fprintf(f.out, "Catch-all: %t\n", s.IsCatchAll)
		}
		if s.MailboxChecked {
			fmt.Fprintf(f.out, "Mailbox reachable: %t\n", s.MailboxReachable)
		}
	}
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return result, nil
}

// ProcessReader assesses one address per non-blank line of r and returns
// how many were flagged
func (f *CliFilter) ProcessReader(ctx context.Context, r io.Reader, opts core.AssessOptions) (int, error) {
	flagged := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		email := strings.TrimSpace(scanner.Text())
		if email == "" || strings.HasPrefix(email, "#") {
			continue
		}

		result, err := f.ProcessAddress(ctx, email, opts)
		if err != nil {
			return flagged, err
		}
		if result.IsDEA {
			flagged++
		}
	}
	if err := scanner.Err(); err != nil {
		return flagged, fmt.Errorf("failed to read addresses: %w", err)
	}
	return flagged, nil
}

func unknownSuffix(failed bool) string {
	if failed {
		return " (lookup failed, not scored)"
	}
	return ""
}
