package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/razavidev/dea-detector/internal/core"
	"go.uber.org/zap"
)

// DefaultSources are the upstream disposable domain lists
var DefaultSources = []string{
	"https://raw.githubusercontent.com/disposable/disposable-email-domains/master/domains.txt",
	"https://raw.githubusercontent.com/disposable-email-domains/disposable-email-domains/main/disposable_email_blocklist.conf",
}

// ErrAllSourcesFailed is returned when no source could be downloaded
var ErrAllSourcesFailed = errors.New("all blacklist sources failed")

// Stats describes one refresh run
type Stats struct {
	SourcesAttempted int           `json:"sourcesAttempted"`
	SourcesFailed    int           `json:"sourcesFailed"`
	DomainsFetched   int           `json:"domainsFetched"`
	DomainsRejected  int           `json:"domainsRejected"`
	UniqueDomains    int           `json:"uniqueDomains"`
	Inserted         int           `json:"inserted"`
	Duration         time.Duration `json:"duration"`
}

// Refresher merges remote disposable domain lists into the blacklist store
type Refresher struct {
	sources  []string
	fetcher  Fetcher
	store    core.BlacklistRepository
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRefresher creates a new refresher
func NewRefresher(sources []string, fetcher Fetcher, store core.BlacklistRepository, interval time.Duration, logger *zap.Logger) *Refresher {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &Refresher{
		sources:  sources,
		fetcher:  fetcher,
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Run downloads every source, de-duplicates the domains and inserts the new
// ones. A failing source is skipped; the run fails only when every source
// fails or the store rejects the write.
func (r *Refresher) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	stats := Stats{SourcesAttempted: len(r.sources)}

	seen := make(map[string]struct{})
	var unique []string
	var lastErr error

	for _, source := range r.sources {
		data, err := r.fetcher.Fetch(ctx, source)
		if err != nil {
			stats.SourcesFailed++
			lastErr = err
			r.logger.Warn("Failed to fetch blacklist source",
				zap.String("source", source),
				zap.Error(err))
			continue
		}

		domains, rejected := ParseDomains(data)
		stats.DomainsFetched += len(domains)
		stats.DomainsRejected += rejected
		for _, domain := range domains {
			if _, ok := seen[domain]; ok {
				continue
			}
			seen[domain] = struct{}{}
			unique = append(unique, domain)
		}

		r.logger.Debug("Fetched blacklist source",
			zap.String("source", source),
			zap.Int("domains", len(domains)),
			zap.Int("rejected", rejected))
	}
	stats.UniqueDomains = len(unique)

	if stats.SourcesFailed == stats.SourcesAttempted {
		stats.Duration = time.Since(start)
		return stats, fmt.Errorf("%w: %v", ErrAllSourcesFailed, lastErr)
	}

	inserted, err := r.store.AddDomains(ctx, unique)
	stats.Duration = time.Since(start)
	if err != nil {
		return stats, fmt.Errorf("failed to store blacklist domains: %w", err)
	}
	stats.Inserted = inserted

	r.logger.Info("Blacklist refreshed",
		zap.Int("sources", stats.SourcesAttempted),
		zap.Int("failed_sources", stats.SourcesFailed),
		zap.Int("unique_domains", stats.UniqueDomains),
		zap.Int("inserted", stats.Inserted),
		zap.Duration("duration", stats.Duration))

	return stats, nil
}

// Start runs the refresh every interval in the background, and once
// immediately when onStartup is set. Calling Start twice is a no-op.
func (r *Refresher) Start(onStartup bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopCh != nil || r.interval <= 0 {
		return
	}
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	go r.loop(onStartup, r.stopCh, r.doneCh)
}

func (r *Refresher) loop(onStartup bool, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if onStartup {
		r.runLogged(ctx)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runLogged(ctx)
		case <-stopCh:
			return
		}
	}
}

func (r *Refresher) runLogged(ctx context.Context) {
	if _, err := r.Run(ctx); err != nil {
		r.logger.Error("Blacklist refresh failed", zap.Error(err))
	}
}

// Stop stops the background refresh and waits for a running refresh to end
func (r *Refresher) Stop() {
	r.mu.Lock()
	stopCh, doneCh := r.stopCh, r.doneCh
	r.stopCh, r.doneCh = nil, nil
	r.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
}
