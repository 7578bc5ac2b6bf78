package signals

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/razavidev/dea-detector/internal/core"
	"github.com/razavidev/dea-detector/internal/utils"
	"github.com/razavidev/dea-detector/internal/whitelist"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var disposableMXPattern = regexp.MustCompile(`(?i)(tempmail|guerrilla|mailinator)`)

// DNSCollector derives the MX, SPF and AAAA signals of a domain
type DNSCollector struct {
	resolver  core.Resolver
	providers *whitelist.Set
	timeout   time.Duration
	logger    *zap.Logger
}

// NewDNSCollector creates a new DNS signal collector. timeout bounds all
// three lookups together; zero leaves the caller's deadline in charge.
func NewDNSCollector(resolver core.Resolver, providers *whitelist.Set, timeout time.Duration, logger *zap.Logger) *DNSCollector {
	return &DNSCollector{
		resolver:  resolver,
		providers: providers,
		timeout:   timeout,
		logger:    logger,
	}
}

// Collect runs the three lookups concurrently. A failing lookup never
// cancels the others; its fields stay at their defaults.
func (c *DNSCollector) Collect(ctx context.Context, domain string) core.DNSSignals {
	domain = strings.ToLower(domain)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	isMajor := c.providers.Contains(domain)

	var (
		mxFound, suspicious   bool
		spfFound, spfFailed   bool
		aaaaFound, aaaaFailed bool
	)

	var g errgroup.Group
	g.Go(func() error {
		mxFound, suspicious = c.checkMX(ctx, domain, isMajor)
		return nil
	})
	g.Go(func() error {
		spfFound, spfFailed = c.checkSPF(ctx, domain)
		return nil
	})
	g.Go(func() error {
		aaaaFound, aaaaFailed = c.checkAAAA(ctx, domain)
		return nil
	})
	_ = g.Wait()

	return core.DNSSignals{
		IsMajorProvider:      isMajor,
		MXRecordsFound:       mxFound,
		SuspiciousMXHostname: suspicious,
		SPFRecordFound:       spfFound,
		SPFLookupFailed:      spfFailed,
		AAAARecordsFound:     aaaaFound,
		AAAALookupFailed:     aaaaFailed,
	}
}

func (c *DNSCollector) checkMX(ctx context.Context, domain string, isMajor bool) (found, suspicious bool) {
	records, err := c.resolver.LookupMX(ctx, domain)
	if err != nil {
		c.logger.Debug("MX lookup failed", zap.String("domain", domain), zap.Error(err))
		return false, false
	}
	if len(records) == 0 {
		return false, false
	}

	primary := PrimaryExchange(records)
	return true, !isMajor && c.isSuspiciousExchange(primary.Host, domain)
}

// isSuspiciousExchange flags an exchange that lives outside the queried
// domain and outside the major providers, and whose name looks like a
// throwaway mail service or a bare "mx." host
func (c *DNSCollector) isSuspiciousExchange(host, domain string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	suffix := utils.RegistrableSuffix(host)
	if suffix == domain || c.providers.Contains(suffix) {
		return false
	}
	return disposableMXPattern.MatchString(host) || strings.HasPrefix(host, "mx.")
}

func (c *DNSCollector) checkSPF(ctx context.Context, domain string) (found, failed bool) {
	records, err := c.resolver.LookupTXT(ctx, domain)
	if err != nil {
		if errors.Is(err, core.ErrNoData) {
			return false, false
		}
		c.logger.Debug("TXT lookup failed", zap.String("domain", domain), zap.Error(err))
		return false, true
	}

	for _, record := range records {
		if strings.HasPrefix(record, "v=spf1") {
			return true, false
		}
	}
	return false, false
}

func (c *DNSCollector) checkAAAA(ctx context.Context, domain string) (found, failed bool) {
	ips, err := c.resolver.LookupAAAA(ctx, domain)
	if err != nil {
		if errors.Is(err, core.ErrNoData) {
			return false, false
		}
		c.logger.Debug("AAAA lookup failed", zap.String("domain", domain), zap.Error(err))
		return false, true
	}
	return len(ips) > 0, false
}

// PrimaryExchange returns the lowest-priority-number exchange. Ties keep
// server order.
func PrimaryExchange(records []core.MXRecord) core.MXRecord {
	return core.SortByPriority(records)[0]
}
