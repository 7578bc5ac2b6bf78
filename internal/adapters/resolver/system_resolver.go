package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/razavidev/dea-detector/internal/core"
	"go.uber.org/zap"
)

// SystemResolver uses the platform resolver. The platform does not report
// whether a missing answer means "no data" or "no such name", so both map
// to core.ErrNoData.
type SystemResolver struct {
	resolver *net.Resolver
	logger   *zap.Logger
}

// NewSystemResolver creates a new resolver backed by net.Resolver
func NewSystemResolver(logger *zap.Logger) *SystemResolver {
	logger.Info("Initialized system DNS resolver")
	return &SystemResolver{
		resolver: &net.Resolver{PreferGo: true},
		logger:   logger,
	}
}

// LookupMX returns the mail exchangers of a domain
func (r *SystemResolver) LookupMX(ctx context.Context, domain string) ([]core.MXRecord, error) {
	mxs, err := r.resolver.LookupMX(ctx, domain)
	if err != nil {
		return nil, classify("MX", domain, err)
	}

	records := make([]core.MXRecord, 0, len(mxs))
	for _, mx := range mxs {
		records = append(records, core.MXRecord{
			Host:     strings.TrimSuffix(mx.Host, "."),
			Priority: mx.Pref,
		})
	}
	return records, nil
}

// LookupTXT returns every TXT record of a domain
func (r *SystemResolver) LookupTXT(ctx context.Context, domain string) ([]string, error) {
	records, err := r.resolver.LookupTXT(ctx, domain)
	if err != nil {
		return nil, classify("TXT", domain, err)
	}
	return records, nil
}

// LookupAAAA returns the IPv6 addresses of a domain
func (r *SystemResolver) LookupAAAA(ctx context.Context, domain string) ([]net.IP, error) {
	ips, err := r.resolver.LookupIP(ctx, "ip6", domain)
	if err != nil {
		return nil, classify("AAAA", domain, err)
	}
	return ips, nil
}

func classify(qtype, domain string, err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return fmt.Errorf("%s %s: %w", qtype, domain, core.ErrNoData)
	}
	return fmt.Errorf("%s %s: %w", qtype, domain, err)
}
