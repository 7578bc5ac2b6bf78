package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/razavidev/dea-detector/internal/core"
	"go.uber.org/zap"
)

const (
	resolvConfPath = "/etc/resolv.conf"
	fallbackServer = "8.8.8.8:53"
	udpBufferSize  = 4096
)

// DirectResolver queries DNS servers directly so that an empty answer
// (no data) can be told apart from a name that does not exist
type DirectResolver struct {
	servers []string
	udp     *dns.Client
	tcp     *dns.Client
	logger  *zap.Logger
}

// NewDirectResolver creates a new direct resolver. An empty server list
// falls back to /etc/resolv.conf and then to a public resolver.
func NewDirectResolver(servers []string, timeout time.Duration, logger *zap.Logger) *DirectResolver {
	if len(servers) == 0 {
		servers = systemServers(logger)
	}
	addrs := make([]string, 0, len(servers))
	for _, s := range servers {
		addrs = append(addrs, withPort(s))
	}
	servers = addrs

	logger.Info("Initialized direct DNS resolver",
		zap.Strings("servers", servers),
		zap.Duration("timeout", timeout))

	return &DirectResolver{
		servers: servers,
		udp:     &dns.Client{Net: "udp", Timeout: timeout},
		tcp:     &dns.Client{Net: "tcp", Timeout: timeout},
		logger:  logger,
	}
}

func systemServers(logger *zap.Logger) []string {
	conf, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil || len(conf.Servers) == 0 {
		logger.Warn("No system DNS servers, using fallback",
			zap.String("server", fallbackServer),
			zap.Error(err))
		return []string{fallbackServer}
	}

	servers := make([]string, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		servers = append(servers, net.JoinHostPort(s, conf.Port))
	}
	return servers
}

func withPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(strings.Trim(server, "[]"), "53")
}

// LookupMX returns the mail exchangers of a domain in server order
func (r *DirectResolver) LookupMX(ctx context.Context, domain string) ([]core.MXRecord, error) {
	answer, err := r.query(ctx, domain, dns.TypeMX)
	if err != nil {
		return nil, err
	}

	var records []core.MXRecord
	for _, rr := range answer {
		if mx, ok := rr.(*dns.MX); ok {
			records = append(records, core.MXRecord{
				Host:     strings.TrimSuffix(mx.Mx, "."),
				Priority: mx.Preference,
			})
		}
	}
	if len(records) == 0 {
		return nil, core.ErrNoData
	}
	return records, nil
}

// LookupTXT returns every TXT record of a domain with its chunks joined
func (r *DirectResolver) LookupTXT(ctx context.Context, domain string) ([]string, error) {
	answer, err := r.query(ctx, domain, dns.TypeTXT)
	if err != nil {
		return nil, err
	}

	var records []string
	for _, rr := range answer {
		if txt, ok := rr.(*dns.TXT); ok {
			records = append(records, strings.Join(txt.Txt, ""))
		}
	}
	if len(records) == 0 {
		return nil, core.ErrNoData
	}
	return records, nil
}

// LookupAAAA returns the IPv6 addresses of a domain
func (r *DirectResolver) LookupAAAA(ctx context.Context, domain string) ([]net.IP, error) {
	answer, err := r.query(ctx, domain, dns.TypeAAAA)
	if err != nil {
		return nil, err
	}

	var ips []net.IP
	for _, rr := range answer {
		if aaaa, ok := rr.(*dns.AAAA); ok {
			ips = append(ips, aaaa.AAAA)
		}
	}
	if len(ips) == 0 {
		return nil, core.ErrNoData
	}
	return ips, nil
}

// query tries each server in turn until one gives an authoritative answer.
// NXDOMAIN and NOERROR are final; transport errors and SERVFAIL move on.
func (r *DirectResolver) query(ctx context.Context, domain string, qtype uint16) ([]dns.RR, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), qtype)
	msg.SetEdns0(udpBufferSize, false)

	var lastErr error
	for _, server := range r.servers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := r.exchange(ctx, msg, server)
		if err != nil {
			r.logger.Debug("DNS exchange failed",
				zap.String("server", server),
				zap.String("domain", domain),
				zap.String("type", dns.TypeToString[qtype]),
				zap.Error(err))
			lastErr = err
			continue
		}

		switch resp.Rcode {
		case dns.RcodeSuccess:
			return resp.Answer, nil
		case dns.RcodeNameError:
			return nil, fmt.Errorf("%s %s: %w", dns.TypeToString[qtype], domain, core.ErrNXDomain)
		default:
			lastErr = fmt.Errorf("%s %s: server %s answered %s",
				dns.TypeToString[qtype], domain, server, dns.RcodeToString[resp.Rcode])
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no DNS servers configured")
	}
	return nil, lastErr
}

func (r *DirectResolver) exchange(ctx context.Context, msg *dns.Msg, server string) (*dns.Msg, error) {
	resp, _, err := r.udp.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		resp, _, err = r.tcp.ExchangeContext(ctx, msg, server)
		if err != nil {
			return nil, fmt.Errorf("tcp retry: %w", err)
		}
	}
	return resp, nil
}
