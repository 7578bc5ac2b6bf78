package core

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrNoData is returned by a Resolver when the name exists but has no
	// records of the requested type
	ErrNoData = errors.New("no data for name")
	// ErrNXDomain is returned by a Resolver when the name does not exist
	ErrNXDomain = errors.New("name does not exist")
	// ErrInvalidAddress is returned when an address does not split into
	// exactly one local part and one domain
	ErrInvalidAddress = errors.New("invalid email format")
)

// Resolver performs the DNS lookups the engine consumes
type Resolver interface {
	// LookupMX returns the mail exchangers of a domain in server order
	LookupMX(ctx context.Context, domain string) ([]MXRecord, error)

	// LookupTXT returns every TXT record of a domain, chunks joined
	LookupTXT(ctx context.Context, domain string) ([]string, error)

	// LookupAAAA returns the IPv6 addresses of a domain
	LookupAAAA(ctx context.Context, domain string) ([]net.IP, error)
}

// BlacklistRepository is the known-disposable domain store
type BlacklistRepository interface {
	// Exists reports whether the lower-cased domain is in the store
	Exists(ctx context.Context, domain string) (bool, error)

	// AddDomains inserts domains, ignoring duplicates, and returns how many were new
	AddDomains(ctx context.Context, domains []string) (int, error)

	// Count returns the number of stored domains
	Count(ctx context.Context) (int64, error)
}

// SignalCollector gathers the DNS-derived signals of a domain. It never fails:
// lookups that error leave their fields at the defaults.
type SignalCollector interface {
	Collect(ctx context.Context, domain string) DNSSignals
}

// BlacklistChecker answers the blacklist question with the configured failure policy applied
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, domain string) bool
}

// CatchAllProber determines whether a domain accepts mail for any local part
type CatchAllProber interface {
	IsCatchAll(ctx context.Context, domain string) bool
}

// MailboxVerifier checks whether a mailbox accepts RCPT TO
type MailboxVerifier interface {
	Verify(ctx context.Context, email string) (MailboxResult, error)
}

// TextScorer scores how machine-generated a string looks, in [0, 1]
type TextScorer func(text string) float64
