package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// DefaultMajorProviders are the large consumer mailbox providers trusted by default
var DefaultMajorProviders = []string{
	"gmail.com",
	"yahoo.com",
	"outlook.com",
	"hotmail.com",
	"aol.com",
	"icloud.com",
	"zoho.com",
}

// Set is an immutable set of trusted mail domains
type Set struct {
	domains map[string]struct{}
}

// NewSet creates a new provider set from a list of domains
func NewSet(domains []string, logger *zap.Logger) *Set {
	// Normalize domains (lowercase)
	normalized := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
		if domain != "" {
			normalized[domain] = struct{}{}
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized major provider set", zap.Int("domains", len(normalized)))
	}

	return &Set{domains: normalized}
}

// Contains checks if a domain is in the set
func (s *Set) Contains(domain string) bool {
	if s == nil || len(s.domains) == 0 {
		return false
	}
	_, ok := s.domains[strings.ToLower(domain)]
	return ok
}

// Len returns the number of domains in the set
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.domains)
}
