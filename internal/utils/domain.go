package utils

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeDomain trims, lower-cases and converts a domain to its ASCII
// (punycode) form, dropping any trailing dot
func NormalizeDomain(domain string) (string, error) {
	domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if domain == "" {
		return "", fmt.Errorf("empty domain")
	}

	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return "", fmt.Errorf("invalid domain %q: %w", domain, err)
	}
	if !strings.Contains(ascii, ".") {
		return "", fmt.Errorf("invalid domain %q: missing top-level label", domain)
	}

	return ascii, nil
}

// RegistrableSuffix returns the last two DNS labels of a host name,
// lower-cased and without a trailing dot
func RegistrableSuffix(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
