package refresh

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/razavidev/dea-detector/internal/utils"
)

// ParseDomains extracts normalized domains from a newline separated list.
// Blank lines and lines starting with '#' are skipped; inline comments are
// stripped. Entries that are not valid domain names are returned in rejected.
func ParseDomains(data []byte) (domains []string, rejected int) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexAny(line, "# \t"); i >= 0 {
			line = line[:i]
		}

		domain, err := utils.NormalizeDomain(line)
		if err != nil {
			rejected++
			continue
		}
		domains = append(domains, domain)
	}

	return domains, rejected
}
