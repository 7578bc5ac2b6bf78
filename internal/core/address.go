package core

import (
	"fmt"
	"strings"
)

// ParseAddress splits an address on its single '@'. The domain is lower-cased;
// the local part is kept as given.
func ParseAddress(email string) (EmailAddress, error) {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return EmailAddress{}, fmt.Errorf("%w: expected exactly one '@' in %q", ErrInvalidAddress, email)
	}

	domain := strings.TrimSuffix(strings.ToLower(parts[1]), ".")
	if domain == "" {
		return EmailAddress{}, fmt.Errorf("%w: empty domain in %q", ErrInvalidAddress, email)
	}

	return EmailAddress{LocalPart: parts[0], Domain: domain}, nil
}
