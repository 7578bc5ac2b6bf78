package ports

import "github.com/razavidev/dea-detector/internal/core"

// BlacklistStore is a blacklist repository that owns a connection
type BlacklistStore interface {
	core.BlacklistRepository

	// Stop releases the underlying connection
	Stop()
}
