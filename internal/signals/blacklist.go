package signals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/razavidev/dea-detector/internal/core"
	"go.uber.org/zap"
)

// FailPolicy decides the blacklist answer when the store cannot be queried
type FailPolicy string

const (
	// FailOpen treats an unreachable store as "not blacklisted"
	FailOpen FailPolicy = "open"
	// FailClosed treats an unreachable store as "blacklisted"
	FailClosed FailPolicy = "closed"
)

// ParseFailPolicy converts a configuration string to a FailPolicy
func ParseFailPolicy(s string) (FailPolicy, error) {
	switch FailPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FailOpen:
		return FailOpen, nil
	case FailClosed:
		return FailClosed, nil
	default:
		return "", fmt.Errorf("unknown blacklist fail policy: %s", s)
	}
}

// BlacklistClient answers membership queries against the disposable domain store
type BlacklistClient struct {
	repo    core.BlacklistRepository
	policy  FailPolicy
	timeout time.Duration
	logger  *zap.Logger
}

// NewBlacklistClient creates a new blacklist client
func NewBlacklistClient(repo core.BlacklistRepository, policy FailPolicy, timeout time.Duration, logger *zap.Logger) *BlacklistClient {
	return &BlacklistClient{
		repo:    repo,
		policy:  policy,
		timeout: timeout,
		logger:  logger,
	}
}

// IsBlacklisted reports whether the domain is a known disposable domain.
// Store errors resolve according to the fail policy.
func (c *BlacklistClient) IsBlacklisted(ctx context.Context, domain string) bool {
	domain = strings.ToLower(domain)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	found, err := c.repo.Exists(ctx, domain)
	if err != nil {
		c.logger.Warn("Blacklist query failed",
			zap.String("domain", domain),
			zap.String("fail_policy", string(c.policy)),
			zap.Error(err))
		return c.policy == FailClosed
	}

	return found
}
