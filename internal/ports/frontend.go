package ports

import (
	"context"

	"github.com/razavidev/dea-detector/internal/core"
)

// Assessor scores addresses. core.RiskService is the production implementation.
type Assessor interface {
	// Assess returns the risk assessment of one address
	Assess(ctx context.Context, email string, opts core.AssessOptions) *core.RiskAssessment

	// Threshold returns the score above which an address is flagged
	Threshold() float64
}

// Frontend defines the interface for the long-running service front ends
type Frontend interface {
	// Start starts serving in the background
	Start() error

	// Stop stops the front end
	Stop() error
}
