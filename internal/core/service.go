package core

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ScoringSettings holds the weights and verdict threshold
type ScoringSettings struct {
	Weights   Weights
	Threshold float64
}

// DefaultScoringSettings returns the reference weights and threshold
func DefaultScoringSettings() ScoringSettings {
	return ScoringSettings{Weights: DefaultWeights(), Threshold: DefaultThreshold}
}

// AssessOptions selects the optional, network-heavy signals
type AssessOptions struct {
	ProbeCatchAll bool
	VerifyMailbox bool
}

// RiskService combines the independent signals into a risk assessment
type RiskService struct {
	collector  SignalCollector
	blacklist  BlacklistChecker
	randomness TextScorer
	prober     CatchAllProber
	verifier   MailboxVerifier
	logger     *zap.Logger
	settings   ScoringSettings
}

// NewRiskService creates a new risk service. prober and verifier may be nil,
// in which case the corresponding options are ignored.
func NewRiskService(
	collector SignalCollector,
	blacklist BlacklistChecker,
	randomness TextScorer,
	prober CatchAllProber,
	verifier MailboxVerifier,
	logger *zap.Logger,
	settings ScoringSettings,
) *RiskService {
	return &RiskService{
		collector:  collector,
		blacklist:  blacklist,
		randomness: randomness,
		prober:     prober,
		verifier:   verifier,
		logger:     logger,
		settings:   settings,
	}
}

// Threshold returns the configured verdict threshold
func (s *RiskService) Threshold() float64 {
	return s.settings.Threshold
}

// Assess scores an address. It never returns an error: a malformed address
// is scored as maximally risky, and every collector failure degrades to the
// default value of its signal.
func (s *RiskService) Assess(ctx context.Context, email string, opts AssessOptions) *RiskAssessment {
	start := time.Now()

	addr, err := ParseAddress(email)
	if err != nil {
		s.logger.Debug("Rejecting malformed address", zap.String("email", email), zap.Error(err))
		return &RiskAssessment{
			Email:      email,
			Score:      1.0,
			IsDEA:      true,
			Error:      "Invalid email format.",
			AssessedAt: start,
		}
	}

	signals := SignalSet{
		Domain:    addr.Domain,
		LocalPart: addr.LocalPart,
	}

	var (
		dnsSignals  DNSSignals
		blacklisted bool
		catchAll    bool
		mailbox     MailboxResult
		mailboxErr  error
	)

	// Collectors never fail; the group is only a join point.
	var g errgroup.Group
	g.Go(func() error {
		dnsSignals = s.collector.Collect(ctx, addr.Domain)
		return nil
	})
	g.Go(func() error {
		blacklisted = s.blacklist.IsBlacklisted(ctx, addr.Domain)
		return nil
	})

	probe := opts.ProbeCatchAll && s.prober != nil
	if probe {
		g.Go(func() error {
			catchAll = s.prober.IsCatchAll(ctx, addr.Domain)
			return nil
		})
	}

	verify := opts.VerifyMailbox && s.verifier != nil
	if verify {
		g.Go(func() error {
			mailbox, mailboxErr = s.verifier.Verify(ctx, addr.String())
			return nil
		})
	}

	signals.RandomnessScore = s.randomness(addr.LocalPart)
	_ = g.Wait()

	signals.ApplyDNS(dnsSignals)
	signals.IsBlacklisted = blacklisted
	if probe {
		signals.CatchAllChecked = true
		signals.IsCatchAll = catchAll
	}
	if verify {
		if mailboxErr != nil {
			s.logger.Warn("Mailbox verification failed",
				zap.String("domain", addr.Domain),
				zap.Error(mailboxErr))
		} else {
			signals.MailboxChecked = true
			signals.MailboxReachable = mailbox.Valid
		}
	}

	score := Score(signals, s.settings.Weights)
	result := &RiskAssessment{
		Email:      email,
		Score:      score,
		IsDEA:      IsDEA(score, s.settings.Threshold),
		Signals:    signals,
		AssessedAt: start,
	}

	s.logger.Debug("Assessed address",
		zap.String("domain", addr.Domain),
		zap.Float64("score", score),
		zap.Bool("is_dea", result.IsDEA),
		zap.Duration("elapsed", time.Since(start)))

	return result
}
