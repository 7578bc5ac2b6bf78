package core

import "math"

// DefaultThreshold is the score above which an address is flagged
const DefaultThreshold = 0.70

// Weights are the per-signal score contributions
type Weights struct {
	NotMajorProvider   float64
	NoMX               float64
	SuspiciousMX       float64
	NoSPF              float64
	NoAAAA             float64
	Randomness         float64
	Blacklisted        float64
	CatchAll           float64
	MailboxUnreachable float64
}

// DefaultWeights returns the reference weighting. The catch-all and mailbox
// signals carry no weight unless a caller opts in.
func DefaultWeights() Weights {
	return Weights{
		NotMajorProvider: 0.2,
		NoMX:             0.3,
		SuspiciousMX:     0.2,
		NoSPF:            0.1,
		NoAAAA:           0.05,
		Randomness:       0.3,
		Blacklisted:      0.7,
	}
}

// Score sums the weighted contributions of a signal set, capped at 1.0.
//
// SPF and AAAA absence is only penalized when the resolver answered; a hard
// lookup failure leaves those signals unknown. MX absence is penalized
// whatever the cause.
func Score(s SignalSet, w Weights) float64 {
	score := 0.0

	if !s.IsMajorProvider {
		score += w.NotMajorProvider
	}

	if !s.MXRecordsFound {
		score += w.NoMX
	} else if s.SuspiciousMXHostname {
		score += w.SuspiciousMX
	}

	if !s.SPFRecordFound && !s.SPFLookupFailed {
		score += w.NoSPF
	}

	if !s.AAAARecordsFound && !s.AAAALookupFailed {
		score += w.NoAAAA
	}

	score += s.RandomnessScore * w.Randomness

	if s.IsBlacklisted {
		score += w.Blacklisted
	}

	if s.CatchAllChecked && s.IsCatchAll {
		score += w.CatchAll
	}

	if s.MailboxChecked && !s.MailboxReachable {
		score += w.MailboxUnreachable
	}

	return math.Min(1.0, score)
}

// IsDEA applies the strict greater-than threshold
func IsDEA(score, threshold float64) bool {
	return score > threshold
}
