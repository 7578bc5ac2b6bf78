package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cleanSignals() SignalSet {
	return SignalSet{
		IsMajorProvider:  true,
		MXRecordsFound:   true,
		SPFRecordFound:   true,
		AAAARecordsFound: true,
	}
}

func TestScoreCleanMajorProvider(t *testing.T) {
	assert.Equal(t, 0.0, Score(cleanSignals(), DefaultWeights()))
}

func TestScoreBlacklistedWithoutMX(t *testing.T) {
	s := SignalSet{IsBlacklisted: true}
	score := Score(s, DefaultWeights())

	assert.Equal(t, 1.0, score)
	assert.True(t, IsDEA(score, DefaultThreshold))
}

func TestScoreBlacklistAndNoMXAloneExceedThreshold(t *testing.T) {
	s := cleanSignals()
	s.IsBlacklisted = true
	s.MXRecordsFound = false

	assert.True(t, IsDEA(Score(s, DefaultWeights()), DefaultThreshold))
}

func TestScoreSuspiciousMXOnlyCountsWithRecords(t *testing.T) {
	w := DefaultWeights()

	s := cleanSignals()
	s.SuspiciousMXHostname = true
	assert.InDelta(t, 0.2, Score(s, w), 1e-9)

	s.MXRecordsFound = false
	assert.InDelta(t, 0.3, Score(s, w), 1e-9)
}

func TestScoreLookupFailuresAreNotPenalized(t *testing.T) {
	w := DefaultWeights()

	s := cleanSignals()
	s.SPFRecordFound = false
	s.SPFLookupFailed = true
	s.AAAARecordsFound = false
	s.AAAALookupFailed = true
	assert.Equal(t, 0.0, Score(s, w))

	s.SPFLookupFailed = false
	s.AAAALookupFailed = false
	assert.InDelta(t, 0.15, Score(s, w), 1e-9)
}

func TestScoreRandomnessWeight(t *testing.T) {
	s := cleanSignals()
	s.RandomnessScore = 0.5
	assert.InDelta(t, 0.15, Score(s, DefaultWeights()), 1e-9)
}

func TestScoreOptionalSignalsDefaultToZeroWeight(t *testing.T) {
	s := cleanSignals()
	s.CatchAllChecked = true
	s.IsCatchAll = true
	s.MailboxChecked = true
	s.MailboxReachable = false
	assert.Equal(t, 0.0, Score(s, DefaultWeights()))

	w := DefaultWeights()
	w.CatchAll = 0.25
	w.MailboxUnreachable = 0.1
	assert.InDelta(t, 0.35, Score(s, w), 1e-9)

	s.CatchAllChecked = false
	s.MailboxChecked = false
	assert.Equal(t, 0.0, Score(s, w))
}

func TestScoreIsMonotonicAndCapped(t *testing.T) {
	w := DefaultWeights()
	w.CatchAll = 0.1
	w.MailboxUnreachable = 0.1

	steps := []func(*SignalSet){
		func(s *SignalSet) { s.IsMajorProvider = false },
		func(s *SignalSet) { s.SPFRecordFound = false },
		func(s *SignalSet) { s.AAAARecordsFound = false },
		func(s *SignalSet) { s.SuspiciousMXHostname = true },
		func(s *SignalSet) { s.RandomnessScore = 0.8 },
		func(s *SignalSet) { s.MXRecordsFound = false },
		func(s *SignalSet) { s.CatchAllChecked, s.IsCatchAll = true, true },
		func(s *SignalSet) { s.MailboxChecked = true },
		func(s *SignalSet) { s.IsBlacklisted = true },
	}

	s := cleanSignals()
	prev := Score(s, w)
	for i, step := range steps {
		step(&s)
		score := Score(s, w)
		assert.GreaterOrEqual(t, score, prev, "step %d lowered the score", i)
		assert.LessOrEqual(t, score, 1.0)
		prev = score
	}
	assert.Equal(t, 1.0, prev)
}

func TestIsDEAIsStrict(t *testing.T) {
	assert.False(t, IsDEA(0.70, 0.70))
	assert.True(t, IsDEA(0.7000001, 0.70))
	assert.False(t, IsDEA(0.2, 0.70))
}
