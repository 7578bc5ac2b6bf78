package signals

import (
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	minRandomnessLength = 5

	entropyWeight = 0.40
	varietyWeight = 0.25
	monobitWeight = 0.20
	runsWeight    = 0.15
)

// Randomness scores how machine-generated a string looks, from 0 (human-like
// or too short to judge) to 1. The score ignores letter case.
func Randomness(text string) float64 {
	if len([]rune(text)) < minRandomnessLength {
		return 0.0
	}

	// Casers keep state, so one is built per call.
	runes := []rune(cases.Lower(language.Und).String(text))
	n := float64(len(runes))

	score := normalizedEntropy(runes) * entropyWeight
	score += variety(runes) * varietyWeight
	score += monobit(runes) * monobitWeight
	score -= float64(longestRun(runes)) / n * runsWeight

	return math.Max(0, math.Min(1.0, score))
}

// normalizedEntropy is the Shannon entropy of the character distribution
// divided by log2 of the length
func normalizedEntropy(runes []rune) float64 {
	if len(runes) == 0 {
		return 0
	}

	freq := make(map[rune]int, len(runes))
	for _, r := range runes {
		freq[r]++
	}

	n := float64(len(runes))
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / n
		entropy -= p * math.Log2(p)
	}

	maxEntropy := math.Log2(n)
	if maxEntropy == 0 {
		maxEntropy = 1
	}
	return entropy / maxEntropy
}

// variety is the fraction of {letters, digits, symbols} present
func variety(runes []rune) float64 {
	var letters, digits, symbols bool
	for _, r := range runes {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letters = true
		case r >= '0' && r <= '9':
			digits = true
		default:
			symbols = true
		}
	}

	count := 0
	for _, present := range []bool{letters, digits, symbols} {
		if present {
			count++
		}
	}
	return float64(count) / 3
}

// monobit compares the number of code points below 100 against half the length
func monobit(runes []rune) float64 {
	half := float64(len(runes)) / 2
	if half == 0 {
		return 0
	}

	low := 0
	for _, r := range runes {
		if r < 100 {
			low++
		}
	}
	return 1 - math.Abs(float64(low)-half)/half
}

// longestRun returns the length of the longest run of identical characters
func longestRun(runes []rune) int {
	longest, current := 0, 0
	for i, r := range runes {
		if i > 0 && r == runes[i-1] {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}
