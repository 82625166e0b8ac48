package rbc

import "math"

// hourCandidates derives the integer keys to probe against a schedule table
// for a raw hour reading. Schedules may be keyed 0-23 or 1-24; the probes
// cover both conventions, in order: the rounded hour itself, its 0-23
// wrapping and its 1-24 wrapping. Duplicates are skipped.
func hourCandidates(rawHour float64) []int {
	h := int(math.Round(rawHour))
	candidates := make([]int, 0, 3)
	for _, c := range []int{h, mod24(h), mod24(h-1) + 1} {
		if !containsInt(candidates, c) {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// mod24 wraps h into [0, 24). Unlike the % operator it never returns a
// negative remainder, so hours before midnight wrap to the evening.
func mod24(h int) int {
	m := h % 24
	if m < 0 {
		m += 24
	}
	return m
}

func containsInt(s []int, v int) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
