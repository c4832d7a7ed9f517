package leaderboard

import (
	"strings"
)

// NormalizeName lowercases a rider name, trims it, and collapses internal
// whitespace runs to single spaces. All name comparisons operate on
// normalized forms.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), " ")
}

// FindNameMatch locates the candidate that matches target, trying each rule
// across all candidates before falling through to the next. Rules, strongest
// first:
//
//  1. exact normalized full name
//  2. first name plus last initial (with or without a trailing dot)
//  3. matching first and last tokens (middle names ignored)
//  4. reversed "last first" ordering
//  5. one name containing both fragments of the other
//  6. Levenshtein distance at most 2 between the full normalized names
//
// Returns the index of the matched candidate, or -1.
func FindNameMatch(target string, candidates []string) int {
	t := NormalizeName(target)
	if t == "" {
		return -1
	}

	normalized := make([]string, len(candidates))
	for i, c := range candidates {
		normalized[i] = NormalizeName(c)
	}

	rules := []func(a, b string) bool{
		func(a, b string) bool { return a == b },
		matchFirstLastInitial,
		matchFirstLast,
		matchReversed,
		matchContains,
		func(a, b string) bool { return levenshtein(a, b) <= 2 },
	}

	for _, rule := range rules {
		for i, c := range normalized {
			if c == "" {
				continue
			}
			if rule(t, c) || rule(c, t) {
				return i
			}
		}
	}
	return -1
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[len(parts)-1]
}

// matchFirstLastInitial matches "john smith" against "john s" or "john s.".
func matchFirstLastInitial(a, b string) bool {
	aFirst, aLast := splitName(a)
	bFirst, bLast := splitName(b)
	if aFirst == "" || aFirst != bFirst || aLast == "" || bLast == "" {
		return false
	}
	bInitial := strings.TrimSuffix(bLast, ".")
	if len(bInitial) != 1 {
		return false
	}
	return strings.HasPrefix(aLast, bInitial)
}

// matchFirstLast matches on first and last tokens, ignoring middle names.
func matchFirstLast(a, b string) bool {
	aFirst, aLast := splitName(a)
	bFirst, bLast := splitName(b)
	if aFirst == "" || aLast == "" {
		return false
	}
	return aFirst == bFirst && aLast == bLast
}

// matchReversed matches "smith john" against "john smith".
func matchReversed(a, b string) bool {
	aFirst, aLast := splitName(a)
	bFirst, bLast := splitName(b)
	if aFirst == "" || aLast == "" || bFirst == "" || bLast == "" {
		return false
	}
	return aFirst == bLast && aLast == bFirst
}

// matchContains reports whether b contains both fragments of a.
func matchContains(a, b string) bool {
	aFirst, aLast := splitName(a)
	if aFirst == "" || aLast == "" {
		return false
	}
	return strings.Contains(b, aFirst) && strings.Contains(b, aLast)
}

// levenshtein computes edit distance with the classic two-row iteration.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
