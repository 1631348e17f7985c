// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Ratio returns a [0,100] similarity between two strings derived from
// Levenshtein distance: (len(a)+len(b)-dist) / (len(a)+len(b)) * 100.
// Two empty strings are identical (100); one empty string scores 0.
func Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	lenSum := len([]rune(a)) + len([]rune(b))
	dist := levenshtein.ComputeDistance(a, b)
	return float64(lenSum-dist) / float64(lenSum) * 100
}

// PartialRatio returns the best Ratio between the shorter string and
// any equal-length window of the longer one, tolerating truncation
// ("deep learning" vs "deep learning for vision" scores 100).
func PartialRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	s := string(shorter)
	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		if r := Ratio(s, string(longer[i:i+len(shorter)])); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSetRatio compares the unique, sorted token sets of both
// strings, making the measure insensitive to word order and repeated
// words. It scores the shared-token core against each full token set
// and returns the best of the three comparisons.
func TokenSetRatio(a, b string) float64 {
	tokensA := uniqueSorted(strings.Fields(a))
	tokensB := uniqueSorted(strings.Fields(b))
	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 100
	}
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	inA := make(map[string]bool, len(tokensA))
	for _, t := range tokensA {
		inA[t] = true
	}
	inB := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		inB[t] = true
	}

	var shared, onlyA, onlyB []string
	for _, t := range tokensA {
		if inB[t] {
			shared = append(shared, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range tokensB {
		if !inA[t] {
			onlyB = append(onlyB, t)
		}
	}

	core := strings.Join(shared, " ")
	full1 := strings.TrimSpace(core + " " + strings.Join(onlyA, " "))
	full2 := strings.TrimSpace(core + " " + strings.Join(onlyB, " "))

	best := Ratio(core, full1)
	if r := Ratio(core, full2); r > best {
		best = r
	}
	if r := Ratio(full1, full2); r > best {
		best = r
	}
	return best
}

func uniqueSorted(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
