// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strconv"

	"github.com/pdiddy/bibmatch/pkg/types"
)

// Scoring weights. Title match is the strongest identity signal,
// author overlap a secondary corroborator, year proximity a weak
// tiebreaker.
const (
	titleTokenWeight   = 0.7
	titlePartialWeight = 0.3

	lastNameWeight   = 0.5
	firstNameWeight  = 0.3
	middleNameWeight = 0.2

	overallTitleWeight    = 0.5
	overallAuthorsWeight  = 0.3
	overallMetadataWeight = 0.2

	// surnameGate is the minimum last-name similarity below which two
	// names are treated as different people regardless of first or
	// middle name agreement.
	surnameGate = 90

	// DefaultAuthorThreshold is the pairing score at which a
	// bibliography author counts as covered by a candidate author.
	DefaultAuthorThreshold = 70
)

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TitleScore returns a [0,100] similarity between two titles,
// combining a token-set ratio (tolerates reordering and subtitle
// differences) with a partial ratio (tolerates truncation). Empty
// titles score 0.
func TitleScore(titleA, titleB string) float64 {
	if titleA == "" || titleB == "" {
		return 0
	}
	a, b := Normalize(titleA), Normalize(titleB)
	if a == "" || b == "" {
		return 0
	}
	return clamp(titleTokenWeight*TokenSetRatio(a, b) + titlePartialWeight*PartialRatio(a, b))
}

// NamePartsScore compares two person names component-wise. The
// surname gate is conclusive: last names under 90 similarity score 0.
// Absent middle names on both sides count as perfect agreement rather
// than a penalty.
func NamePartsScore(nameA, nameB string) float64 {
	a := SplitNameComponents(nameA)
	b := SplitNameComponents(nameB)

	if a.Last == "" && b.Last == "" {
		return 0
	}
	last := Ratio(a.Last, b.Last)
	if last < surnameGate {
		return 0
	}

	first := max(Ratio(a.First, b.First), PartialRatio(a.First, b.First))

	middle := 100.0
	if a.Middle != "" || b.Middle != "" {
		middle = max(Ratio(a.Middle, b.Middle), PartialRatio(a.Middle, b.Middle))
	}

	return clamp(lastNameWeight*last + firstNameWeight*first + middleNameWeight*middle)
}

// AuthorsScore returns the percentage of bibliography authors covered
// by some candidate author at or above threshold, penalized when the
// list lengths differ by more than two. Either list empty scores 0.
func AuthorsScore(bibAuthors, candidateAuthors []string, threshold float64) float64 {
	if len(bibAuthors) == 0 || len(candidateAuthors) == 0 {
		return 0
	}

	covered := 0
	for _, bib := range bibAuthors {
		best := 0.0
		for _, cand := range candidateAuthors {
			if s := NamePartsScore(bib, cand); s > best {
				best = s
			}
		}
		if best >= threshold {
			covered++
		}
	}

	coverage := float64(covered) / float64(len(bibAuthors)) * 100
	diff := len(bibAuthors) - len(candidateAuthors)
	if diff < 0 {
		diff = -diff
	}
	if diff > 2 {
		coverage -= float64(diff) * 5
	}
	if coverage < 0 {
		return 0
	}
	return coverage
}

// MetadataScore turns year proximity into a small adjustment around a
// neutral base of 50. A missing or unparseable year is insufficient
// signal, not evidence against the match, and leaves the base
// untouched.
func MetadataScore(declaredYear string, candidateYear int) float64 {
	score := 50.0
	if declaredYear != "" && candidateYear != 0 {
		if year, err := strconv.Atoi(declaredYear); err == nil {
			diff := year - candidateYear
			if diff < 0 {
				diff = -diff
			}
			switch {
			case diff == 0:
				score += 10
			case diff == 1:
				score += 5
			case diff <= 5:
				score -= 5
			default:
				score -= 15
			}
		}
	}
	return clamp(score)
}

// OverallScore combines title, author-list, and year scores into one
// [0,100] confidence value for a citation/candidate pair.
func OverallScore(citation *types.Citation, candidate types.Candidate) float64 {
	title := TitleScore(citation.Title(), candidate.Title)
	authors := AuthorsScore(ParseAuthorList(citation.Author()), candidate.Authors, DefaultAuthorThreshold)
	metadata := MetadataScore(citation.Year(), candidate.PublicationYear)
	return clamp(overallTitleWeight*title + overallAuthorsWeight*authors + overallMetadataWeight*metadata)
}
