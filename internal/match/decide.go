// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/bibmatch/pkg/types"
)

// Retriever supplies scored-against candidates for one citation. An
// empty result is a normal outcome, not an error.
type Retriever interface {
	CandidatesForEntry(ctx context.Context, title, firstAuthorLastName, year string) ([]types.Candidate, error)
}

// Confirmer asks a human to accept or reject a maybe-band candidate.
// Injected so the engine is testable without terminal I/O.
type Confirmer interface {
	Confirm(citation *types.Citation, candidate types.Candidate, score float64) (bool, error)
}

// Acceptance thresholds for the two confidence tiers.
const (
	HighThreshold  = 85.0
	MaybeThreshold = 60.0

	StrictHighThreshold  = 90.0
	StrictMaybeThreshold = 70.0
)

// Engine applies threshold policy to scored candidates and resolves
// one citation at a time. The engine mutates only the citation's
// openalex field; citations must not be shared across concurrent
// Match calls.
type Engine struct {
	Retriever Retriever
	Confirmer Confirmer
	Config    types.MatchConfig

	// Log receives per-entry status lines. Nil discards them.
	Log io.Writer
}

// Thresholds returns the (high, maybe) tier boundaries for the
// configured mode.
func (e *Engine) Thresholds() (high, maybe float64) {
	if e.Config.Strict {
		return StrictHighThreshold, StrictMaybeThreshold
	}
	return HighThreshold, MaybeThreshold
}

// Match resolves one citation. Entries already carrying an OpenAlex
// ID are skipped without any retrieval call. Retrieval failure is
// treated the same as an empty candidate set: the entry stays
// unmatched and a later run can retry it. The returned error is
// non-nil only for cancellation or a failed confirmer, never for a
// missing match.
func (e *Engine) Match(ctx context.Context, citation *types.Citation) (types.Decision, error) {
	if citation.Matched() {
		return types.Decision{Outcome: types.OutcomeAlreadyMatched, WorkID: citation.OpenAlexID()}, nil
	}

	CleanCitation(citation)
	title := citation.Title()
	if title == "" {
		return types.Decision{Outcome: types.OutcomeNoMatch}, nil
	}

	var firstAuthorLast string
	if authors := ParseAuthorList(citation.Author()); len(authors) > 0 {
		firstAuthorLast = SplitNameComponents(authors[0]).Last
	}

	candidates, err := e.Retriever.CandidatesForEntry(ctx, title, firstAuthorLast, citation.Year())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return types.Decision{Outcome: types.OutcomeNoMatch}, err
		}
		fmt.Fprintf(e.log(), "warning: candidate retrieval failed for %q: %v\n", citation.Key, err)
		return types.Decision{Outcome: types.OutcomeNoMatch}, nil
	}
	if len(candidates) == 0 {
		return types.Decision{Outcome: types.OutcomeNoMatch}, nil
	}

	scored := make([]scoredCandidate, len(candidates))
	for i, cand := range candidates {
		scored[i] = scoredCandidate{candidate: cand, score: OverallScore(citation, cand)}
	}
	// Stable keeps retrieval order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	best := scored[0]
	high, maybe := e.Thresholds()

	switch {
	case best.score >= high:
		citation.Set(types.FieldOpenAlex, best.candidate.ShortID())
		fmt.Fprintf(e.log(), "[high]  %s => %s (score=%.1f)\n", citation.Key, best.candidate.ShortID(), best.score)
		return types.Decision{Outcome: types.OutcomeAutoAccepted, WorkID: best.candidate.ShortID(), Score: best.score}, nil

	case best.score >= maybe:
		if e.Config.Interactive {
			if e.Confirmer == nil {
				return types.Decision{Outcome: types.OutcomePendingReview, WorkID: best.candidate.ShortID(), Score: best.score}, nil
			}
			accepted, err := e.Confirmer.Confirm(citation, best.candidate, best.score)
			if err != nil {
				return types.Decision{Outcome: types.OutcomeNoMatch}, fmt.Errorf("confirming %q: %w", citation.Key, err)
			}
			if !accepted {
				return types.Decision{Outcome: types.OutcomeUserRejected, WorkID: best.candidate.ShortID(), Score: best.score}, nil
			}
			citation.Set(types.FieldOpenAlex, best.candidate.ShortID())
			fmt.Fprintf(e.log(), "[user]  %s => %s (score=%.1f)\n", citation.Key, best.candidate.ShortID(), best.score)
			return types.Decision{Outcome: types.OutcomeUserAccepted, WorkID: best.candidate.ShortID(), Score: best.score}, nil
		}
		// Without a human present the maybe tier auto-accepts; callers
		// wanting higher precision pass strict thresholds.
		citation.Set(types.FieldOpenAlex, best.candidate.ShortID())
		fmt.Fprintf(e.log(), "[maybe] %s => %s (score=%.1f, auto-accepted)\n", citation.Key, best.candidate.ShortID(), best.score)
		return types.Decision{Outcome: types.OutcomeAutoAccepted, WorkID: best.candidate.ShortID(), Score: best.score}, nil

	default:
		return types.Decision{Outcome: types.OutcomeNoMatch, Score: best.score}, nil
	}
}

type scoredCandidate struct {
	candidate types.Candidate
	score     float64
}

// CleanCitation strips newlines and surrounding whitespace from every
// field. The abstract keeps its inner spacing; all other fields have
// whitespace runs collapsed to single spaces.
func CleanCitation(citation *types.Citation) {
	for i, f := range citation.Fields {
		if f.Name == types.FieldAbstract {
			citation.Fields[i].Value = strings.TrimSpace(strings.ReplaceAll(f.Value, "\n", ""))
			continue
		}
		citation.Fields[i].Value = strings.Join(strings.Fields(f.Value), " ")
	}
}

func (e *Engine) log() io.Writer {
	if e.Log == nil {
		return io.Discard
	}
	return e.Log
}
