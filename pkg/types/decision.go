// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Outcome tags the result of matching one citation.
type Outcome int

const (
	// OutcomeNoMatch means no candidate cleared the lower threshold,
	// the citation had no usable title, or retrieval returned nothing.
	OutcomeNoMatch Outcome = iota

	// OutcomeAlreadyMatched means the citation carried an OpenAlex ID
	// before matching started; no scoring or retrieval was performed.
	OutcomeAlreadyMatched

	// OutcomeAutoAccepted means the best candidate cleared a threshold
	// and its ID was attached without human involvement.
	OutcomeAutoAccepted

	// OutcomePendingReview means the best candidate landed in the
	// maybe band while interactive mode was requested but no
	// confirmer was available to decide.
	OutcomePendingReview

	// OutcomeUserAccepted means a human confirmed a maybe-band candidate.
	OutcomeUserAccepted

	// OutcomeUserRejected means a human declined a maybe-band candidate.
	OutcomeUserRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoMatch:
		return "no-match"
	case OutcomeAlreadyMatched:
		return "already-matched"
	case OutcomeAutoAccepted:
		return "auto-accepted"
	case OutcomePendingReview:
		return "pending-review"
	case OutcomeUserAccepted:
		return "user-accepted"
	case OutcomeUserRejected:
		return "user-rejected"
	default:
		return "unknown"
	}
}

// Matched reports whether the outcome attached (or kept) an OpenAlex ID.
func (o Outcome) Matched() bool {
	switch o {
	case OutcomeAlreadyMatched, OutcomeAutoAccepted, OutcomeUserAccepted:
		return true
	}
	return false
}

// Decision records how one citation was resolved in a pipeline run.
// Transient: produced once per citation per run, used for logging and
// the audit store.
type Decision struct {
	// Outcome tags the terminal state.
	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// WorkID is the short-form OpenAlex ID that was attached or, for
	// rejected/pending outcomes, the ID that was under consideration.
	WorkID string `json:"work_id,omitempty" yaml:"work_id,omitempty"`

	// Score is the best candidate's overall score, 0 when no
	// candidates were scored.
	Score float64 `json:"score,omitempty" yaml:"score,omitempty"`
}
