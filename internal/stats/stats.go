// Package stats derives aggregate counters and dashboard indicators from a
// student's school choices, documents, and computed stage states. All
// builders are pure projections that tolerate empty inputs.
package stats

import (
	"math"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
)

// StatusCounts buckets choices by their interpreted lifecycle status.
// Prepared-but-unsent choices count as not submitted.
type StatusCounts struct {
	NotSubmitted int `json:"not_submitted"`
	Submitted    int `json:"submitted"`
	UnderReview  int `json:"under_review"`
	Accepted     int `json:"accepted"`
	Rejected     int `json:"rejected"`
	Waitlisted   int `json:"waitlisted"`
}

// TypeCounts buckets choices by application strategy. Choices whose type
// matches none of the three known strategies are excluded from every
// bucket, so the bucket sum may undercount Total.
type TypeCounts struct {
	Reach  int `json:"reach"`
	Target int `json:"target"`
	Safety int `json:"safety"`
}

// ChoiceStats is the aggregate view over a student's school choices.
type ChoiceStats struct {
	Total          int          `json:"total"`
	ByStatus       StatusCounts `json:"by_status"`
	ByType         TypeCounts   `json:"by_type"`
	AcceptanceRate int          `json:"acceptance_rate"` // rounded percent
}

// BuildChoiceStats computes the aggregate statistics for a choice list.
// The acceptance rate is taken only over choices with a terminal decision;
// an empty denominator yields 0, never NaN.
func BuildChoiceStats(choices []model.SchoolChoice) ChoiceStats {
	s := ChoiceStats{Total: len(choices)}

	for _, c := range choices {
		switch d := c.Decision(); d {
		case model.DecisionAccepted:
			s.ByStatus.Accepted++
		case model.DecisionRejected:
			s.ByStatus.Rejected++
		case model.DecisionWaitlisted:
			s.ByStatus.Waitlisted++
		default:
			switch model.ClassifySubmission(c.SubmissionStatus) {
			case model.SubmissionSubmitted:
				s.ByStatus.Submitted++
			case model.SubmissionUnderReview:
				s.ByStatus.UnderReview++
			default:
				s.ByStatus.NotSubmitted++
			}
		}

		switch model.ClassifyApplicationType(c.ApplicationType) {
		case model.TypeReach:
			s.ByType.Reach++
		case model.TypeTarget:
			s.ByType.Target++
		case model.TypeSafety:
			s.ByType.Safety++
		}
	}

	decided := s.ByStatus.Accepted + s.ByStatus.Rejected + s.ByStatus.Waitlisted
	if decided > 0 {
		s.AcceptanceRate = int(math.Round(float64(s.ByStatus.Accepted) / float64(decided) * 100))
	}
	return s
}
