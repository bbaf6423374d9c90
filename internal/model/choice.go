package model

import "time"

// SchoolChoice is a single school+program a student may apply to, with its
// own submission and decision lifecycle. The status fields arrive as free
// text (often localized) and are interpreted through the Classify* helpers;
// the engine never mutates a choice.
type SchoolChoice struct {
	ID               string     `json:"id"`
	StudentID        string     `json:"student_id"`
	School           string     `json:"school"`
	Program          string     `json:"program,omitempty"`
	ApplicationType  string     `json:"application_type,omitempty"` // reach/target/safety, localized
	SubmissionStatus string     `json:"submission_status,omitempty"`
	DecisionResult   string     `json:"decision_result,omitempty"` // free text
	Deadline         *time.Time `json:"deadline,omitempty"`
	PriorityRank     *int       `json:"priority_rank,omitempty"`
	PortalUsername   string     `json:"portal_username,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SubmissionStatus is the closed variant behind the free-text
// submission_status field.
type SubmissionStatus string

const (
	SubmissionNotSubmitted SubmissionStatus = "not_submitted"
	SubmissionPrepared     SubmissionStatus = "prepared"
	SubmissionSubmitted    SubmissionStatus = "submitted"
	SubmissionUnderReview  SubmissionStatus = "under_review"
	SubmissionAccepted     SubmissionStatus = "accepted"
	SubmissionRejected     SubmissionStatus = "rejected"
	SubmissionWaitlisted   SubmissionStatus = "waitlisted"
)

// ClassifySubmission maps free-text submission status to its closed variant.
// Empty or unrecognized text classifies as not_submitted.
func ClassifySubmission(raw string) SubmissionStatus {
	s := Normalize(raw)
	switch {
	case s == "":
		return SubmissionNotSubmitted
	// Negated forms first: "not_submitted" would otherwise hit the
	// "submit" substring below.
	case containsAny(s, "not submit", "not_submit", "未提交", "未投递"):
		return SubmissionNotSubmitted
	case containsAny(s, "waitlist", "候补", "等待名单"):
		return SubmissionWaitlisted
	case containsAny(s, "reject", "拒", "未录"):
		return SubmissionRejected
	case containsAny(s, "accept", "offer", "录取"):
		return SubmissionAccepted
	case containsAny(s, "under_review", "review", "审核", "审理"):
		return SubmissionUnderReview
	case containsAny(s, "submit", "投递", "已提交", "网申完成"):
		return SubmissionSubmitted
	case containsAny(s, "prepar", "就绪", "待提交"):
		return SubmissionPrepared
	default:
		return SubmissionNotSubmitted
	}
}

// Finalized reports whether the choice has moved past not_submitted.
func (s SubmissionStatus) Finalized() bool {
	return s != SubmissionNotSubmitted
}

// Submitted reports whether the application has actually gone out the door.
func (s SubmissionStatus) Submitted() bool {
	switch s {
	case SubmissionSubmitted, SubmissionUnderReview,
		SubmissionAccepted, SubmissionRejected, SubmissionWaitlisted:
		return true
	}
	return false
}

// Decision is the closed variant behind the free-text decision_result field.
type Decision string

const (
	DecisionNone       Decision = "none"
	DecisionAccepted   Decision = "accepted"
	DecisionRejected   Decision = "rejected"
	DecisionWaitlisted Decision = "waitlisted"
	DecisionInterview  Decision = "interview" // interview requested, not terminal
)

// ClassifyDecision maps free-text decision_result to its closed variant.
func ClassifyDecision(raw string) Decision {
	s := Normalize(raw)
	switch {
	case s == "":
		return DecisionNone
	case containsAny(s, "waitlist", "候补"):
		return DecisionWaitlisted
	case containsAny(s, "reject", "拒", "未录"):
		return DecisionRejected
	case containsAny(s, "accept", "offer", "录取"):
		return DecisionAccepted
	case containsAny(s, "interview", "面试"):
		return DecisionInterview
	default:
		return DecisionNone
	}
}

// Terminal reports whether the decision ends the choice's lifecycle.
func (d Decision) Terminal() bool {
	switch d {
	case DecisionAccepted, DecisionRejected, DecisionWaitlisted:
		return true
	}
	return false
}

// Decision resolves the choice's decision from decision_result, falling
// back to a terminal submission status when the decision field is blank.
func (c SchoolChoice) Decision() Decision {
	if d := ClassifyDecision(c.DecisionResult); d != DecisionNone {
		return d
	}
	switch ClassifySubmission(c.SubmissionStatus) {
	case SubmissionAccepted:
		return DecisionAccepted
	case SubmissionRejected:
		return DecisionRejected
	case SubmissionWaitlisted:
		return DecisionWaitlisted
	}
	return DecisionNone
}

// ApplicationType is the closed variant behind the free-text
// application_type field.
type ApplicationType string

const (
	TypeReach   ApplicationType = "reach"
	TypeTarget  ApplicationType = "target"
	TypeSafety  ApplicationType = "safety"
	TypeUnknown ApplicationType = "unknown"
)

// ClassifyApplicationType maps free-text application type to its closed
// variant. Unmatched text classifies as unknown and is excluded from the
// reach/target/safety aggregate buckets.
func ClassifyApplicationType(raw string) ApplicationType {
	s := Normalize(raw)
	switch {
	case containsAny(s, "reach", "冲刺"):
		return TypeReach
	case containsAny(s, "target", "目标"):
		return TypeTarget
	case containsAny(s, "safety", "保底"):
		return TypeSafety
	default:
		return TypeUnknown
	}
}
