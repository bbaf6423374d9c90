package stats

import (
	"strconv"
	"time"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
	"github.com/crossbridge-edu/advisory-cli/internal/stage"
)

// Tone is the visual severity attached to a dashboard indicator.
type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// Indicator is one dashboard counter.
type Indicator struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Tone  Tone   `json:"tone"`
}

// dueSoonWindow is how far ahead a document deadline counts as urgent.
const dueSoonWindow = 48 * time.Hour

// BuildIndicators derives the four fixed dashboard indicators from merged
// stage states, the document checklist, and the choice list. Pure
// projection: empty inputs produce zero-valued indicators.
func BuildIndicators(stages []stage.State, documents []model.Document, choices []model.SchoolChoice, now time.Time) []Indicator {
	blocked := 0
	for _, st := range stages {
		if st.Status == model.StatusBlocked {
			blocked++
		}
	}

	dueSoon := 0
	var nearest *time.Time
	for _, d := range documents {
		if d.DueDate == nil {
			continue
		}
		due := *d.DueDate
		// Overdue unfinished documents stay in the urgent count.
		if !d.Done() && due.Before(now.Add(dueSoonWindow)) {
			dueSoon++
		}
		if due.After(now) && (nearest == nil || due.Before(*nearest)) {
			nearest = &due
		}
	}

	missingCreds := 0
	for _, c := range choices {
		if model.ClassifySubmission(c.SubmissionStatus).Finalized() && c.PortalUsername == "" {
			missingCreds++
		}
	}

	deadlineLabel := "none"
	if nearest != nil {
		deadlineLabel = nearest.Format("Jan 2")
	}

	return []Indicator{
		{Label: "Blocked stages", Value: strconv.Itoa(blocked), Tone: toneIf(blocked > 0, ToneDanger, ToneSuccess)},
		{Label: "Documents due in 2 days", Value: strconv.Itoa(dueSoon), Tone: toneIf(dueSoon > 0, ToneWarning, ToneSuccess)},
		{Label: "Forms missing portal account", Value: strconv.Itoa(missingCreds), Tone: toneIf(missingCreds > 0, ToneWarning, ToneSuccess)},
		{Label: "Next document deadline", Value: deadlineLabel, Tone: ToneInfo},
	}
}

func toneIf(cond bool, yes, no Tone) Tone {
	if cond {
		return yes
	}
	return no
}
