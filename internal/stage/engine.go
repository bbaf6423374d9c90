package stage

import (
	"math"
	"time"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
)

// DetailLevel controls how much the engine surfaces to the viewer. The
// admin workstation wants blocking reasons; the student progress view
// only shows the stage bar.
type DetailLevel int

const (
	DetailSummary DetailLevel = iota
	DetailDetailed
)

// State is the computed condition of a single pipeline stage.
type State struct {
	ID              model.StageID     `json:"id"`
	Label           string            `json:"label"`
	Status          model.StageStatus `json:"status"`
	Progress        float64           `json:"progress"` // 0-100
	BlockingReasons []string          `json:"blocking_reasons,omitempty"`
	Owner           string            `json:"owner,omitempty"`
	Deadline        *time.Time        `json:"deadline,omitempty"`
}

// Inference is the engine's full output: the current stage plus the state
// of every stage in canonical order.
type Inference struct {
	CurrentStage model.StageID `json:"current_stage"`
	CurrentIndex int           `json:"current_index"`
	Stages       []State       `json:"stages"`
}

// minPrepCompletion is the average completion score preparation-relevant
// documents must reach before the preparation stage counts as done.
const minPrepCompletion = 0.8

// evidence holds the per-stage signals extracted once from the raw records.
type evidence struct {
	profileComplete bool

	totalChoices     int
	finalizedChoices int
	submittedChoices int
	decidedChoices   int
	acceptedChoices  int
	interviewNoted   bool

	hasDocuments   bool
	prepDocs       []model.Document
	submissionDocs []model.Document
	visaDocs       []model.Document
}

func gatherEvidence(profile *model.StudentProfile, choices []model.SchoolChoice, docs []model.Document) evidence {
	ev := evidence{
		profileComplete: profile.Complete(),
		totalChoices:    len(choices),
		hasDocuments:    len(docs) > 0,
	}

	for _, c := range choices {
		sub := model.ClassifySubmission(c.SubmissionStatus)
		if sub.Finalized() {
			ev.finalizedChoices++
		}
		if sub.Submitted() {
			ev.submittedChoices++
		}
		switch d := c.Decision(); {
		case d == model.DecisionInterview:
			ev.interviewNoted = true
		case d.Terminal():
			ev.decidedChoices++
			if d == model.DecisionAccepted {
				ev.acceptedChoices++
			}
		}
	}

	for _, d := range docs {
		matched, ok := classifyDocument(d)
		switch {
		case ok && matched == model.StageSubmission:
			ev.submissionDocs = append(ev.submissionDocs, d)
		case ok && matched == model.StageInterview:
			// Interview prep sheets contribute to no stage's average.
		case ok && matched == model.StageVisa:
			ev.visaDocs = append(ev.visaDocs, d)
		default:
			// Everything else, including unclassified material, counts
			// toward preparation.
			ev.prepDocs = append(ev.prepDocs, d)
		}
	}

	return ev
}

// averageScore is the mean document completion score, or fallback when the
// set is empty. Guards every division in the engine: progress math must
// never produce NaN.
func averageScore(docs []model.Document, fallback float64) float64 {
	if len(docs) == 0 {
		return fallback
	}
	var sum float64
	for _, d := range docs {
		sum += d.CompletionScore()
	}
	return sum / float64(len(docs))
}

// stageDone reports whether direct evidence shows the given stage finished.
// Visa never completes through inference; it is the terminal stage.
func (ev evidence) stageDone(id model.StageID) bool {
	switch id {
	case model.StageEvaluation:
		return ev.profileComplete
	case model.StageSchoolSelection:
		return ev.finalizedChoices > 0
	case model.StagePreparation:
		return ev.hasDocuments && averageScore(ev.prepDocs, 0) >= minPrepCompletion
	case model.StageSubmission:
		return ev.submittedChoices > 0
	case model.StageInterview:
		return ev.interviewNoted || ev.decidedChoices > 0
	case model.StageDecision:
		return ev.decidedChoices > 0
	}
	return false
}

// Infer computes the current pipeline stage, per-stage status and progress,
// and the blocking reasons for the current stage.
//
// Each stage owns a completion predicate over the raw records. Evidence of
// a later stage implies the earlier ones: a student with an accepted offer
// is past submission even if their profile record was never filled in. The
// current stage is the lowest-index stage not completed under that closure,
// capped at decision unless an acceptance moves the student into visa.
func Infer(profile *model.StudentProfile, choices []model.SchoolChoice, documents []model.Document, detail DetailLevel) Inference {
	ev := gatherEvidence(profile, choices, documents)

	// done[i]: stage i or any later stage shows direct completion evidence.
	done := make([]bool, model.StageCount)
	for i := model.StageCount - 1; i >= 0; i-- {
		done[i] = ev.stageDone(model.StageOrder[i])
		if i < model.StageCount-1 && done[i+1] {
			done[i] = true
		}
	}

	current := model.StageCount - 2 // decision is the default resting stage
	for i := 0; i < model.StageCount-1; i++ {
		if !done[i] {
			current = i
			break
		}
	}
	if done[model.StageDecision.Index()] && ev.acceptedChoices > 0 {
		current = model.StageVisa.Index()
	}

	inf := Inference{
		CurrentStage: model.StageOrder[current],
		CurrentIndex: current,
		Stages:       make([]State, model.StageCount),
	}
	for i, id := range model.StageOrder {
		st := State{ID: id, Label: id.Label()}
		switch {
		case i < current:
			st.Status = model.StatusCompleted
			st.Progress = 100
		case i == current:
			st.Status = model.StatusInProgress
			st.Progress = clampProgress(ev.stageProgress(id))
			if detail == DetailDetailed {
				st.BlockingReasons = ev.blockingReasons(id)
			}
		default:
			st.Status = model.StatusNotStarted
			st.Progress = 0
		}
		inf.Stages[i] = st
	}
	return inf
}

// stageProgress computes the progress percentage of the given stage were
// it current. Empty input sets short-circuit to each rule's literal
// default rather than dividing by zero.
func (ev evidence) stageProgress(id model.StageID) float64 {
	switch id {
	case model.StageEvaluation:
		if ev.profileComplete {
			return 100
		}
		return 30
	case model.StageSchoolSelection:
		if ev.totalChoices == 0 {
			return 20
		}
		if ev.finalizedChoices == 0 {
			return 40
		}
		return float64(ev.finalizedChoices) / float64(ev.totalChoices) * 100
	case model.StagePreparation:
		if !ev.hasDocuments {
			return 10
		}
		return averageScore(ev.prepDocs, 0) * 100
	case model.StageSubmission:
		return averageScore(ev.submissionDocs, 0) * 100
	case model.StageInterview:
		if ev.interviewNoted {
			return 40
		}
		return 10
	case model.StageDecision:
		if ev.totalChoices == 0 {
			return 0
		}
		return float64(ev.decidedChoices) / float64(ev.totalChoices) * 100
	case model.StageVisa:
		return averageScore(ev.visaDocs, 0) * 100
	}
	return 0
}

// blockingReasons explains why the given stage has not advanced. Advisory
// only: the list annotates the current stage, it never gates recomputation.
func (ev evidence) blockingReasons(id model.StageID) []string {
	var reasons []string
	switch id {
	case model.StageEvaluation:
		if !ev.profileComplete {
			reasons = append(reasons, "profile incomplete")
		}
	case model.StageSchoolSelection:
		if ev.totalChoices == 0 {
			reasons = append(reasons, "no school choices added")
		} else if ev.finalizedChoices == 0 {
			reasons = append(reasons, "no school choice finalized")
		}
	case model.StagePreparation:
		if !ev.hasDocuments {
			reasons = append(reasons, "no application materials on file")
		} else if averageScore(ev.prepDocs, 0) < minPrepCompletion {
			reasons = append(reasons, "application materials incomplete")
		}
	case model.StageSubmission:
		if ev.submittedChoices == 0 {
			reasons = append(reasons, "no application submitted")
		}
	case model.StageInterview:
		if !ev.interviewNoted {
			reasons = append(reasons, "awaiting interview invitations")
		}
	case model.StageDecision:
		if ev.decidedChoices < ev.totalChoices {
			reasons = append(reasons, "awaiting admission decisions")
		}
	case model.StageVisa:
		if averageScore(ev.visaDocs, 0) < 1 {
			reasons = append(reasons, "visa documents incomplete")
		}
	}
	return reasons
}

// clampProgress clamps to [0, 100] and rounds to two decimals.
func clampProgress(p float64) float64 {
	p = math.Min(100, math.Max(0, p))
	return math.Round(p*100) / 100
}
