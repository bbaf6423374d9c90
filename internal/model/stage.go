package model

// StageID identifies one step of the fixed application pipeline.
type StageID string

const (
	StageEvaluation      StageID = "evaluation"
	StageSchoolSelection StageID = "school_selection"
	StagePreparation     StageID = "preparation"
	StageSubmission      StageID = "submission"
	StageInterview       StageID = "interview"
	StageDecision        StageID = "decision"
	StageVisa            StageID = "visa"
)

// StageOrder is the canonical pipeline order. It is never reordered at
// runtime: the index of a stage defines "progress so far".
var StageOrder = [...]StageID{
	StageEvaluation,
	StageSchoolSelection,
	StagePreparation,
	StageSubmission,
	StageInterview,
	StageDecision,
	StageVisa,
}

// StageCount is the number of pipeline stages.
const StageCount = len(StageOrder)

var stageIndex = func() map[StageID]int {
	m := make(map[StageID]int, StageCount)
	for i, id := range StageOrder {
		m[id] = i
	}
	return m
}()

var stageLabels = map[StageID]string{
	StageEvaluation:      "Background Evaluation",
	StageSchoolSelection: "School Selection",
	StagePreparation:     "Material Preparation",
	StageSubmission:      "Application Submission",
	StageInterview:       "Interviews",
	StageDecision:        "Admission Decisions",
	StageVisa:            "Visa & Pre-Departure",
}

// Index returns the position of s in the canonical order, or -1 for an
// unknown stage.
func (s StageID) Index() int {
	if i, ok := stageIndex[s]; ok {
		return i
	}
	return -1
}

// Label returns the human-readable label for the stage.
func (s StageID) Label() string {
	return stageLabels[s]
}

// Valid reports whether s is one of the seven pipeline stages.
func (s StageID) Valid() bool {
	_, ok := stageIndex[s]
	return ok
}

// StageStatus is the per-stage progress state surfaced to viewers.
type StageStatus string

const (
	StatusNotStarted StageStatus = "not_started"
	StatusInProgress StageStatus = "in_progress"
	StatusCompleted  StageStatus = "completed"
	StatusBlocked    StageStatus = "blocked"
	StatusPaused     StageStatus = "paused"
)
