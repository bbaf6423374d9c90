package stage

import (
	"math"

	"go.uber.org/zap"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
)

// MergeOverrides folds service records into an inference. A record whose
// detail blob resolves to a stage overrides that one stage: status maps
// through the override classifier, progress is raised (never lowered), and
// owner/deadline/blocking reason replace the inferred values outright.
//
// Records with no detail, an unparsable blob, or an unmatched stage key
// are skipped with a warning; they never abort the merge of the others.
// The fold is idempotent, and commutative across records targeting
// different stages. Two records on the same stage: the later one wins the
// scalar fields while progress keeps the running maximum.
func MergeOverrides(inf Inference, records []model.ServiceRecord) Inference {
	inf.Stages = append([]State(nil), inf.Stages...)
	for _, rec := range records {
		detail, err := model.ParseOverrideDetail(rec.Detail)
		if err != nil {
			zap.L().Warn("stage: skipping malformed override detail",
				zap.String("record_id", rec.ID),
				zap.Error(err),
			)
			continue
		}
		if detail == nil || detail.Stage == "" {
			continue
		}

		target, ok := MatchStage(detail.Stage)
		if !ok {
			zap.L().Warn("stage: override names unknown stage",
				zap.String("record_id", rec.ID),
				zap.String("stage_key", detail.Stage),
			)
			continue
		}

		st := &inf.Stages[target.Index()]
		st.Status = model.ClassifyOverrideStatus(rec.Status, detail.BlockingReason != "")
		st.Progress = math.Max(st.Progress, clampProgress(rec.Progress))
		if detail.Owner != "" {
			st.Owner = detail.Owner
		}
		if dl := detail.DeadlineTime(); dl != nil {
			st.Deadline = dl
		}
		if detail.BlockingReason != "" {
			st.BlockingReasons = []string{detail.BlockingReason}
		}
	}
	return inf
}
