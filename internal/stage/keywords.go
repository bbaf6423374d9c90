// Package stage computes which pipeline stage a student's application is
// in, how complete that stage is, and what is blocking progress. The
// computation is a pure function over the fetched records: nothing is
// persisted and every evaluation starts from scratch.
package stage

import (
	"strings"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
)

// stageKeywords associates case-insensitive substrings (English and
// Chinese) with the stage they indicate. Matching walks the canonical
// stage order so the same text always resolves to the same stage.
var stageKeywords = map[model.StageID][]string{
	model.StageEvaluation:      {"evaluation", "背景", "评估"},
	model.StageSchoolSelection: {"school selection", "选校", "定校"},
	model.StagePreparation:     {"prep", "材料", "文书", "essay", "recommendation", "推荐信"},
	model.StageSubmission:      {"submission", "网申", "提交"},
	model.StageInterview:       {"interview", "面试"},
	model.StageDecision:        {"decision", "录取", "offer"},
	model.StageVisa:            {"visa", "签证", "行前"},
}

// MatchStage resolves free text (a document name/category or an override's
// stage key) to a pipeline stage by substring match. The second return is
// false when no keyword matches. Callers decide what unmatched means:
// override records with an unmatched stage key are dropped, while the
// evidence gatherer folds unmatched documents into preparation.
func MatchStage(text string) (model.StageID, bool) {
	s := model.Normalize(text)
	if s == "" {
		return "", false
	}
	for _, id := range model.StageOrder {
		for _, kw := range stageKeywords[id] {
			if strings.Contains(s, kw) {
				return id, true
			}
		}
	}
	return "", false
}

// classifyDocument resolves which stage a document belongs to from its
// name and category combined.
func classifyDocument(d model.Document) (model.StageID, bool) {
	return MatchStage(d.Name + " " + d.Category)
}

// documentsFor returns the documents keyword-matched to the given stage.
func documentsFor(id model.StageID, docs []model.Document) []model.Document {
	var out []model.Document
	for _, d := range docs {
		if matched, ok := classifyDocument(d); ok && matched == id {
			out = append(out, d)
		}
	}
	return out
}
