// Package report assembles per-student progress snapshots by combining
// stored application data with the stage inference engine.
package report

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
	"github.com/crossbridge-edu/advisory-cli/internal/stage"
	"github.com/crossbridge-edu/advisory-cli/internal/stats"
	"github.com/crossbridge-edu/advisory-cli/internal/store"
)

// Snapshot is the full progress picture for one student.
type Snapshot struct {
	Profile     *model.StudentProfile `json:"profile"`
	Inference   stage.Inference       `json:"inference"`
	Stats       stats.ChoiceStats     `json:"stats"`
	Indicators  []stats.Indicator     `json:"indicators"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Builder loads a student's records and runs inference over them.
type Builder struct {
	store store.Store
}

func NewBuilder(s store.Store) *Builder {
	return &Builder{store: s}
}

// Build fetches profile, choices, documents and service records
// concurrently, then computes the inference, merges overrides and
// derives stats and indicators. Any fetch failure aborts the whole
// snapshot; partial data would produce a misleading stage reading.
func (b *Builder) Build(ctx context.Context, studentID string, detail stage.DetailLevel) (*Snapshot, error) {
	var (
		profile *model.StudentProfile
		choices []model.SchoolChoice
		docs    []model.Document
		records []model.ServiceRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = b.store.GetProfile(gctx, studentID)
		return err
	})
	g.Go(func() error {
		var err error
		choices, err = b.store.GetChoices(gctx, studentID)
		return err
	})
	g.Go(func() error {
		var err error
		docs, err = b.store.GetDocuments(gctx, studentID)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = b.store.GetServiceRecords(gctx, studentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrapf(err, "report: failed to load application data for %s", studentID)
	}

	inference := stage.Infer(profile, choices, docs, detail)
	inference = stage.MergeOverrides(inference, records)

	now := time.Now().UTC()
	snap := &Snapshot{
		Profile:     profile,
		Inference:   inference,
		Stats:       stats.BuildChoiceStats(choices),
		Indicators:  stats.BuildIndicators(inference.Stages, docs, choices, now),
		GeneratedAt: now,
	}
	zap.L().Debug("snapshot built",
		zap.String("student_id", studentID),
		zap.String("current_stage", string(inference.CurrentStage)),
		zap.Int("choices", len(choices)),
		zap.Int("documents", len(docs)))
	return snap, nil
}
