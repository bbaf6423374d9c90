package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
	"github.com/crossbridge-edu/advisory-cli/internal/stage"
)

func TestBuildIndicators_EmptyInputs(t *testing.T) {
	ind := BuildIndicators(nil, nil, nil, time.Now())

	require.Len(t, ind, 4)
	assert.Equal(t, "0", ind[0].Value)
	assert.Equal(t, ToneSuccess, ind[0].Tone)
	assert.Equal(t, "0", ind[1].Value)
	assert.Equal(t, ToneSuccess, ind[1].Tone)
	assert.Equal(t, "0", ind[2].Value)
	assert.Equal(t, "none", ind[3].Value)
	assert.Equal(t, ToneInfo, ind[3].Tone)
}

func TestBuildIndicators_BlockedStages(t *testing.T) {
	stages := []stage.State{
		{ID: model.StageEvaluation, Status: model.StatusCompleted},
		{ID: model.StageSubmission, Status: model.StatusBlocked},
		{ID: model.StageVisa, Status: model.StatusBlocked},
	}

	ind := BuildIndicators(stages, nil, nil, time.Now())

	assert.Equal(t, "2", ind[0].Value)
	assert.Equal(t, ToneDanger, ind[0].Tone)
}

func TestBuildIndicators_DueSoonDocuments(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	tomorrow := now.Add(24 * time.Hour)
	nextWeek := now.Add(7 * 24 * time.Hour)

	docs := []model.Document{
		{Name: "签证申请表", Status: "未开始", DueDate: &tomorrow},
		{Name: "护照", Status: "已完成", DueDate: &tomorrow}, // done, not urgent
		{Name: "CV", Status: "", DueDate: &nextWeek},      // too far out
		{Name: "Essay", Status: ""},                       // no deadline
	}

	ind := BuildIndicators(nil, docs, nil, now)

	assert.Equal(t, "1", ind[1].Value)
	assert.Equal(t, ToneWarning, ind[1].Tone)
	assert.Equal(t, "Aug 30", ind[3].Value, "nearest upcoming deadline as a short date")
	assert.Equal(t, ToneInfo, ind[3].Tone)
}

func TestBuildIndicators_MissingPortalCredentials(t *testing.T) {
	choices := []model.SchoolChoice{
		{School: "A", SubmissionStatus: "prepared"},                             // finalized, no account
		{School: "B", SubmissionStatus: "submitted", PortalUsername: "wang123"}, // has account
		{School: "C", SubmissionStatus: "not_submitted"},                        // not finalized yet
	}

	ind := BuildIndicators(nil, nil, choices, time.Now())

	assert.Equal(t, "1", ind[2].Value)
	assert.Equal(t, ToneWarning, ind[2].Tone)
}
