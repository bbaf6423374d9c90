package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySubmission(t *testing.T) {
	cases := []struct {
		raw  string
		want SubmissionStatus
	}{
		{"", SubmissionNotSubmitted},
		{"not_submitted", SubmissionNotSubmitted},
		{"not submitted", SubmissionNotSubmitted},
		{"未提交", SubmissionNotSubmitted},
		{"未投递", SubmissionNotSubmitted},
		{"random text", SubmissionNotSubmitted},
		{"prepared", SubmissionPrepared},
		{"待提交", SubmissionPrepared},
		{"submitted", SubmissionSubmitted},
		{"已投递", SubmissionSubmitted},
		{"under_review", SubmissionUnderReview},
		{"审核中", SubmissionUnderReview},
		{"accepted", SubmissionAccepted},
		{"已录取", SubmissionAccepted},
		{"Offer received", SubmissionAccepted},
		{"rejected", SubmissionRejected},
		{"被拒", SubmissionRejected},
		{"waitlisted", SubmissionWaitlisted},
		{"候补名单", SubmissionWaitlisted},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifySubmission(tc.raw), "raw=%q", tc.raw)
	}
}

func TestClassifySubmission_FullWidth(t *testing.T) {
	// Full-width latin from CJK input methods folds before matching.
	assert.Equal(t, SubmissionAccepted, ClassifySubmission("ＡＣＣＥＰＴＥＤ"))
}

func TestSubmissionStatus_Finalized(t *testing.T) {
	assert.False(t, SubmissionNotSubmitted.Finalized())
	assert.True(t, SubmissionPrepared.Finalized())
	assert.True(t, SubmissionSubmitted.Finalized())
}

func TestSubmissionStatus_Submitted(t *testing.T) {
	assert.False(t, SubmissionNotSubmitted.Submitted())
	assert.False(t, SubmissionPrepared.Submitted())
	assert.True(t, SubmissionSubmitted.Submitted())
	assert.True(t, SubmissionUnderReview.Submitted())
	assert.True(t, SubmissionAccepted.Submitted())
}

func TestClassifyDecision(t *testing.T) {
	cases := []struct {
		raw  string
		want Decision
	}{
		{"", DecisionNone},
		{"pending", DecisionNone},
		{"accepted", DecisionAccepted},
		{"已录取", DecisionAccepted},
		{"offer!", DecisionAccepted},
		{"rejected", DecisionRejected},
		{"拒信", DecisionRejected},
		{"waitlist", DecisionWaitlisted},
		{"候补", DecisionWaitlisted},
		{"interview requested", DecisionInterview},
		{"面试邀请", DecisionInterview},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyDecision(tc.raw), "raw=%q", tc.raw)
	}
}

func TestDecision_Terminal(t *testing.T) {
	assert.True(t, DecisionAccepted.Terminal())
	assert.True(t, DecisionRejected.Terminal())
	assert.True(t, DecisionWaitlisted.Terminal())
	assert.False(t, DecisionInterview.Terminal())
	assert.False(t, DecisionNone.Terminal())
}

func TestSchoolChoice_Decision_FallsBackToSubmissionStatus(t *testing.T) {
	c := SchoolChoice{SubmissionStatus: "accepted"}
	assert.Equal(t, DecisionAccepted, c.Decision())

	c = SchoolChoice{SubmissionStatus: "under_review"}
	assert.Equal(t, DecisionNone, c.Decision())

	// Explicit decision result wins over submission status.
	c = SchoolChoice{SubmissionStatus: "accepted", DecisionResult: "waitlist"}
	assert.Equal(t, DecisionWaitlisted, c.Decision())
}

func TestClassifyApplicationType(t *testing.T) {
	assert.Equal(t, TypeReach, ClassifyApplicationType("reach"))
	assert.Equal(t, TypeReach, ClassifyApplicationType("冲刺院校"))
	assert.Equal(t, TypeTarget, ClassifyApplicationType("目标院校"))
	assert.Equal(t, TypeSafety, ClassifyApplicationType("保底"))
	assert.Equal(t, TypeUnknown, ClassifyApplicationType("dream school"))
	assert.Equal(t, TypeUnknown, ClassifyApplicationType(""))
}

func TestClassifyDocumentStatus(t *testing.T) {
	assert.Equal(t, DocNotStarted, ClassifyDocumentStatus(""))
	assert.Equal(t, DocNotStarted, ClassifyDocumentStatus("未开始"))
	assert.Equal(t, DocNotStarted, ClassifyDocumentStatus("not submitted"))
	assert.Equal(t, DocNotStarted, ClassifyDocumentStatus("未提交"))
	assert.Equal(t, DocNotStarted, ClassifyDocumentStatus("未上传"))
	assert.Equal(t, DocInProgress, ClassifyDocumentStatus("in progress"))
	assert.Equal(t, DocInProgress, ClassifyDocumentStatus("撰写中"))
	assert.Equal(t, DocCompleted, ClassifyDocumentStatus("已完成"))
	assert.Equal(t, DocSubmitted, ClassifyDocumentStatus("submitted"))
	assert.Equal(t, DocSubmitted, ClassifyDocumentStatus("已提交"))
}
