package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStudentRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := s.CreateStudent(ctx, model.StudentProfile{
		Name:          "Li Wei",
		Email:         "li@example.com",
		CurrentSchool: "Fudan University",
		Major:         "Computer Science",
		GPA:           3.7,
		TargetDegree:  "MS",
		TargetCountry: "US",
		MentorName:    "Chen",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.GetProfile(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Li Wei", got.Name)
	assert.Equal(t, 3.7, got.GPA)
	assert.Nil(t, got.ArchivedAt)

	ok, err := s.HasStudent(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got.Major = "Data Science"
	require.NoError(t, s.UpdateStudent(ctx, *got))

	updated, err := s.GetProfile(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Data Science", updated.Major)
}

func TestSQLiteGetProfileMissing(t *testing.T) {
	s := newTestSQLiteStore(t)

	p, err := s.GetProfile(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, p)

	ok, err := s.HasStudent(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteUpdateStudentNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	err := s.UpdateStudent(context.Background(), model.StudentProfile{ID: "ghost"})
	assert.ErrorContains(t, err, "student not found")
}

func TestSQLiteListStudentsFilters(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.CreateStudent(ctx, model.StudentProfile{Name: "A", MentorName: "Chen", TargetCountry: "US"})
	require.NoError(t, err)
	_, err = s.CreateStudent(ctx, model.StudentProfile{Name: "B", MentorName: "Chen", TargetCountry: "UK"})
	require.NoError(t, err)
	_, err = s.CreateStudent(ctx, model.StudentProfile{Name: "C", MentorName: "Wang", TargetCountry: "US"})
	require.NoError(t, err)

	all, err := s.ListStudents(ctx, StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	chen, err := s.ListStudents(ctx, StudentFilter{Mentor: "Chen"})
	require.NoError(t, err)
	assert.Len(t, chen, 2)

	chenUS, err := s.ListStudents(ctx, StudentFilter{Mentor: "Chen", TargetCountry: "US"})
	require.NoError(t, err)
	require.Len(t, chenUS, 1)
	assert.Equal(t, "A", chenUS[0].Name)

	limited, err := s.ListStudents(ctx, StudentFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteChoicesOrderedByPriority(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	student, err := s.CreateStudent(ctx, model.StudentProfile{Name: "Li Wei"})
	require.NoError(t, err)

	rank2, rank1 := 2, 1
	_, err = s.AddChoice(ctx, model.SchoolChoice{StudentID: student.ID, School: "Backup U"})
	require.NoError(t, err)
	_, err = s.AddChoice(ctx, model.SchoolChoice{StudentID: student.ID, School: "Oxford", PriorityRank: &rank2})
	require.NoError(t, err)
	_, err = s.AddChoice(ctx, model.SchoolChoice{StudentID: student.ID, School: "MIT", PriorityRank: &rank1})
	require.NoError(t, err)

	choices, err := s.GetChoices(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, choices, 3)
	assert.Equal(t, "MIT", choices[0].School)
	assert.Equal(t, "Oxford", choices[1].School)
	assert.Equal(t, "Backup U", choices[2].School)
}

func TestSQLiteUpdateChoiceStatus(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	student, err := s.CreateStudent(ctx, model.StudentProfile{Name: "Li Wei"})
	require.NoError(t, err)
	choice, err := s.AddChoice(ctx, model.SchoolChoice{StudentID: student.ID, School: "MIT", SubmissionStatus: "已投递"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateChoiceStatus(ctx, choice.ID, "已投递", "已录取"))

	choices, err := s.GetChoices(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, choices, 1)
	assert.Equal(t, "已录取", choices[0].DecisionResult)
	assert.Equal(t, model.DecisionAccepted, choices[0].Decision())
}

func TestSQLiteDocumentRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	student, err := s.CreateStudent(ctx, model.StudentProfile{Name: "Li Wei"})
	require.NoError(t, err)

	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	doc, err := s.AddDocument(ctx, model.Document{
		StudentID: student.ID,
		Name:      "Personal Statement",
		Category:  "文书",
		Status:    "草稿",
		DueDate:   &due,
		Required:  true,
	})
	require.NoError(t, err)

	progress := 80
	require.NoError(t, s.UpdateDocumentStatus(ctx, doc.ID, "定稿", &progress))

	docs, err := s.GetDocuments(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "定稿", docs[0].Status)
	require.NotNil(t, docs[0].Progress)
	assert.Equal(t, 80, *docs[0].Progress)
	require.NotNil(t, docs[0].DueDate)
	assert.True(t, docs[0].DueDate.Equal(due))
	assert.True(t, docs[0].Done())
}

func TestSQLiteServiceRecordDetail(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	student, err := s.CreateStudent(ctx, model.StudentProfile{Name: "Li Wei"})
	require.NoError(t, err)

	_, err = s.AddServiceRecord(ctx, model.ServiceRecord{
		StudentID: student.ID,
		Status:    "进行中",
		Progress:  55,
		Detail:    []byte(`{"stage":"submission","owner":"Chen"}`),
	})
	require.NoError(t, err)

	_, err = s.AddServiceRecord(ctx, model.ServiceRecord{
		StudentID: student.ID,
		Detail:    []byte(`not json`),
	})
	assert.ErrorContains(t, err, "not valid JSON")

	recs, err := s.GetServiceRecords(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.JSONEq(t, `{"stage":"submission","owner":"Chen"}`, string(recs[0].Detail))

	detail, err := model.ParseOverrideDetail(recs[0].Detail)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "submission", detail.Stage)
}

func TestSQLiteUpsertSchools(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := s.UpsertSchools(ctx, []model.School{
		{Name: "MIT", Country: "US", Ranking: 1},
		{Name: "Oxford", Country: "UK", Ranking: 3},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// second pass updates in place, no duplicate rows
	n, err = s.UpsertSchools(ctx, []model.School{
		{Name: "MIT", Country: "US", Ranking: 2, Website: "https://mit.edu"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	us, err := s.ListSchools(ctx, "US", 0)
	require.NoError(t, err)
	require.Len(t, us, 1)
	assert.Equal(t, 2, us[0].Ranking)
	assert.Equal(t, "https://mit.edu", us[0].Website)

	all, err := s.ListSchools(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
