package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresGetProfileMissing(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM students WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	p, err := store.GetProfile(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetProfile(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "name", "email", "phone", "current_school", "major", "gpa",
		"target_degree", "target_country", "mentor_name", "notes",
		"created_at", "updated_at", "archived_at",
	}).AddRow("s-1", "Li Wei", "li@example.com", "", "Fudan University", "CS", 3.7,
		"MS", "US", "Chen", "", now, now, nil)

	mock.ExpectQuery(`SELECT .+ FROM students WHERE id = \$1`).
		WithArgs("s-1").
		WillReturnRows(rows)

	p, err := store.GetProfile(context.Background(), "s-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Li Wei", p.Name)
	assert.Equal(t, "US", p.TargetCountry)
	assert.Nil(t, p.ArchivedAt)
	assert.True(t, p.Complete())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateStudent(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO students`).
		WithArgs(pgxmock.AnyArg(), "Zhang San", "zs@example.com", "", "", "", 0.0,
			"", "", "", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p, err := store.CreateStudent(context.Background(), model.StudentProfile{
		Name:  "Zhang San",
		Email: "zs@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateStudentNotFound(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE students SET`).
		WithArgs("", "", "", "", "", 0.0, "", "", "", "", pgxmock.AnyArg(), "gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.UpdateStudent(context.Background(), model.StudentProfile{ID: "gone"})
	assert.ErrorContains(t, err, "student not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresHasStudent(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("s-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := store.HasStudent(context.Background(), "s-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListStudentsFilters(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "name", "email", "phone", "current_school", "major", "gpa",
		"target_degree", "target_country", "mentor_name", "notes",
		"created_at", "updated_at", "archived_at",
	}).AddRow("s-1", "Li Wei", "", "", "", "", 0.0, "", "UK", "Chen", "", now, now, nil)

	mock.ExpectQuery(`SELECT .+ FROM students WHERE true AND archived_at IS NULL AND mentor_name = \$1 AND target_country = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs("Chen", "UK", 100).
		WillReturnRows(rows)

	students, err := store.ListStudents(context.Background(), StudentFilter{Mentor: "Chen", TargetCountry: "UK"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Li Wei", students[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetChoicesEmpty(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM school_choices WHERE student_id = \$1`).
		WithArgs("s-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "student_id", "school", "program", "application_type",
			"submission_status", "decision_result", "deadline", "priority_rank",
			"portal_username", "notes", "created_at", "updated_at",
		}))

	choices, err := store.GetChoices(context.Background(), "s-1")
	require.NoError(t, err)
	assert.NotNil(t, choices)
	assert.Empty(t, choices)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAddChoice(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO school_choices`).
		WithArgs(pgxmock.AnyArg(), "s-1", "MIT", "EECS", "冲刺", "已投递", "",
			(*time.Time)(nil), (*int)(nil), "", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	c, err := store.AddChoice(context.Background(), model.SchoolChoice{
		StudentID:        "s-1",
		School:           "MIT",
		Program:          "EECS",
		ApplicationType:  "冲刺",
		SubmissionStatus: "已投递",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateDocumentStatus(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	progress := 60

	mock.ExpectExec(`UPDATE documents SET`).
		WithArgs("撰写中", &progress, pgxmock.AnyArg(), "d-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := store.UpdateDocumentStatus(context.Background(), "d-1", "撰写中", &progress)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAddServiceRecordInvalidDetail(t *testing.T) {
	store, _ := newMockPostgresStore(t)

	_, err := store.AddServiceRecord(context.Background(), model.ServiceRecord{
		StudentID: "s-1",
		Detail:    []byte(`{not json`),
	})
	assert.ErrorContains(t, err, "not valid JSON")
}

func TestPostgresGetServiceRecords(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "student_id", "status", "progress", "detail", "created_at", "updated_at",
	}).AddRow("r-1", "s-1", "已完成", 70.0, []byte(`{"stage":"submission"}`), now, now)

	mock.ExpectQuery(`SELECT .+ FROM service_records WHERE student_id = \$1`).
		WithArgs("s-1").
		WillReturnRows(rows)

	recs, err := store.GetServiceRecords(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.JSONEq(t, `{"stage":"submission"}`, string(recs[0].Detail))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertSchools(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_schools"},
		[]string{"id", "name", "country", "ranking", "website", "updated_at"}).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "schools"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()
	mock.ExpectRollback()

	n, err := store.UpsertSchools(context.Background(), []model.School{
		{Name: "MIT", Country: "US", Ranking: 1, Website: "https://mit.edu"},
		{Name: "Oxford", Country: "UK", Ranking: 3, Website: "https://ox.ac.uk"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListSchools(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"id", "name", "country", "ranking", "website"}).
		AddRow("sc-1", "Oxford", "UK", 3, "https://ox.ac.uk")

	mock.ExpectQuery(`SELECT .+ FROM schools WHERE true AND country = \$1`).
		WithArgs("UK", 200).
		WillReturnRows(rows)

	schools, err := store.ListSchools(context.Background(), "UK", 0)
	require.NoError(t, err)
	require.Len(t, schools, 1)
	assert.Equal(t, "Oxford", schools[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
