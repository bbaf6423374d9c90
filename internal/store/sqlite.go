package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
)

// SQLiteStore implements Store on an embedded sqlite database. It is
// meant for single-advisor local use; the Postgres store is the shared
// deployment.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a sqlite database at path. Use ":memory:"
// for an ephemeral store.
func NewSQLite(path string) (*SQLiteStore, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// sqlite allows at most one writer; keep the pool to a single
	// connection so in-memory databases are not silently duplicated.
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, eris.Wrapf(err, "sqlite: %s", pragma)
		}
	}
	return &SQLiteStore{db: conn}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS students (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL DEFAULT '',
	email          TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL DEFAULT '',
	current_school TEXT NOT NULL DEFAULT '',
	major          TEXT NOT NULL DEFAULT '',
	gpa            REAL NOT NULL DEFAULT 0,
	target_degree  TEXT NOT NULL DEFAULT '',
	target_country TEXT NOT NULL DEFAULT '',
	mentor_name    TEXT NOT NULL DEFAULT '',
	notes          TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL,
	archived_at    TIMESTAMP
);

CREATE TABLE IF NOT EXISTS school_choices (
	id                TEXT PRIMARY KEY,
	student_id        TEXT NOT NULL REFERENCES students(id),
	school            TEXT NOT NULL,
	program           TEXT NOT NULL DEFAULT '',
	application_type  TEXT NOT NULL DEFAULT '',
	submission_status TEXT NOT NULL DEFAULT '',
	decision_result   TEXT NOT NULL DEFAULT '',
	deadline          TIMESTAMP,
	priority_rank     INTEGER,
	portal_username   TEXT NOT NULL DEFAULT '',
	notes             TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMP NOT NULL,
	updated_at        TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	student_id TEXT NOT NULL REFERENCES students(id),
	name       TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	due_date   TIMESTAMP,
	required   INTEGER NOT NULL DEFAULT 0,
	progress   INTEGER,
	notes      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS service_records (
	id         TEXT PRIMARY KEY,
	student_id TEXT NOT NULL REFERENCES students(id),
	status     TEXT NOT NULL DEFAULT '',
	progress   REAL NOT NULL DEFAULT 0,
	detail     TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS schools (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	country    TEXT NOT NULL DEFAULT '',
	ranking    INTEGER NOT NULL DEFAULT 0,
	website    TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_choices_student ON school_choices(student_id);
CREATE INDEX IF NOT EXISTS idx_documents_student ON documents(student_id);
CREATE INDEX IF NOT EXISTS idx_service_records_student ON service_records(student_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return eris.Wrap(s.db.Close(), "sqlite: close")
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func scanTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func (s *SQLiteStore) CreateStudent(ctx context.Context, p model.StudentProfile) (*model.StudentProfile, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (id, name, email, phone, current_school, major, gpa, target_degree, target_country, mentor_name, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Email, p.Phone, p.CurrentSchool, p.Major, p.GPA,
		p.TargetDegree, p.TargetCountry, p.MentorName, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert student")
	}
	return &p, nil
}

func (s *SQLiteStore) UpdateStudent(ctx context.Context, p model.StudentProfile) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE students SET name = ?, email = ?, phone = ?, current_school = ?, major = ?, gpa = ?,
		        target_degree = ?, target_country = ?, mentor_name = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Email, p.Phone, p.CurrentSchool, p.Major, p.GPA,
		p.TargetDegree, p.TargetCountry, p.MentorName, p.Notes, time.Now().UTC(), p.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update student %s", p.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("student not found: %s", p.ID)
	}
	return nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, studentID string) (*model.StudentProfile, error) {
	var p model.StudentProfile
	var archived sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, current_school, major, gpa, target_degree, target_country, mentor_name, notes, created_at, updated_at, archived_at
		 FROM students WHERE id = ?`,
		studentID,
	).Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.CurrentSchool, &p.Major, &p.GPA,
		&p.TargetDegree, &p.TargetCountry, &p.MentorName, &p.Notes, &p.CreatedAt, &p.UpdatedAt, &archived)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get profile %s", studentID)
	}
	p.ArchivedAt = scanTimePtr(archived)
	return &p, nil
}

func (s *SQLiteStore) HasStudent(ctx context.Context, studentID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE id = ?)`, studentID,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: has student %s", studentID)
	}
	return exists, nil
}

func (s *SQLiteStore) ListStudents(ctx context.Context, filter StudentFilter) ([]model.StudentProfile, error) {
	query := `SELECT id, name, email, phone, current_school, major, gpa, target_degree, target_country, mentor_name, notes, created_at, updated_at, archived_at
	          FROM students WHERE 1=1`
	args := []any{}

	if !filter.IncludeArchived {
		query += ` AND archived_at IS NULL`
	}
	if filter.Mentor != "" {
		query += ` AND mentor_name = ?`
		args = append(args, filter.Mentor)
	}
	if filter.TargetCountry != "" {
		query += ` AND target_country = ?`
		args = append(args, filter.TargetCountry)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list students")
	}
	defer rows.Close()

	var students []model.StudentProfile
	for rows.Next() {
		var p model.StudentProfile
		var archived sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.CurrentSchool, &p.Major, &p.GPA,
			&p.TargetDegree, &p.TargetCountry, &p.MentorName, &p.Notes, &p.CreatedAt, &p.UpdatedAt, &archived); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan student")
		}
		p.ArchivedAt = scanTimePtr(archived)
		students = append(students, p)
	}
	return students, eris.Wrap(rows.Err(), "sqlite: list students rows")
}

func (s *SQLiteStore) AddChoice(ctx context.Context, c model.SchoolChoice) (*model.SchoolChoice, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO school_choices (id, student_id, school, program, application_type, submission_status, decision_result, deadline, priority_rank, portal_username, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.StudentID, c.School, c.Program, c.ApplicationType, c.SubmissionStatus,
		c.DecisionResult, nullTime(c.Deadline), c.PriorityRank, c.PortalUsername, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert choice")
	}
	return &c, nil
}

func (s *SQLiteStore) UpdateChoiceStatus(ctx context.Context, choiceID, submissionStatus, decisionResult string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE school_choices SET submission_status = ?, decision_result = ?, updated_at = ? WHERE id = ?`,
		submissionStatus, decisionResult, time.Now().UTC(), choiceID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update choice %s", choiceID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("choice not found: %s", choiceID)
	}
	return nil
}

func (s *SQLiteStore) GetChoices(ctx context.Context, studentID string) ([]model.SchoolChoice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, school, program, application_type, submission_status, decision_result, deadline, priority_rank, portal_username, notes, created_at, updated_at
		 FROM school_choices WHERE student_id = ?
		 ORDER BY CASE WHEN priority_rank IS NULL THEN 1 ELSE 0 END, priority_rank ASC, created_at ASC`,
		studentID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get choices %s", studentID)
	}
	defer rows.Close()

	choices := []model.SchoolChoice{}
	for rows.Next() {
		var c model.SchoolChoice
		var deadline sql.NullTime
		var rank sql.NullInt64
		if err := rows.Scan(&c.ID, &c.StudentID, &c.School, &c.Program, &c.ApplicationType,
			&c.SubmissionStatus, &c.DecisionResult, &deadline, &rank,
			&c.PortalUsername, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan choice")
		}
		c.Deadline = scanTimePtr(deadline)
		if rank.Valid {
			r := int(rank.Int64)
			c.PriorityRank = &r
		}
		choices = append(choices, c)
	}
	return choices, eris.Wrap(rows.Err(), "sqlite: get choices rows")
}

func (s *SQLiteStore) AddDocument(ctx context.Context, d model.Document) (*model.Document, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, student_id, name, category, status, due_date, required, progress, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.StudentID, d.Name, d.Category, d.Status, nullTime(d.DueDate), d.Required, d.Progress, d.Notes, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert document")
	}
	return &d, nil
}

func (s *SQLiteStore) UpdateDocumentStatus(ctx context.Context, documentID, status string, progress *int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, progress = COALESCE(?, progress), updated_at = ? WHERE id = ?`,
		status, progress, time.Now().UTC(), documentID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update document %s", documentID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("document not found: %s", documentID)
	}
	return nil
}

func (s *SQLiteStore) GetDocuments(ctx context.Context, studentID string) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, name, category, status, due_date, required, progress, notes, created_at, updated_at
		 FROM documents WHERE student_id = ? ORDER BY created_at ASC`,
		studentID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get documents %s", studentID)
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		var d model.Document
		var due sql.NullTime
		var progress sql.NullInt64
		if err := rows.Scan(&d.ID, &d.StudentID, &d.Name, &d.Category, &d.Status,
			&due, &d.Required, &progress, &d.Notes, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan document")
		}
		d.DueDate = scanTimePtr(due)
		if progress.Valid {
			p := int(progress.Int64)
			d.Progress = &p
		}
		docs = append(docs, d)
	}
	return docs, eris.Wrap(rows.Err(), "sqlite: get documents rows")
}

func (s *SQLiteStore) AddServiceRecord(ctx context.Context, r model.ServiceRecord) (*model.ServiceRecord, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now

	var detail any
	if len(r.Detail) > 0 {
		if !json.Valid(r.Detail) {
			return nil, eris.New("sqlite: service record detail is not valid JSON")
		}
		detail = string(r.Detail)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO service_records (id, student_id, status, progress, detail, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StudentID, r.Status, r.Progress, detail, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert service record")
	}
	return &r, nil
}

func (s *SQLiteStore) GetServiceRecords(ctx context.Context, studentID string) ([]model.ServiceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, status, progress, detail, created_at, updated_at
		 FROM service_records WHERE student_id = ? ORDER BY created_at ASC`,
		studentID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get service records %s", studentID)
	}
	defer rows.Close()

	recs := []model.ServiceRecord{}
	for rows.Next() {
		var r model.ServiceRecord
		var detail sql.NullString
		if err := rows.Scan(&r.ID, &r.StudentID, &r.Status, &r.Progress, &detail, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan service record")
		}
		if detail.Valid {
			r.Detail = json.RawMessage(detail.String)
		}
		recs = append(recs, r)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: get service records rows")
}

func (s *SQLiteStore) UpsertSchools(ctx context.Context, schools []model.School) (int64, error) {
	if len(schools) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO schools (id, name, country, ranking, website, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET country = excluded.country, ranking = excluded.ranking,
		        website = excluded.website, updated_at = excluded.updated_at`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	var count int64
	for _, sc := range schools {
		id := sc.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.ExecContext(ctx, id, sc.Name, sc.Country, sc.Ranking, sc.Website, now); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert school %q", sc.Name)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return count, nil
}

func (s *SQLiteStore) ListSchools(ctx context.Context, country string, limit int) ([]model.School, error) {
	query := `SELECT id, name, country, ranking, website FROM schools WHERE 1=1`
	args := []any{}
	if country != "" {
		query += ` AND country = ?`
		args = append(args, country)
	}
	query += ` ORDER BY ranking ASC, name ASC LIMIT ?`
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list schools")
	}
	defer rows.Close()

	var schools []model.School
	for rows.Next() {
		var sc model.School
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Country, &sc.Ranking, &sc.Website); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan school")
		}
		schools = append(schools, sc)
	}
	return schools, eris.Wrap(rows.Err(), "sqlite: list schools rows")
}
