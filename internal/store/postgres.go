package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/crossbridge-edu/advisory-cli/internal/db"
	"github.com/crossbridge-edu/advisory-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot per-student fetch path.
var preparedStatements = map[string]string{
	"get_profile":         `SELECT id, name, email, phone, current_school, major, gpa, target_degree, target_country, mentor_name, notes, created_at, updated_at, archived_at FROM students WHERE id = $1`,
	"get_choices":         `SELECT id, student_id, school, program, application_type, submission_status, decision_result, deadline, priority_rank, portal_username, notes, created_at, updated_at FROM school_choices WHERE student_id = $1 ORDER BY priority_rank ASC NULLS LAST, created_at ASC`,
	"get_documents":       `SELECT id, student_id, name, category, status, due_date, required, progress, notes, created_at, updated_at FROM documents WHERE student_id = $1 ORDER BY created_at ASC`,
	"get_service_records": `SELECT id, student_id, status, progress, detail, created_at, updated_at FROM service_records WHERE student_id = $1 ORDER BY created_at ASC`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access (e.g., bulk catalog upserts).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS students (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name           TEXT NOT NULL DEFAULT '',
	email          TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL DEFAULT '',
	current_school TEXT NOT NULL DEFAULT '',
	major          TEXT NOT NULL DEFAULT '',
	gpa            DOUBLE PRECISION NOT NULL DEFAULT 0,
	target_degree  TEXT NOT NULL DEFAULT '',
	target_country TEXT NOT NULL DEFAULT '',
	mentor_name    TEXT NOT NULL DEFAULT '',
	notes          TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	archived_at    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS school_choices (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	student_id        TEXT NOT NULL REFERENCES students(id),
	school            TEXT NOT NULL,
	program           TEXT NOT NULL DEFAULT '',
	application_type  TEXT NOT NULL DEFAULT '',
	submission_status TEXT NOT NULL DEFAULT '',
	decision_result   TEXT NOT NULL DEFAULT '',
	deadline          TIMESTAMPTZ,
	priority_rank     INTEGER,
	portal_username   TEXT NOT NULL DEFAULT '',
	notes             TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	student_id TEXT NOT NULL REFERENCES students(id),
	name       TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	due_date   TIMESTAMPTZ,
	required   BOOLEAN NOT NULL DEFAULT false,
	progress   INTEGER,
	notes      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS service_records (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	student_id TEXT NOT NULL REFERENCES students(id),
	status     TEXT NOT NULL DEFAULT '',
	progress   DOUBLE PRECISION NOT NULL DEFAULT 0,
	detail     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS schools (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL UNIQUE,
	country    TEXT NOT NULL DEFAULT '',
	ranking    INTEGER NOT NULL DEFAULT 0,
	website    TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_students_mentor ON students(mentor_name);
CREATE INDEX IF NOT EXISTS idx_choices_student ON school_choices(student_id);
CREATE INDEX IF NOT EXISTS idx_documents_student ON documents(student_id);
CREATE INDEX IF NOT EXISTS idx_documents_due ON documents(due_date);
CREATE INDEX IF NOT EXISTS idx_service_records_student ON service_records(student_id);
CREATE INDEX IF NOT EXISTS idx_schools_country ON schools(country);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateStudent(ctx context.Context, p model.StudentProfile) (*model.StudentProfile, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO students (id, name, email, phone, current_school, major, gpa, target_degree, target_country, mentor_name, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Name, p.Email, p.Phone, p.CurrentSchool, p.Major, p.GPA,
		p.TargetDegree, p.TargetCountry, p.MentorName, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert student")
	}
	return &p, nil
}

func (s *PostgresStore) UpdateStudent(ctx context.Context, p model.StudentProfile) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE students SET name = $1, email = $2, phone = $3, current_school = $4, major = $5, gpa = $6,
		        target_degree = $7, target_country = $8, mentor_name = $9, notes = $10, updated_at = $11
		 WHERE id = $12`,
		p.Name, p.Email, p.Phone, p.CurrentSchool, p.Major, p.GPA,
		p.TargetDegree, p.TargetCountry, p.MentorName, p.Notes, time.Now().UTC(), p.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update student %s", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("student not found: %s", p.ID)
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, studentID string) (*model.StudentProfile, error) {
	var p model.StudentProfile
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, current_school, major, gpa, target_degree, target_country, mentor_name, notes, created_at, updated_at, archived_at
		 FROM students WHERE id = $1`,
		studentID,
	).Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.CurrentSchool, &p.Major, &p.GPA,
		&p.TargetDegree, &p.TargetCountry, &p.MentorName, &p.Notes, &p.CreatedAt, &p.UpdatedAt, &p.ArchivedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get profile %s", studentID)
	}
	return &p, nil
}

func (s *PostgresStore) HasStudent(ctx context.Context, studentID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, studentID,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: has student %s", studentID)
	}
	return exists, nil
}

func (s *PostgresStore) ListStudents(ctx context.Context, filter StudentFilter) ([]model.StudentProfile, error) {
	query := `SELECT id, name, email, phone, current_school, major, gpa, target_degree, target_country, mentor_name, notes, created_at, updated_at, archived_at
	          FROM students WHERE true`
	args := []any{}
	argIdx := 1

	if !filter.IncludeArchived {
		query += ` AND archived_at IS NULL`
	}
	if filter.Mentor != "" {
		query += fmt.Sprintf(` AND mentor_name = $%d`, argIdx)
		args = append(args, filter.Mentor)
		argIdx++
	}
	if filter.TargetCountry != "" {
		query += fmt.Sprintf(` AND target_country = $%d`, argIdx)
		args = append(args, filter.TargetCountry)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list students")
	}
	defer rows.Close()

	var students []model.StudentProfile
	for rows.Next() {
		var p model.StudentProfile
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.CurrentSchool, &p.Major, &p.GPA,
			&p.TargetDegree, &p.TargetCountry, &p.MentorName, &p.Notes, &p.CreatedAt, &p.UpdatedAt, &p.ArchivedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan student")
		}
		students = append(students, p)
	}
	return students, eris.Wrap(rows.Err(), "postgres: list students rows")
}

func (s *PostgresStore) AddChoice(ctx context.Context, c model.SchoolChoice) (*model.SchoolChoice, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO school_choices (id, student_id, school, program, application_type, submission_status, decision_result, deadline, priority_rank, portal_username, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.StudentID, c.School, c.Program, c.ApplicationType, c.SubmissionStatus,
		c.DecisionResult, c.Deadline, c.PriorityRank, c.PortalUsername, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert choice")
	}
	return &c, nil
}

func (s *PostgresStore) UpdateChoiceStatus(ctx context.Context, choiceID, submissionStatus, decisionResult string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE school_choices SET submission_status = $1, decision_result = $2, updated_at = $3 WHERE id = $4`,
		submissionStatus, decisionResult, time.Now().UTC(), choiceID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update choice %s", choiceID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("choice not found: %s", choiceID)
	}
	return nil
}

func (s *PostgresStore) GetChoices(ctx context.Context, studentID string) ([]model.SchoolChoice, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, student_id, school, program, application_type, submission_status, decision_result, deadline, priority_rank, portal_username, notes, created_at, updated_at
		 FROM school_choices WHERE student_id = $1 ORDER BY priority_rank ASC NULLS LAST, created_at ASC`,
		studentID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get choices %s", studentID)
	}
	defer rows.Close()

	choices := []model.SchoolChoice{}
	for rows.Next() {
		var c model.SchoolChoice
		if err := rows.Scan(&c.ID, &c.StudentID, &c.School, &c.Program, &c.ApplicationType,
			&c.SubmissionStatus, &c.DecisionResult, &c.Deadline, &c.PriorityRank,
			&c.PortalUsername, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan choice")
		}
		choices = append(choices, c)
	}
	return choices, eris.Wrap(rows.Err(), "postgres: get choices rows")
}

func (s *PostgresStore) AddDocument(ctx context.Context, d model.Document) (*model.Document, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (id, student_id, name, category, status, due_date, required, progress, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		d.ID, d.StudentID, d.Name, d.Category, d.Status, d.DueDate, d.Required, d.Progress, d.Notes, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert document")
	}
	return &d, nil
}

func (s *PostgresStore) UpdateDocumentStatus(ctx context.Context, documentID, status string, progress *int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET status = $1, progress = COALESCE($2, progress), updated_at = $3 WHERE id = $4`,
		status, progress, time.Now().UTC(), documentID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update document %s", documentID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("document not found: %s", documentID)
	}
	return nil
}

func (s *PostgresStore) GetDocuments(ctx context.Context, studentID string) ([]model.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, student_id, name, category, status, due_date, required, progress, notes, created_at, updated_at
		 FROM documents WHERE student_id = $1 ORDER BY created_at ASC`,
		studentID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get documents %s", studentID)
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.StudentID, &d.Name, &d.Category, &d.Status,
			&d.DueDate, &d.Required, &d.Progress, &d.Notes, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		docs = append(docs, d)
	}
	return docs, eris.Wrap(rows.Err(), "postgres: get documents rows")
}

func (s *PostgresStore) AddServiceRecord(ctx context.Context, r model.ServiceRecord) (*model.ServiceRecord, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now

	var detail any
	if len(r.Detail) > 0 {
		if !json.Valid(r.Detail) {
			return nil, eris.New("postgres: service record detail is not valid JSON")
		}
		detail = []byte(r.Detail)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO service_records (id, student_id, status, progress, detail, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.StudentID, r.Status, r.Progress, detail, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert service record")
	}
	return &r, nil
}

func (s *PostgresStore) GetServiceRecords(ctx context.Context, studentID string) ([]model.ServiceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, student_id, status, progress, detail, created_at, updated_at
		 FROM service_records WHERE student_id = $1 ORDER BY created_at ASC`,
		studentID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get service records %s", studentID)
	}
	defer rows.Close()

	recs := []model.ServiceRecord{}
	for rows.Next() {
		var r model.ServiceRecord
		var detail []byte
		if err := rows.Scan(&r.ID, &r.StudentID, &r.Status, &r.Progress, &detail, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan service record")
		}
		r.Detail = json.RawMessage(detail)
		recs = append(recs, r)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: get service records rows")
}

func (s *PostgresStore) UpsertSchools(ctx context.Context, schools []model.School) (int64, error) {
	rows := make([][]any, 0, len(schools))
	now := time.Now().UTC()
	for _, sc := range schools {
		id := sc.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, []any{id, sc.Name, sc.Country, sc.Ranking, sc.Website, now})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "schools",
		Columns:      []string{"id", "name", "country", "ranking", "website", "updated_at"},
		ConflictKeys: []string{"name"},
		UpdateCols:   []string{"country", "ranking", "website", "updated_at"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert schools")
	}
	return n, nil
}

func (s *PostgresStore) ListSchools(ctx context.Context, country string, limit int) ([]model.School, error) {
	query := `SELECT id, name, country, ranking, website FROM schools WHERE true`
	args := []any{}
	argIdx := 1

	if country != "" {
		query += fmt.Sprintf(` AND country = $%d`, argIdx)
		args = append(args, country)
		argIdx++
	}
	query += ` ORDER BY ranking ASC, name ASC`
	if limit <= 0 {
		limit = 200
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list schools")
	}
	defer rows.Close()

	var schools []model.School
	for rows.Next() {
		var sc model.School
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Country, &sc.Ranking, &sc.Website); err != nil {
			return nil, eris.Wrap(err, "postgres: scan school")
		}
		schools = append(schools, sc)
	}
	return schools, eris.Wrap(rows.Err(), "postgres: list schools rows")
}
