// Package seed loads YAML fixture files into the store. Used to bring up
// demo and staging environments with realistic application data.
package seed

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
	"github.com/crossbridge-edu/advisory-cli/internal/store"
)

// File is the top-level structure of a seed fixture.
type File struct {
	Students []Student      `yaml:"students"`
	Schools  []model.School `yaml:"schools"`
}

// Student is one roster entry with its nested application records.
type Student struct {
	Name          string  `yaml:"name"`
	Email         string  `yaml:"email"`
	Phone         string  `yaml:"phone"`
	CurrentSchool string  `yaml:"current_school"`
	Major         string  `yaml:"major"`
	GPA           float64 `yaml:"gpa"`
	TargetDegree  string  `yaml:"target_degree"`
	TargetCountry string  `yaml:"target_country"`
	Mentor        string  `yaml:"mentor"`
	Notes         string  `yaml:"notes"`

	Choices        []Choice        `yaml:"choices"`
	Documents      []Document      `yaml:"documents"`
	ServiceRecords []ServiceRecord `yaml:"service_records"`
}

// Choice is one school application entry.
type Choice struct {
	School           string `yaml:"school"`
	Program          string `yaml:"program"`
	Type             string `yaml:"type"`
	SubmissionStatus string `yaml:"submission_status"`
	DecisionResult   string `yaml:"decision_result"`
	Deadline         string `yaml:"deadline"` // YYYY-MM-DD
	Priority         *int   `yaml:"priority"`
	PortalUsername   string `yaml:"portal_username"`
	Notes            string `yaml:"notes"`
}

// Document is one application material entry.
type Document struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Status   string `yaml:"status"`
	DueDate  string `yaml:"due_date"` // YYYY-MM-DD
	Required bool   `yaml:"required"`
	Progress *int   `yaml:"progress"`
	Notes    string `yaml:"notes"`
}

// ServiceRecord is one advisor-entered progress record. Detail is an
// arbitrary map stored as JSON.
type ServiceRecord struct {
	Status   string         `yaml:"status"`
	Progress float64        `yaml:"progress"`
	Detail   map[string]any `yaml:"detail"`
}

// Result counts what was created.
type Result struct {
	Students int
	Choices  int
	Docs     int
	Records  int
	Schools  int64
}

// Load parses the YAML fixture at path and inserts everything it
// describes.
func Load(ctx context.Context, st store.Store, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "seed: read %s", path)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrapf(err, "seed: parse %s", path)
	}

	res := &Result{}
	for _, s := range file.Students {
		if err := loadStudent(ctx, st, s, res); err != nil {
			return res, err
		}
	}

	if len(file.Schools) > 0 {
		n, err := st.UpsertSchools(ctx, file.Schools)
		if err != nil {
			return res, eris.Wrap(err, "seed: upsert schools")
		}
		res.Schools = n
	}

	zap.L().Info("seed complete",
		zap.String("path", path),
		zap.Int("students", res.Students),
		zap.Int("choices", res.Choices),
		zap.Int("documents", res.Docs),
		zap.Int("service_records", res.Records),
		zap.Int64("schools", res.Schools),
	)
	return res, nil
}

func loadStudent(ctx context.Context, st store.Store, s Student, res *Result) error {
	created, err := st.CreateStudent(ctx, model.StudentProfile{
		Name:          s.Name,
		Email:         s.Email,
		Phone:         s.Phone,
		CurrentSchool: s.CurrentSchool,
		Major:         s.Major,
		GPA:           s.GPA,
		TargetDegree:  s.TargetDegree,
		TargetCountry: s.TargetCountry,
		MentorName:    s.Mentor,
		Notes:         s.Notes,
	})
	if err != nil {
		return eris.Wrapf(err, "seed: create student %q", s.Name)
	}
	res.Students++

	for _, c := range s.Choices {
		deadline, err := parseDate(c.Deadline)
		if err != nil {
			return eris.Wrapf(err, "seed: choice %q for %q", c.School, s.Name)
		}
		if _, err := st.AddChoice(ctx, model.SchoolChoice{
			StudentID:        created.ID,
			School:           c.School,
			Program:          c.Program,
			ApplicationType:  c.Type,
			SubmissionStatus: c.SubmissionStatus,
			DecisionResult:   c.DecisionResult,
			Deadline:         deadline,
			PriorityRank:     c.Priority,
			PortalUsername:   c.PortalUsername,
			Notes:            c.Notes,
		}); err != nil {
			return eris.Wrapf(err, "seed: add choice %q for %q", c.School, s.Name)
		}
		res.Choices++
	}

	for _, d := range s.Documents {
		due, err := parseDate(d.DueDate)
		if err != nil {
			return eris.Wrapf(err, "seed: document %q for %q", d.Name, s.Name)
		}
		if _, err := st.AddDocument(ctx, model.Document{
			StudentID: created.ID,
			Name:      d.Name,
			Category:  d.Category,
			Status:    d.Status,
			DueDate:   due,
			Required:  d.Required,
			Progress:  d.Progress,
			Notes:     d.Notes,
		}); err != nil {
			return eris.Wrapf(err, "seed: add document %q for %q", d.Name, s.Name)
		}
		res.Docs++
	}

	for _, r := range s.ServiceRecords {
		var detail json.RawMessage
		if r.Detail != nil {
			detail, err = json.Marshal(r.Detail)
			if err != nil {
				return eris.Wrapf(err, "seed: service record detail for %q", s.Name)
			}
		}
		if _, err := st.AddServiceRecord(ctx, model.ServiceRecord{
			StudentID: created.ID,
			Status:    r.Status,
			Progress:  r.Progress,
			Detail:    detail,
		}); err != nil {
			return eris.Wrapf(err, "seed: add service record for %q", s.Name)
		}
		res.Records++
	}

	return nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, eris.Wrapf(err, "seed: parse date %q", s)
	}
	return &t, nil
}
