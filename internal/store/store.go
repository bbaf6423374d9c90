// Package store persists the advisory back-office records and exposes the
// per-student fetchers the stage engine reads from.
package store

import (
	"context"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
)

// StudentFilter specifies criteria for listing students.
type StudentFilter struct {
	Mentor          string `json:"mentor,omitempty"`
	TargetCountry   string `json:"target_country,omitempty"`
	IncludeArchived bool   `json:"include_archived,omitempty"`
	Limit           int    `json:"limit,omitempty"`
	Offset          int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the advisory back-office.
//
// The Get* fetchers follow the engine's input contract: GetProfile returns
// (nil, nil) for an unknown student, and the list fetchers return empty
// slices, never nil errors for "no rows".
type Store interface {
	// Students
	CreateStudent(ctx context.Context, profile model.StudentProfile) (*model.StudentProfile, error)
	UpdateStudent(ctx context.Context, profile model.StudentProfile) error
	GetProfile(ctx context.Context, studentID string) (*model.StudentProfile, error)
	HasStudent(ctx context.Context, studentID string) (bool, error)
	ListStudents(ctx context.Context, filter StudentFilter) ([]model.StudentProfile, error)

	// School choices
	AddChoice(ctx context.Context, choice model.SchoolChoice) (*model.SchoolChoice, error)
	UpdateChoiceStatus(ctx context.Context, choiceID, submissionStatus, decisionResult string) error
	GetChoices(ctx context.Context, studentID string) ([]model.SchoolChoice, error)

	// Documents
	AddDocument(ctx context.Context, doc model.Document) (*model.Document, error)
	UpdateDocumentStatus(ctx context.Context, documentID, status string, progress *int) error
	GetDocuments(ctx context.Context, studentID string) ([]model.Document, error)

	// Service records
	AddServiceRecord(ctx context.Context, rec model.ServiceRecord) (*model.ServiceRecord, error)
	GetServiceRecords(ctx context.Context, studentID string) ([]model.ServiceRecord, error)

	// School catalog
	UpsertSchools(ctx context.Context, schools []model.School) (int64, error)
	ListSchools(ctx context.Context, country string, limit int) ([]model.School, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
