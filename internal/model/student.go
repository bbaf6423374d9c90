package model

import (
	"strings"
	"time"
)

// StudentProfile holds identity, contact, and education background for one
// student. A profile with an empty name is treated the same as a missing
// profile by the stage engine.
type StudentProfile struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	CurrentSchool string     `json:"current_school,omitempty"`
	Major         string     `json:"major,omitempty"`
	GPA           float64    `json:"gpa,omitempty"`
	TargetDegree  string     `json:"target_degree,omitempty"`
	TargetCountry string     `json:"target_country,omitempty"`
	MentorName    string     `json:"mentor_name,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
}

// Complete reports whether the profile satisfies the evaluation stage:
// present with at least a non-blank name.
func (p *StudentProfile) Complete() bool {
	return p != nil && strings.TrimSpace(p.Name) != ""
}

// School is one row of the partner school catalog.
type School struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	Ranking int    `json:"ranking,omitempty"`
	Website string `json:"website,omitempty"`
}
