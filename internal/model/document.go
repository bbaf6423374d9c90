package model

import "time"

// Document is one item of a student's application material checklist. The
// category is free text and only associates with a pipeline stage through
// keyword matching.
type Document struct {
	ID        string     `json:"id"`
	StudentID string     `json:"student_id"`
	Name      string     `json:"name"`
	Category  string     `json:"category,omitempty"`
	Status    string     `json:"status,omitempty"` // free text
	DueDate   *time.Time `json:"due_date,omitempty"`
	Required  bool       `json:"required"`
	Progress  *int       `json:"progress,omitempty"` // 0-100 when tracked
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DocumentStatus is the closed variant behind the free-text document status.
type DocumentStatus string

const (
	DocNotStarted DocumentStatus = "not_started"
	DocInProgress DocumentStatus = "in_progress"
	DocCompleted  DocumentStatus = "completed"
	DocSubmitted  DocumentStatus = "submitted"
)

// ClassifyDocumentStatus maps free-text document status to its closed
// variant. Empty or unrecognized text classifies as not_started.
func ClassifyDocumentStatus(raw string) DocumentStatus {
	s := Normalize(raw)
	switch {
	// Negated forms first: "未提交" would otherwise hit the "提交"
	// substring below.
	case containsAny(s, "not submit", "not_submit", "未提交", "未上传"):
		return DocNotStarted
	case containsAny(s, "submit", "提交", "已上传"):
		return DocSubmitted
	case containsAny(s, "complete", "done", "完成", "定稿"):
		return DocCompleted
	case containsAny(s, "progress", "进行", "撰写", "草稿", "draft"):
		return DocInProgress
	default:
		return DocNotStarted
	}
}

// CompletionScore is the per-document contribution averaged into a stage's
// progress percentage: 1.0 for completed/submitted, 0.6 for in-progress,
// 0.4 for scheduled-but-untouched, 0.2 otherwise.
func (d Document) CompletionScore() float64 {
	switch ClassifyDocumentStatus(d.Status) {
	case DocCompleted, DocSubmitted:
		return 1.0
	case DocInProgress:
		return 0.6
	}
	if d.DueDate != nil {
		return 0.4
	}
	return 0.2
}

// Done reports whether the document needs no further work.
func (d Document) Done() bool {
	st := ClassifyDocumentStatus(d.Status)
	return st == DocCompleted || st == DocSubmitted
}
