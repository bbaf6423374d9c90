package model

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// ServiceRecord is a loosely-structured advisory service entry. When its
// detail blob names a pipeline stage, the record overrides or raises the
// inferred state for that one stage.
type ServiceRecord struct {
	ID        string          `json:"id"`
	StudentID string          `json:"student_id"`
	Status    string          `json:"status,omitempty"` // free text
	Progress  float64         `json:"progress"`         // 0-100
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OverrideDetail is the structured payload carried by a service record.
type OverrideDetail struct {
	Stage          string `json:"stage,omitempty"` // free text, keyword-matched
	Owner          string `json:"owner,omitempty"`
	Deadline       string `json:"deadline,omitempty"`
	BlockingReason string `json:"blocking_reason,omitempty"`
}

// DeadlineTime parses the detail deadline, accepting RFC 3339 or a bare
// date. Returns nil when absent or unparsable.
func (d *OverrideDetail) DeadlineTime() *time.Time {
	if d == nil || d.Deadline == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, d.Deadline); err == nil {
			return &t
		}
	}
	return nil
}

// ParseOverrideDetail decodes a service record's detail blob. The blob may
// be a JSON object or a JSON-encoded string holding an object; anything
// else is reported as an error so callers can log and skip the record.
func ParseOverrideDetail(raw json.RawMessage) (*OverrideDetail, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var detail OverrideDetail
	if err := json.Unmarshal(raw, &detail); err == nil {
		return &detail, nil
	}

	// Double-encoded: a JSON string whose content is the object.
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, eris.Wrap(err, "model: decode override detail")
	}
	if err := json.Unmarshal([]byte(inner), &detail); err != nil {
		return nil, eris.Wrap(err, "model: decode nested override detail")
	}
	return &detail, nil
}

// ClassifyOverrideStatus maps a service record's free-text status to a
// stage status. A blocking reason on the detail forces blocked when the
// status text itself is inconclusive.
func ClassifyOverrideStatus(raw string, hasBlockingReason bool) StageStatus {
	s := Normalize(raw)
	switch {
	case containsAny(s, "complete", "done", "已完成"):
		return StatusCompleted
	case containsAny(s, "block", "risk", "阻塞", "风险"):
		return StatusBlocked
	case containsAny(s, "paus", "hold", "暂停"):
		return StatusPaused
	case containsAny(s, "not", "未开始"):
		return StatusNotStarted
	case hasBlockingReason:
		return StatusBlocked
	default:
		return StatusInProgress
	}
}
