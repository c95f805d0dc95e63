package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CaptureSourceAuto tags records and prefill requests produced by automatic capture.
const CaptureSourceAuto = "AUTO"

// CaptureEvent is an accepted payment detection, ready to pre-fill a record form.
type CaptureEvent struct {
	OccurredAt  time.Time
	Amount      decimal.Decimal
	SourceID    string
	SourceLabel string
	Source      string
	Note        string
	Title       string
	Summary     string // Compact display line
	Detail      string // Expanded display line: Summary plus the note
	RequestCode int
}

// PrefillRequest is what the presentation collaborator receives for one capture event.
type PrefillRequest struct {
	CreatedAt   time.Time       `json:"created_at"`
	Amount      decimal.Decimal `json:"amount"`
	ID          string          `json:"id"`
	SourceID    string          `json:"source_id"`
	SourceLabel string          `json:"source_label"`
	Source      string          `json:"source"`
	Note        string          `json:"note"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	Detail      string          `json:"detail"`
	Status      PrefillStatus   `json:"status"`
	RequestCode int             `json:"request_code"`
}

// PrefillStatus tracks what the user did with a prefill request.
type PrefillStatus string

// Prefill status constants.
const (
	PrefillPending   PrefillStatus = "pending"
	PrefillConfirmed PrefillStatus = "confirmed"
	PrefillDismissed PrefillStatus = "dismissed"
)

// IsValid reports whether the status is one of the known values.
func (s PrefillStatus) IsValid() bool {
	switch s {
	case PrefillPending, PrefillConfirmed, PrefillDismissed:
		return true
	}
	return false
}

// Prefill converts the event into a pending prefill request.
func (e CaptureEvent) Prefill() PrefillRequest {
	return PrefillRequest{
		CreatedAt:   e.OccurredAt,
		Amount:      e.Amount,
		SourceID:    e.SourceID,
		SourceLabel: e.SourceLabel,
		Source:      e.Source,
		Note:        e.Note,
		Title:       e.Title,
		Summary:     e.Summary,
		Detail:      e.Detail,
		Status:      PrefillPending,
		RequestCode: e.RequestCode,
	}
}
