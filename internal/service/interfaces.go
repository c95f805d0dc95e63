// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/paycapture/internal/model"
)

// Presenter receives accepted capture events and offers them to the user as a
// tap-to-act prompt that opens a pre-filled record form.
type Presenter interface {
	Present(ctx context.Context, req model.PrefillRequest) error
}

// PrefillFilter defines filtering options for prefill request queries.
type PrefillFilter struct {
	Status model.PrefillStatus
	Limit  int
}

// RecordFilter defines filtering options for record queries.
type RecordFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// Storage defines the contract for the inbox and record persistence layer.
// It sits downstream of the capture core; the core never calls it directly.
type Storage interface {
	// Prefill request operations
	SavePrefillRequest(ctx context.Context, req *model.PrefillRequest) error
	GetPrefillRequest(ctx context.Context, id string) (*model.PrefillRequest, error)
	ListPrefillRequests(ctx context.Context, filter PrefillFilter) ([]model.PrefillRequest, error)
	ConfirmPrefillRequest(ctx context.Context, id, category string, at time.Time) (*model.Record, error)
	DismissPrefillRequest(ctx context.Context, id string) error

	// Record operations
	SaveRecord(ctx context.Context, record *model.Record) error
	GetRecords(ctx context.Context, filter RecordFilter) ([]model.Record, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// CaptureStats counts pipeline outcomes since process start.
type CaptureStats struct {
	Rejected  map[model.RejectReason]int64
	Received  int64
	Accepted  int64
	Presented int64
}

// TotalRejected returns the number of rejected notifications across all reasons.
func (s CaptureStats) TotalRejected() int64 {
	var total int64
	for _, n := range s.Rejected {
		total += n
	}
	return total
}
