// Package storage provides the inbox and record persistence layer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/paycapture/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidDateRange  = errors.New("start date must be before end date")
	ErrInvalidStatus     = errors.New("invalid prefill status")
	ErrInvalidPrefill    = errors.New("invalid prefill request")
	ErrInvalidRecord     = errors.New("invalid record")
	ErrPrefillNotPending = errors.New("prefill request already resolved")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *end, *start)
	}
	return nil
}

// validatePrefillRequest validates a prefill request before it is stored.
func validatePrefillRequest(req *model.PrefillRequest) error {
	if req == nil {
		return fmt.Errorf("%w: prefill request", ErrNilParameter)
	}
	if strings.TrimSpace(req.SourceID) == "" {
		return fmt.Errorf("%w: missing source ID", ErrInvalidPrefill)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidPrefill)
	}
	if req.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing creation time", ErrInvalidPrefill)
	}
	if req.Status != "" && !req.Status.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, req.Status)
	}
	return nil
}

// validateRecord validates an expense record.
func validateRecord(record *model.Record) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if !record.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRecord)
	}
	if record.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidRecord)
	}
	switch record.Source {
	case model.RecordSourceAuto, model.RecordSourceManual:
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidRecord, record.Source)
	}
	return nil
}
