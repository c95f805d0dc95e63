// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"

	"github.com/Veraticus/paycapture/internal/model"
)

// Capture rejections. Every one of them means "no automatic capture this
// time" and is never surfaced to the notification source.
var (
	ErrNotApplicable       = errors.New("notification not applicable")
	ErrThrottled           = errors.New("source throttled")
	ErrGateFailed          = errors.New("no payment keyword")
	ErrExtractionFailed    = errors.New("no amount extracted")
	ErrDuplicateSuppressed = errors.New("duplicate capture suppressed")
	ErrPresentationDenied  = errors.New("presentation denied")
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

var rejections = []struct {
	err    error
	reason model.RejectReason
}{
	{ErrNotApplicable, model.ReasonNotApplicable},
	{ErrThrottled, model.ReasonThrottled},
	{ErrGateFailed, model.ReasonGateFailed},
	{ErrExtractionFailed, model.ReasonExtractionFailed},
	{ErrDuplicateSuppressed, model.ReasonDuplicateSuppressed},
	{ErrPresentationDenied, model.ReasonPresentationDenied},
}

// IsRejection reports whether err is one of the silent capture rejections.
func IsRejection(err error) bool {
	if err == nil {
		return false
	}
	for _, r := range rejections {
		if errors.Is(err, r.err) {
			return true
		}
	}
	return false
}

// ReasonOf maps an error returned by the capture pipeline to its reject reason.
// Errors that are not rejections map to ReasonPresentationFailed, since the
// presenter is the only stage that can fail any other way.
func ReasonOf(err error) model.RejectReason {
	if err == nil {
		return model.ReasonNone
	}
	for _, r := range rejections {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return model.ReasonPresentationFailed
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
