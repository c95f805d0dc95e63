package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Veraticus/paycapture/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestReasonOf(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want model.RejectReason
	}{
		{name: "nil", err: nil, want: model.ReasonNone},
		{name: "not applicable", err: ErrNotApplicable, want: model.ReasonNotApplicable},
		{name: "throttled", err: ErrThrottled, want: model.ReasonThrottled},
		{name: "gate", err: ErrGateFailed, want: model.ReasonGateFailed},
		{
			name: "wrapped extraction",
			err:  fmt.Errorf("%w: out of bounds", ErrExtractionFailed),
			want: model.ReasonExtractionFailed,
		},
		{name: "duplicate", err: ErrDuplicateSuppressed, want: model.ReasonDuplicateSuppressed},
		{
			name: "denied inside a presenter wrap",
			err:  fmt.Errorf("failed to present capture: %w", ErrPresentationDenied),
			want: model.ReasonPresentationDenied,
		},
		{
			name: "joined with denial",
			err:  errors.Join(errors.New("disk full"), ErrPresentationDenied),
			want: model.ReasonPresentationDenied,
		},
		{name: "anything else", err: errors.New("disk full"), want: model.ReasonPresentationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReasonOf(tt.err))
		})
	}
}

func TestIsRejection(t *testing.T) {
	assert.False(t, IsRejection(nil))
	assert.False(t, IsRejection(errors.New("boom")))
	assert.False(t, IsRejection(ErrNotFound))
	assert.True(t, IsRejection(ErrGateFailed))
	assert.True(t, IsRejection(fmt.Errorf("wrapped: %w", ErrDuplicateSuppressed)))
}

func TestUserError(t *testing.T) {
	inner := errors.New("permission denied")

	err := NewUserError("Could not open the inbox", inner)
	assert.Equal(t, "Could not open the inbox: permission denied", err.Error())
	assert.ErrorIs(t, err, inner)

	var userErr *UserError
	assert.ErrorAs(t, err, &userErr)
	assert.Equal(t, "Could not open the inbox", userErr.UserMessage)

	assert.Equal(t, "Nothing to do", NewUserError("Nothing to do", nil).Error())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "busy", err: ErrBusy, want: true},
		{name: "wrapped busy", err: fmt.Errorf("%w: database is locked", ErrBusy), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "plain", err: errors.New("constraint failed"), want: false},
		{name: "cancelled", err: context.Canceled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
