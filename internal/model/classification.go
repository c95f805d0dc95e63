// Package model defines the core domain models used throughout the application.
package model

import "github.com/shopspring/decimal"

// Classification is the result of recognizing a payment in notification content.
type Classification struct {
	Amount  decimal.Decimal
	Note    string
	Keyword string // Keyword that opened the gate
	Matcher string // Amount pattern that produced Amount
}

// RejectReason names why a notification did not produce a capture event.
type RejectReason string

// Rejection reasons, in pipeline order.
const (
	ReasonNone                RejectReason = ""
	ReasonNotApplicable       RejectReason = "not_applicable"
	ReasonThrottled           RejectReason = "throttled"
	ReasonGateFailed          RejectReason = "gate_failed"
	ReasonExtractionFailed    RejectReason = "extraction_failed"
	ReasonDuplicateSuppressed RejectReason = "duplicate_suppressed"
	ReasonPresentationDenied  RejectReason = "presentation_denied"
	ReasonPresentationFailed  RejectReason = "presentation_failed"
)

// AllRejectReasons lists every non-empty reason in pipeline order.
func AllRejectReasons() []RejectReason {
	return []RejectReason{
		ReasonNotApplicable,
		ReasonThrottled,
		ReasonGateFailed,
		ReasonExtractionFailed,
		ReasonDuplicateSuppressed,
		ReasonPresentationDenied,
		ReasonPresentationFailed,
	}
}
