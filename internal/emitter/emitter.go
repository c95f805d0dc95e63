// Package emitter turns an accepted classification into the capture event a
// presenter shows as a tap-to-record prompt.
package emitter

import (
	"time"

	"github.com/Veraticus/paycapture/internal/config"
	"github.com/Veraticus/paycapture/internal/model"
)

// Display defaults.
const (
	DefaultTitle          = "Payment detected"
	DefaultTapText        = "tap to record"
	DefaultCurrencyPrefix = "￥"

	// RequestCodeMask keeps request codes inside a positive 28-bit range.
	RequestCodeMask = 0xfffffff
)

// Emitter builds capture events. It holds no mutable state.
type Emitter struct {
	title          string
	tapText        string
	currencyPrefix string
}

// New creates an emitter with the default display strings.
func New() *Emitter {
	return &Emitter{
		title:          DefaultTitle,
		tapText:        DefaultTapText,
		currencyPrefix: DefaultCurrencyPrefix,
	}
}

// FromConfig creates an emitter from the presentation settings. Empty values
// keep their defaults.
func FromConfig(cfg config.PresentationConfig) *Emitter {
	e := New()
	if cfg.Title != "" {
		e.title = cfg.Title
	}
	if cfg.TapText != "" {
		e.tapText = cfg.TapText
	}
	if cfg.CurrencyPrefix != "" {
		e.currencyPrefix = cfg.CurrencyPrefix
	}
	return e
}

// ResolveNote substitutes "{label}-detected" for an empty note.
func ResolveNote(sourceLabel, note string) string {
	if note == "" {
		return sourceLabel + "-detected"
	}
	return note
}

// Emit builds the capture event for an accepted classification.
func (e *Emitter) Emit(sourceID, sourceLabel string, c model.Classification, now time.Time) model.CaptureEvent {
	note := ResolveNote(sourceLabel, c.Note)
	summary := e.Summary(sourceLabel, c)

	return model.CaptureEvent{
		OccurredAt:  now,
		Amount:      c.Amount,
		SourceID:    sourceID,
		SourceLabel: sourceLabel,
		Source:      model.CaptureSourceAuto,
		Note:        note,
		Title:       e.title,
		Summary:     summary,
		Detail:      summary + "\n" + note,
		RequestCode: RequestCode(now),
	}
}

// Summary renders the compact display line, e.g. "Alipay ￥88.00, tap to record".
func (e *Emitter) Summary(sourceLabel string, c model.Classification) string {
	return sourceLabel + " " + e.currencyPrefix + c.Amount.StringFixed(2) + ", " + e.tapText
}

// RequestCode derives the per-event identifier from the capture time.
func RequestCode(now time.Time) int {
	return int(now.UnixMilli() & RequestCodeMask)
}
