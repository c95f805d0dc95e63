// Package dedup suppresses repeated payment detections caused by a payment app
// updating or re-posting the same notification.
package dedup

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultWindow is how long an identical detection stays suppressed.
const DefaultWindow = 8 * time.Second

// Entry is the most recently accepted detection.
type Entry struct {
	AcceptedAt time.Time
	Key        string
}

// Window remembers only the latest accepted detection. A detection is
// suppressed when it has the same key as that one and arrives less than the
// window duration after it. Any other detection replaces the remembered entry.
type Window struct {
	last     Entry
	duration time.Duration
	mu       sync.Mutex
	set      bool
}

// NewWindow creates an empty window. A non-positive duration falls back to DefaultWindow.
func NewWindow(duration time.Duration) *Window {
	if duration <= 0 {
		duration = DefaultWindow
	}
	return &Window{duration: duration}
}

// Key derives the identity of a detection. Amounts are keyed by their
// two-decimal form so that 5, 5.0 and 5.00 collide.
func Key(sourceID string, amount decimal.Decimal, note string) string {
	return sourceID + "|" + amount.StringFixed(2) + "|" + note
}

// Accept reports whether a detection should be emitted and, if so, records it
// as the latest one.
func (w *Window) Accept(sourceID string, amount decimal.Decimal, note string, now time.Time) bool {
	return w.CheckAndUpdate(Key(sourceID, amount, note), now)
}

// CheckAndUpdate compares key with the latest accepted key and overwrites it
// on acceptance, as one critical section.
func (w *Window) CheckAndUpdate(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.set && key == w.last.Key && now.Sub(w.last.AcceptedAt) < w.duration {
		return false
	}

	w.last = Entry{Key: key, AcceptedAt: now}
	w.set = true
	return true
}

// Last returns the latest accepted entry, if any.
func (w *Window) Last() (Entry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.set
}

// Duration returns the suppression window.
func (w *Window) Duration() time.Duration {
	return w.duration
}

// Reset forgets the latest accepted entry.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = Entry{}
	w.set = false
}
