// Package notification turns raw notification payloads into classifiable text.
package notification

import (
	"strings"

	"github.com/Veraticus/paycapture/internal/model"
)

const nbsp = "\u00a0"

// Normalize merges the title, short text and expanded text of a notification
// into one string. Fields are joined in that order with single spaces, so an
// empty middle field leaves two adjacent spaces. Non-breaking spaces become
// ordinary spaces before the result is trimmed.
func Normalize(title, text, bigText string) string {
	joined := title + " " + text + " " + bigText
	return strings.TrimSpace(strings.ReplaceAll(joined, nbsp, " "))
}

// Content returns the normalized content of n.
func Content(n model.RawNotification) string {
	return Normalize(n.Title, n.Text, n.BigText)
}
