package model

import "time"

// RawNotification is a notification as delivered by the host notification
// subsystem. Empty text fields mean the field was absent.
type RawNotification struct {
	PostedAt time.Time `json:"posted_at,omitempty"`
	SourceID string    `json:"source_id"`
	Title    string    `json:"title,omitempty"`
	Text     string    `json:"text,omitempty"`
	BigText  string    `json:"big_text,omitempty"`
}
