package models

import "time"

// RelayJob is one form submission waiting for delivery to Formspree.
type RelayJob struct {
	ID         string         `json:"id"`
	FormID     string         `json:"formId"`
	FormType   string         `json:"formType"`
	Payload    map[string]any `json:"payload"`
	Attempts   int            `json:"attempts"`
	EnqueuedAt time.Time      `json:"enqueuedAt"`
}
