package models

import "time"

// SyncLog is an immutable audit record written once per pipeline run,
// summarizing counts and errors from every stage.
type SyncLog struct {
	ID        string      `json:"id"`
	AccountID string      `json:"accountId"`
	Status    string      `json:"status"` // "completed" or "error"
	Details   interface{} `json:"details"`
	CreatedAt time.Time   `json:"createdAt"`
}
