package domain

import "time"

// Event represents one audit event.
type Event struct {
	ID          string
	AccountType string
	AccountID   string
	Action      string
	Resource    string
	IP          string
	Metadata    string
	CreatedAt   time.Time
}
