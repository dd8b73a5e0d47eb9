package domain

import "time"

// ChangeEvent is pushed to admin dashboards whenever a watched row changes.
type ChangeEvent struct {
	Table string    `json:"table"`
	Type  string    `json:"type"`
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
}
