package domain

import (
	"encoding/json"
	"time"
)

type EventStatus string

const (
	EventProcessing EventStatus = "processing"
	EventProcessed  EventStatus = "processed"
	EventError      EventStatus = "error"
)

// EventLease bounds how long a delivery owns an event. A redelivery may take
// over a processing event whose claim is older than this.
const EventLease = 5 * time.Minute

// StripeEvent is a verified webhook delivery. Data holds the raw data.object.
type StripeEvent struct {
	ID      string
	Type    string
	Created time.Time
	Data    json.RawMessage
	Payload []byte
}

// EventRecord is the dedup row kept for every delivered event id.
type EventRecord struct {
	ID          string
	Type        string
	Status      EventStatus
	Error       string
	ReceivedAt  time.Time
	ClaimedAt   *time.Time
	ProcessedAt *time.Time
}

// Claimable reports whether a new delivery at now may take the event over.
func (r EventRecord) Claimable(now time.Time) bool {
	switch r.Status {
	case EventError:
		return true
	case EventProcessing:
		return r.ClaimedAt == nil || r.ClaimedAt.Before(now.Add(-EventLease))
	default:
		return false
	}
}

// IngestResult tells the caller what happened to a delivery.
type IngestResult struct {
	EventID   string `json:"event_id"`
	Type      string `json:"type"`
	Duplicate bool   `json:"duplicate"`
	Handled   bool   `json:"handled"`
}
