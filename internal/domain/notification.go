package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationRegistrationConfirmed = "registration_confirmed"

	ChannelEmail = "email"

	NotificationQueued = "queued"
)

// Notification is an alert record picked up by the mail/SMS sender.
type Notification struct {
	ID             uuid.UUID
	RegistrationID uuid.UUID
	Kind           string
	Channel        string
	Recipient      string
	Payload        map[string]string
	Status         string
	CreatedAt      time.Time
}
