package domain

import (
	"time"

	"github.com/google/uuid"
)

type CertificateStatus string

const (
	CertificateIssued  CertificateStatus = "issued"
	CertificateRevoked CertificateStatus = "revoked"
)

type Event struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	StartsAt  time.Time `json:"starts_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Certificate struct {
	ID         uuid.UUID         `json:"id"`
	Code       string            `json:"code"`
	HolderName string            `json:"holder_name"`
	EventID    uuid.UUID         `json:"event_id"`
	EventName  string            `json:"event_name"`
	IssuedAt   time.Time         `json:"issued_at"`
	Status     CertificateStatus `json:"status"`
}

func (c *Certificate) IsValid() bool {
	return c.Status == CertificateIssued
}
