package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrCertificateExists   = errors.New("certificate code already exists")
	ErrEventRowNotFound    = errors.New("event not found")
)

type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	StartsAt  time.Time
	CreatedAt time.Time
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type Certificate struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code       string    `gorm:"uniqueIndex;not null"`
	HolderName string    `gorm:"not null"`
	EventID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Event      Event     `gorm:"foreignKey:EventID"`
	IssuedAt   time.Time `gorm:"not null"`
	Status     string    `gorm:"not null;default:'issued'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c *Certificate) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CertificateDAO struct {
	db *gorm.DB
}

func NewCertificateDAO(db *gorm.DB) *CertificateDAO {
	return &CertificateDAO{
		db: db,
	}
}

func (d *CertificateDAO) FindEvent(ctx context.Context, id uuid.UUID) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventRowNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *CertificateDAO) FindByCode(ctx context.Context, code string) (Certificate, error) {
	var certificate Certificate

	result := d.db.WithContext(ctx).
		Preload("Event").
		First(&certificate, "upper(code) = upper(?)", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Certificate{}, ErrCertificateNotFound
		}

		return Certificate{}, result.Error
	}

	return certificate, nil
}

func (d *CertificateDAO) Insert(ctx context.Context, certificate Certificate) (Certificate, error) {
	result := d.db.WithContext(ctx).Omit("Event").Create(&certificate)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Certificate{}, ErrCertificateExists
		}
		return Certificate{}, result.Error
	}

	return certificate, nil
}

func (d *CertificateDAO) SetStatus(ctx context.Context, code string, status string) error {
	result := d.db.WithContext(ctx).Model(&Certificate{}).
		Where("upper(code) = upper(?)", code).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCertificateNotFound
	}

	return nil
}
