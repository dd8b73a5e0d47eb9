package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
)

type Registration struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email           string    `gorm:"not null;index"`
	FullName        string    `gorm:"not null"`
	CategoryID      uuid.UUID `gorm:"type:uuid;not null;index"`
	CouponCode      string
	ParticipantType string
	CourseID        string
	ClassID         string
	PaymentStatus   string    `gorm:"not null;default:'pending';index"`
	StripeSessionID *string   `gorm:"uniqueIndex"`
	AmountCents     int64     `gorm:"not null;default:0"`
	Currency        string    `gorm:"not null;default:'brl'"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

func (r *Registration) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Notification struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey"`
	RegistrationID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:ux_notifications_registration_kind,priority:1"`
	Kind           string            `gorm:"not null;uniqueIndex:ux_notifications_registration_kind,priority:2"`
	Channel        string            `gorm:"not null"`
	Recipient      string            `gorm:"not null"`
	Payload        map[string]string `gorm:"type:jsonb;serializer:json"`
	Status         string            `gorm:"not null;default:'queued'"`
	CreatedAt      time.Time
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

func (d *RegistrationDAO) Insert(ctx context.Context, registration Registration) (Registration, error) {
	result := d.db.WithContext(ctx).Create(&registration)
	if result.Error != nil {
		return Registration{}, result.Error
	}

	return registration, nil
}

func (d *RegistrationDAO) FindByID(ctx context.Context, id uuid.UUID) (Registration, error) {
	var registration Registration

	result := d.db.WithContext(ctx).First(&registration, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return registration, nil
}

func (d *RegistrationDAO) FindBySessionID(ctx context.Context, sessionID string) (Registration, error) {
	var registration Registration

	result := d.db.WithContext(ctx).First(&registration, "stripe_session_id = ?", sessionID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return registration, nil
}

func (d *RegistrationDAO) AttachSession(ctx context.Context, id uuid.UUID, sessionID string, status string) error {
	result := d.db.WithContext(ctx).Model(&Registration{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stripe_session_id": sessionID,
			"payment_status":    status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

// MarkCompleted flips a registration to completed. It reports false when the
// row was already completed, so callers can run one-shot side effects.
func (d *RegistrationDAO) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Registration{}).
		Where("id = ? AND payment_status <> ?", id, "completed").
		Update("payment_status", "completed")
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (d *RegistrationDAO) ListAll(ctx context.Context) ([]Registration, error) {
	var registrations []Registration

	result := d.db.WithContext(ctx).Order("created_at ASC").Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}

	return registrations, nil
}

func (d *RegistrationDAO) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := d.db.WithContext(ctx).Where("id IN ?", ids).Delete(&Registration{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// InsertNotification enqueues an alert record. It reports false when the
// same kind was already queued for the registration.
func (d *RegistrationDAO) InsertNotification(ctx context.Context, notification Notification) (bool, error) {
	result := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&notification)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return false, nil
		}
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
