package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository/dao"
)

var (
	ErrRegistrationNotFound = dao.ErrRegistrationNotFound
)

type RegistrationDAO interface {
	Insert(ctx context.Context, registration dao.Registration) (dao.Registration, error)
	FindByID(ctx context.Context, id uuid.UUID) (dao.Registration, error)
	FindBySessionID(ctx context.Context, sessionID string) (dao.Registration, error)
	AttachSession(ctx context.Context, id uuid.UUID, sessionID string, status string) error
	MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error)
	ListAll(ctx context.Context) ([]dao.Registration, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	InsertNotification(ctx context.Context, notification dao.Notification) (bool, error)
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

func (r *RegistrationRepository) Create(ctx context.Context, registration domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Insert(ctx, dao.Registration{
		Email:           registration.Email,
		FullName:        registration.FullName,
		CategoryID:      registration.CategoryID,
		CouponCode:      registration.CouponCode,
		ParticipantType: registration.ParticipantType,
		CourseID:        registration.CourseID,
		ClassID:         registration.ClassID,
		PaymentStatus:   string(registration.PaymentStatus),
		StripeSessionID: optional(registration.StripeSessionID),
		AmountCents:     registration.AmountCents,
		Currency:        registration.Currency,
	})
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return registrationToDomain(created), nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Registration, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return registrationToDomain(found), nil
}

func (r *RegistrationRepository) FindBySessionID(ctx context.Context, sessionID string) (domain.Registration, error) {
	found, err := r.dao.FindBySessionID(ctx, sessionID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindBySessionID -> %w", err)
	}

	return registrationToDomain(found), nil
}

// SaveSession persists the checkout session created for the registration.
func (r *RegistrationRepository) SaveSession(ctx context.Context, registration domain.Registration) error {
	err := r.dao.AttachSession(ctx, registration.ID, registration.StripeSessionID, string(registration.PaymentStatus))
	if err != nil {
		return fmt.Errorf("r.dao.AttachSession -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	changed, err := r.dao.MarkCompleted(ctx, id)
	if err != nil {
		return false, fmt.Errorf("r.dao.MarkCompleted -> %w", err)
	}

	return changed, nil
}

func (r *RegistrationRepository) ListAll(ctx context.Context) ([]domain.Registration, error) {
	found, err := r.dao.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListAll -> %w", err)
	}

	registrations := make([]domain.Registration, 0, len(found))
	for _, reg := range found {
		registrations = append(registrations, registrationToDomain(reg))
	}

	return registrations, nil
}

func (r *RegistrationRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	deleted, err := r.dao.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("r.dao.DeleteByIDs -> %w", err)
	}

	return deleted, nil
}

func (r *RegistrationRepository) EnqueueNotification(ctx context.Context, n domain.Notification) (bool, error) {
	inserted, err := r.dao.InsertNotification(ctx, dao.Notification{
		RegistrationID: n.RegistrationID,
		Kind:           n.Kind,
		Channel:        n.Channel,
		Recipient:      n.Recipient,
		Payload:        n.Payload,
		Status:         n.Status,
	})
	if err != nil {
		return false, fmt.Errorf("r.dao.InsertNotification -> %w", err)
	}

	return inserted, nil
}

func registrationToDomain(r dao.Registration) domain.Registration {
	var sessionID string
	if r.StripeSessionID != nil {
		sessionID = *r.StripeSessionID
	}

	return domain.Registration{
		ID:              r.ID,
		Email:           r.Email,
		FullName:        r.FullName,
		CategoryID:      r.CategoryID,
		CouponCode:      r.CouponCode,
		ParticipantType: r.ParticipantType,
		CourseID:        r.CourseID,
		ClassID:         r.ClassID,
		PaymentStatus:   domain.PaymentStatus(r.PaymentStatus),
		StripeSessionID: sessionID,
		AmountCents:     r.AmountCents,
		Currency:        r.Currency,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
