package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository/dao"
)

var (
	ErrCertificateNotFound = dao.ErrCertificateNotFound
	ErrCertificateExists   = dao.ErrCertificateExists
	ErrEventNotFoundByID   = dao.ErrEventRowNotFound
	ErrMediaNotFound       = dao.ErrMediaNotFound
)

type CertificateDAO interface {
	FindEvent(ctx context.Context, id uuid.UUID) (dao.Event, error)
	FindByCode(ctx context.Context, code string) (dao.Certificate, error)
	Insert(ctx context.Context, certificate dao.Certificate) (dao.Certificate, error)
	SetStatus(ctx context.Context, code string, status string) error
}

type CertificateRepository struct {
	dao CertificateDAO
}

func NewCertificateRepository(dao CertificateDAO) *CertificateRepository {
	return &CertificateRepository{
		dao: dao,
	}
}

func (r *CertificateRepository) FindEvent(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	found, err := r.dao.FindEvent(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindEvent -> %w", err)
	}

	return domain.Event{ID: found.ID, Name: found.Name, StartsAt: found.StartsAt, CreatedAt: found.CreatedAt}, nil
}

func (r *CertificateRepository) FindByCode(ctx context.Context, code string) (domain.Certificate, error) {
	found, err := r.dao.FindByCode(ctx, code)
	if err != nil {
		return domain.Certificate{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	return certificateToDomain(found), nil
}

func (r *CertificateRepository) Create(ctx context.Context, c domain.Certificate) (domain.Certificate, error) {
	created, err := r.dao.Insert(ctx, dao.Certificate{
		Code:       c.Code,
		HolderName: c.HolderName,
		EventID:    c.EventID,
		IssuedAt:   c.IssuedAt,
		Status:     string(c.Status),
	})
	if err != nil {
		return domain.Certificate{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	out := certificateToDomain(created)
	out.EventName = c.EventName

	return out, nil
}

func (r *CertificateRepository) Revoke(ctx context.Context, code string) error {
	if err := r.dao.SetStatus(ctx, code, string(domain.CertificateRevoked)); err != nil {
		return fmt.Errorf("r.dao.SetStatus -> %w", err)
	}

	return nil
}

func certificateToDomain(c dao.Certificate) domain.Certificate {
	return domain.Certificate{
		ID:         c.ID,
		Code:       c.Code,
		HolderName: c.HolderName,
		EventID:    c.EventID,
		EventName:  c.Event.Name,
		IssuedAt:   c.IssuedAt,
		Status:     domain.CertificateStatus(c.Status),
	}
}

type MediaDAO interface {
	UpsertByPath(ctx context.Context, asset dao.MediaAsset) (dao.MediaAsset, error)
	FindByID(ctx context.Context, id uuid.UUID) (dao.MediaAsset, error)
}

type MediaRepository struct {
	dao MediaDAO
}

func NewMediaRepository(dao MediaDAO) *MediaRepository {
	return &MediaRepository{
		dao: dao,
	}
}

func (r *MediaRepository) Save(ctx context.Context, m domain.MediaAsset) (domain.MediaAsset, error) {
	saved, err := r.dao.UpsertByPath(ctx, dao.MediaAsset{
		Path:        m.Path,
		ContentHash: m.ContentHash,
		ContentType: m.ContentType,
		Width:       m.Width,
		Height:      m.Height,
		Size:        m.Size,
		PublicURL:   m.PublicURL,
		VersionAt:   m.VersionAt,
	})
	if err != nil {
		return domain.MediaAsset{}, fmt.Errorf("r.dao.UpsertByPath -> %w", err)
	}

	return mediaToDomain(saved), nil
}

func (r *MediaRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.MediaAsset, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.MediaAsset{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return mediaToDomain(found), nil
}

func mediaToDomain(m dao.MediaAsset) domain.MediaAsset {
	return domain.MediaAsset{
		ID:          m.ID,
		Path:        m.Path,
		ContentHash: m.ContentHash,
		ContentType: m.ContentType,
		Width:       m.Width,
		Height:      m.Height,
		Size:        m.Size,
		PublicURL:   m.PublicURL,
		VersionAt:   m.VersionAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type ScheduleDAO interface {
	ListAll(ctx context.Context) ([]dao.ScheduleSession, error)
	ReplaceAll(ctx context.Context, sessions []dao.ScheduleSession) error
}

type ScheduleRepository struct {
	dao ScheduleDAO
}

func NewScheduleRepository(dao ScheduleDAO) *ScheduleRepository {
	return &ScheduleRepository{
		dao: dao,
	}
}

func (r *ScheduleRepository) ListSessions(ctx context.Context) ([]domain.ScheduleSession, error) {
	found, err := r.dao.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListAll -> %w", err)
	}

	sessions := make([]domain.ScheduleSession, 0, len(found))
	for _, s := range found {
		sessions = append(sessions, domain.ScheduleSession{
			ID:        s.ID,
			Day:       s.Day,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Title:     s.Title,
			Speaker:   s.Speaker,
			Origin:    s.Origin,
			Location:  s.Location,
			Position:  s.Position,
		})
	}

	return sessions, nil
}

func (r *ScheduleRepository) ReplaceSessions(ctx context.Context, sessions []domain.ScheduleSession) error {
	rows := make([]dao.ScheduleSession, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, dao.ScheduleSession{
			Day:       s.Day,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Title:     s.Title,
			Speaker:   s.Speaker,
			Origin:    s.Origin,
			Location:  s.Location,
			Position:  s.Position,
		})
	}

	if err := r.dao.ReplaceAll(ctx, rows); err != nil {
		return fmt.Errorf("r.dao.ReplaceAll -> %w", err)
	}

	return nil
}
