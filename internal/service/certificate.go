package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/civeni/civeni-api/internal/clock"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository"
)

var (
	ErrCertificateNotFound = repository.ErrCertificateNotFound
	ErrCertificateExists   = repository.ErrCertificateExists
	ErrCertificateRevoked  = errors.New("certificate has been revoked")
	ErrEventNotFound       = repository.ErrEventNotFoundByID
)

type CertificateRepository interface {
	FindEvent(ctx context.Context, id uuid.UUID) (domain.Event, error)
	FindByCode(ctx context.Context, code string) (domain.Certificate, error)
	Create(ctx context.Context, c domain.Certificate) (domain.Certificate, error)
	Revoke(ctx context.Context, code string) error
}

type CertificateService struct {
	repo  CertificateRepository
	clock clock.Clock
}

func NewCertificateService(repo CertificateRepository, clk clock.Clock) *CertificateService {
	return &CertificateService{
		repo:  repo,
		clock: clk,
	}
}

// Verify returns the certificate only when it exists and is not revoked.
func (s *CertificateService) Verify(ctx context.Context, code string) (domain.Certificate, error) {
	certificate, err := s.repo.FindByCode(ctx, normalizeCode(code))
	if err != nil {
		return domain.Certificate{}, fmt.Errorf("s.repo.FindByCode -> %w", err)
	}
	if !certificate.IsValid() {
		return domain.Certificate{}, ErrCertificateRevoked
	}

	return certificate, nil
}

// Issue stores a new certificate. An empty code gets a random one.
func (s *CertificateService) Issue(ctx context.Context, c domain.Certificate) (domain.Certificate, error) {
	event, err := s.repo.FindEvent(ctx, c.EventID)
	if err != nil {
		return domain.Certificate{}, fmt.Errorf("s.repo.FindEvent -> %w", err)
	}

	c.Code = normalizeCode(c.Code)
	if c.Code == "" {
		c.Code = NewCertificateCode()
	}
	c.HolderName = strings.TrimSpace(c.HolderName)
	c.EventName = event.Name
	c.IssuedAt = s.clock.Now()
	c.Status = domain.CertificateIssued

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return domain.Certificate{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *CertificateService) Revoke(ctx context.Context, code string) error {
	if err := s.repo.Revoke(ctx, normalizeCode(code)); err != nil {
		return fmt.Errorf("s.repo.Revoke -> %w", err)
	}

	return nil
}

// NewCertificateCode returns a code like CIV25-9F2C-71AB-44D0-E1B3 built from
// 64 random bits of a v4 uuid. The version and variant nibbles are fixed, so
// they are left out.
func NewCertificateCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	raw := strings.ToUpper(hex[:12] + hex[13:16] + hex[17:])[:16]

	return "CIV25-" + raw[0:4] + "-" + raw[4:8] + "-" + raw[8:12] + "-" + raw[12:16]
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
