package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository"
)

var (
	ErrAdminEmailExists = repository.ErrAdminEmailExists
	ErrAdminNotFound    = repository.ErrAdminNotFound
	ErrWrongPassword    = errors.New("wrong password")
)

type AdminRepository interface {
	Create(ctx context.Context, user domain.AdminUser) (domain.AdminUser, error)
	FindByID(ctx context.Context, id uint) (domain.AdminUser, error)
	FindByEmail(ctx context.Context, email string) (domain.AdminUser, error)
}

type AdminService struct {
	repo AdminRepository
}

func NewAdminService(repo AdminRepository) *AdminService {
	return &AdminService{
		repo: repo,
	}
}

func (s *AdminService) Signup(ctx context.Context, user domain.AdminUser) (domain.AdminUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AdminUser{}, err
	}
	user.Password = string(hash)

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.AdminUser{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AdminService) Login(ctx context.Context, email, password string) (domain.AdminUser, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return domain.AdminUser{}, ErrAdminNotFound
		}

		return domain.AdminUser{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.AdminUser{}, ErrWrongPassword
	}

	return user, nil
}

func (s *AdminService) GetAdmin(ctx context.Context, id uint) (domain.AdminUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.AdminUser{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}
