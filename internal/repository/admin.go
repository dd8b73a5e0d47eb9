package repository

import (
	"context"
	"fmt"

	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository/dao"
)

var (
	ErrAdminEmailExists = dao.ErrAdminEmailExists
	ErrAdminNotFound    = dao.ErrAdminNotFound
)

type AdminDAO interface {
	Insert(ctx context.Context, user dao.AdminUser) (dao.AdminUser, error)
	FindByID(ctx context.Context, id uint) (dao.AdminUser, error)
	FindByEmail(ctx context.Context, email string) (dao.AdminUser, error)
}

type AdminRepository struct {
	dao AdminDAO
}

func NewAdminRepository(dao AdminDAO) *AdminRepository {
	return &AdminRepository{
		dao: dao,
	}
}

func (r *AdminRepository) Create(ctx context.Context, user domain.AdminUser) (domain.AdminUser, error) {
	created, err := r.dao.Insert(ctx, dao.AdminUser{
		Email:    user.Email,
		Password: user.Password,
		Name:     user.Name,
	})
	if err != nil {
		return domain.AdminUser{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id uint) (domain.AdminUser, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.AdminUser{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (domain.AdminUser, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.AdminUser{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *AdminRepository) daoToDomain(u dao.AdminUser) domain.AdminUser {
	return domain.AdminUser{
		ID:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
