package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrAdminEmailExists = errors.New("admin already exists")
	ErrAdminNotFound    = errors.New("admin not found")
)

type AdminUser struct {
	ID uint `gorm:"primaryKey"`

	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
	Name     string `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type AdminDAO struct {
	db *gorm.DB
}

func NewAdminDAO(db *gorm.DB) *AdminDAO {
	return &AdminDAO{
		db: db,
	}
}

func (d *AdminDAO) Insert(ctx context.Context, user AdminUser) (AdminUser, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return AdminUser{}, ErrAdminEmailExists
		}

		return AdminUser{}, result.Error
	}

	return user, nil
}

func (d *AdminDAO) FindByID(ctx context.Context, id uint) (AdminUser, error) {
	var user AdminUser

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return AdminUser{}, ErrAdminNotFound
		}

		return AdminUser{}, result.Error
	}

	return user, nil
}

func (d *AdminDAO) FindByEmail(ctx context.Context, email string) (AdminUser, error) {
	var user AdminUser

	result := d.db.WithContext(ctx).First(&user, "lower(email) = lower(?)", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return AdminUser{}, ErrAdminNotFound
		}

		return AdminUser{}, result.Error
	}

	return user, nil
}
