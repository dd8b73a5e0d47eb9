package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/civeni/civeni-api/internal/domain"
)

func TestAdminSignup_HashesPassword(t *testing.T) {
	repo := new(MockAdminRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u domain.AdminUser) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("S3cret!pass")) == nil
	})).Return(domain.AdminUser{ID: 1, Email: "admin@civeni.test"}, nil)

	svc := NewAdminService(repo)
	got, err := svc.Signup(context.Background(), domain.AdminUser{Email: "admin@civeni.test", Password: "S3cret!pass"})

	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)
	repo.AssertExpectations(t)
}

func TestAdminLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("S3cret!pass"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := domain.AdminUser{ID: 7, Email: "admin@civeni.test", Password: string(hash)}

	t.Run("success", func(t *testing.T) {
		repo := new(MockAdminRepository)
		repo.On("FindByEmail", mock.Anything, stored.Email).Return(stored, nil)

		got, err := NewAdminService(repo).Login(context.Background(), stored.Email, "S3cret!pass")

		require.NoError(t, err)
		assert.Equal(t, uint(7), got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockAdminRepository)
		repo.On("FindByEmail", mock.Anything, stored.Email).Return(stored, nil)

		_, err := NewAdminService(repo).Login(context.Background(), stored.Email, "nope")

		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockAdminRepository)
		repo.On("FindByEmail", mock.Anything, "ghost@civeni.test").Return(domain.AdminUser{}, ErrAdminNotFound)

		_, err := NewAdminService(repo).Login(context.Background(), "ghost@civeni.test", "x")

		assert.ErrorIs(t, err, ErrAdminNotFound)
	})
}
