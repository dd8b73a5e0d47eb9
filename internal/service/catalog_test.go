package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/civeni/civeni-api/internal/clock"
	"github.com/civeni/civeni-api/internal/domain"
)

var testNow = time.Date(2025, 11, 20, 15, 0, 0, 0, time.UTC)

func freeCategory() domain.Category {
	return domain.Category{
		ID:         uuid.MustParse("5f0b8a2e-58d4-4b3c-9a77-0c39a2f2b001"),
		TitlePT:    "Convidados",
		PriceCents: 0,
		Currency:   "brl",
		IsFree:     true,
		IsActive:   true,
	}
}

func paidCategory() domain.Category {
	return domain.Category{
		ID:         uuid.MustParse("5f0b8a2e-58d4-4b3c-9a77-0c39a2f2b002"),
		TitlePT:    "Participante Geral",
		PriceCents: 7000,
		Currency:   "BRL",
		IsActive:   true,
	}
}

func freeCoupon() domain.Coupon {
	return domain.Coupon{
		Code:             "CIVENI2025FREE",
		DiscountType:     domain.DiscountPercentage,
		DiscountValue:    100,
		ParticipantTypes: []string{"Professor(a)", "Palestrantes", "Sorteados"},
		IsActive:         true,
	}
}

func TestValidateCoupon_ParticipantRestriction(t *testing.T) {
	category := freeCategory()

	tests := []struct {
		name            string
		participantType string
		wantErr         error
	}{
		{name: "listed type is accepted", participantType: "Sorteados"},
		{name: "speaker is accepted", participantType: "Palestrantes"},
		{name: "general participant is rejected", participantType: "general_participant", wantErr: ErrCouponParticipant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCatalogRepository)
			repo.On("FindCategory", mock.Anything, category.ID).Return(category, nil)
			repo.On("FindCoupon", mock.Anything, "CIVENI2025FREE").Return(freeCoupon(), nil)

			svc := NewCatalogService(repo, nil, clock.NewFixed(testNow))
			got, err := svc.ValidateCoupon(context.Background(), domain.CouponCheck{
				Code:            " CIVENI2025FREE ",
				CategoryID:      category.ID,
				ParticipantType: tt.participantType,
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(0), got.FinalCents)
			repo.AssertExpectations(t)
		})
	}
}

func TestValidateCoupon_Rules(t *testing.T) {
	category := paidCategory()
	other := uuid.New()
	limit := 2

	tests := []struct {
		name      string
		coupon    domain.Coupon
		wantFinal int64
		wantErr   error
	}{
		{
			name:      "percentage",
			coupon:    domain.Coupon{Code: "HALF", DiscountType: domain.DiscountPercentage, DiscountValue: 50, IsActive: true},
			wantFinal: 3500,
		},
		{
			name:      "fixed amount never goes negative",
			coupon:    domain.Coupon{Code: "BIG", DiscountType: domain.DiscountFixedAmount, DiscountValue: 9000, IsActive: true},
			wantFinal: 0,
		},
		{
			name:      "category override",
			coupon:    domain.Coupon{Code: "LOTE1", DiscountType: domain.DiscountCategoryOverride, DiscountValue: 5000, IsActive: true},
			wantFinal: 5000,
		},
		{
			name:    "inactive",
			coupon:  domain.Coupon{Code: "OFF", DiscountType: domain.DiscountPercentage, DiscountValue: 10},
			wantErr: ErrCouponInactive,
		},
		{
			name:    "exhausted",
			coupon:  domain.Coupon{Code: "USED", DiscountType: domain.DiscountPercentage, DiscountValue: 10, IsActive: true, UsageLimit: &limit, UsageCount: 2},
			wantErr: ErrCouponExhausted,
		},
		{
			name:    "other category",
			coupon:  domain.Coupon{Code: "ELSE", DiscountType: domain.DiscountPercentage, DiscountValue: 10, IsActive: true, CategoryID: &other},
			wantErr: ErrCouponCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCatalogRepository)
			repo.On("FindCategory", mock.Anything, category.ID).Return(category, nil)
			repo.On("FindCoupon", mock.Anything, tt.coupon.Code).Return(tt.coupon, nil)

			svc := NewCatalogService(repo, nil, clock.NewFixed(testNow))
			got, err := svc.ValidateCoupon(context.Background(), domain.CouponCheck{
				Code:       tt.coupon.Code,
				CategoryID: category.ID,
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFinal, got.FinalCents)
			assert.Equal(t, int64(7000), got.OriginalCents)
			assert.Equal(t, got.OriginalCents-got.FinalCents, got.DiscountedCents)
		})
	}
}

func TestValidateCoupon_UnknownCode(t *testing.T) {
	category := paidCategory()
	repo := new(MockCatalogRepository)
	repo.On("FindCategory", mock.Anything, category.ID).Return(category, nil)
	repo.On("FindCoupon", mock.Anything, "NOPE").Return(domain.Coupon{}, ErrCouponNotFound)

	svc := NewCatalogService(repo, nil, clock.NewFixed(testNow))
	_, err := svc.ValidateCoupon(context.Background(), domain.CouponCheck{Code: "NOPE", CategoryID: category.ID})

	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestAvailableCategories(t *testing.T) {
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	open := paidCategory()
	closed := paidCategory()
	closed.ID = uuid.New()
	closed.AvailableUntil = &past
	early := paidCategory()
	early.ID = uuid.New()
	early.AvailableFrom = &future

	repo := new(MockCatalogRepository)
	repo.On("ListCategories", mock.Anything).Return([]domain.Category{open, closed, early}, nil)

	svc := NewCatalogService(repo, nil, clock.NewFixed(testNow))
	got, err := svc.AvailableCategories(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
}

func TestSyncCategory(t *testing.T) {
	t.Run("records product and price", func(t *testing.T) {
		category := paidCategory()
		repo := new(MockCatalogRepository)
		products := new(MockProductGateway)
		repo.On("FindCategory", mock.Anything, category.ID).Return(category, nil)
		products.On("Configured").Return(true)
		products.On("SyncProduct", mock.Anything, category).Return(domain.ProductSync{ProductID: "prod_1", PriceID: "price_1"}, nil)
		repo.On("SaveCategorySync", mock.Anything, mock.MatchedBy(func(c domain.Category) bool {
			return c.SyncStatus == domain.SyncOK && c.StripePriceID == "price_1" && c.SyncError == ""
		})).Return(nil)

		svc := NewCatalogService(repo, products, clock.NewFixed(testNow))
		got, err := svc.SyncCategory(context.Background(), category.ID)

		require.NoError(t, err)
		assert.Equal(t, "prod_1", got.StripeProductID)
		repo.AssertExpectations(t)
		products.AssertExpectations(t)
	})

	t.Run("records failure on the category", func(t *testing.T) {
		category := paidCategory()
		repo := new(MockCatalogRepository)
		products := new(MockProductGateway)
		repo.On("FindCategory", mock.Anything, category.ID).Return(category, nil)
		products.On("Configured").Return(true)
		products.On("SyncProduct", mock.Anything, category).Return(domain.ProductSync{}, errors.New("api down"))
		repo.On("SaveCategorySync", mock.Anything, mock.MatchedBy(func(c domain.Category) bool {
			return c.SyncStatus == domain.SyncError && c.SyncError == "api down"
		})).Return(nil)

		svc := NewCatalogService(repo, products, clock.NewFixed(testNow))
		got, err := svc.SyncCategory(context.Background(), category.ID)

		assert.ErrorIs(t, err, ErrPaymentGateway)
		assert.Equal(t, domain.SyncError, got.SyncStatus)
		repo.AssertExpectations(t)
	})

	t.Run("not configured", func(t *testing.T) {
		category := paidCategory()
		repo := new(MockCatalogRepository)
		products := new(MockProductGateway)
		repo.On("FindCategory", mock.Anything, category.ID).Return(category, nil)
		products.On("Configured").Return(false)

		svc := NewCatalogService(repo, products, clock.NewFixed(testNow))
		_, err := svc.SyncCategory(context.Background(), category.ID)

		assert.ErrorIs(t, err, ErrPaymentNotConfigured)
		repo.AssertNotCalled(t, "SaveCategorySync", mock.Anything, mock.Anything)
	})
}
