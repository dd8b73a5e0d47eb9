package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civeni/civeni-api/internal/clock"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository"
)

var (
	ErrCategoryNotFound     = repository.ErrCategoryNotFound
	ErrCategoryUnavailable  = errors.New("category is not available")
	ErrCouponNotFound       = repository.ErrCouponNotFound
	ErrCouponInactive       = errors.New("coupon is not active")
	ErrCouponExhausted      = repository.ErrCouponExhausted
	ErrCouponParticipant    = errors.New("coupon is not valid for this participant type")
	ErrCouponCategory       = errors.New("coupon is not valid for this category")
	ErrPaymentNotConfigured = errors.New("payment processor is not configured")
	ErrPaymentGateway       = errors.New("payment processor request failed")
)

type CatalogRepository interface {
	FindCategory(ctx context.Context, id uuid.UUID) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	SaveCategorySync(ctx context.Context, c domain.Category) error
	FindCoupon(ctx context.Context, code string) (domain.Coupon, error)
	IncrementCouponUsage(ctx context.Context, code string) error
	ReleaseCouponUsage(ctx context.Context, code string) error
}

type ProductGateway interface {
	Configured() bool
	SyncProduct(ctx context.Context, c domain.Category) (domain.ProductSync, error)
}

type CatalogService struct {
	repo     CatalogRepository
	products ProductGateway
	clock    clock.Clock
}

func NewCatalogService(repo CatalogRepository, products ProductGateway, clk clock.Clock) *CatalogService {
	return &CatalogService{
		repo:     repo,
		products: products,
		clock:    clk,
	}
}

// AvailableCategories lists the categories that can be sold right now.
func (s *CatalogService) AvailableCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListCategories -> %w", err)
	}

	now := s.clock.Now()
	available := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		if c.AvailableAt(now) {
			available = append(available, c)
		}
	}

	return available, nil
}

// ValidateCoupon is the only place discount rules are evaluated. The price
// always comes from the stored category.
func (s *CatalogService) ValidateCoupon(ctx context.Context, check domain.CouponCheck) (domain.CouponValidation, error) {
	category, err := s.repo.FindCategory(ctx, check.CategoryID)
	if err != nil {
		return domain.CouponValidation{}, fmt.Errorf("s.repo.FindCategory -> %w", err)
	}

	return s.validateFor(ctx, category, check)
}

func (s *CatalogService) validateFor(ctx context.Context, category domain.Category, check domain.CouponCheck) (domain.CouponValidation, error) {
	coupon, err := s.repo.FindCoupon(ctx, strings.TrimSpace(check.Code))
	if err != nil {
		return domain.CouponValidation{}, fmt.Errorf("s.repo.FindCoupon -> %w", err)
	}

	switch {
	case !coupon.IsActive:
		return domain.CouponValidation{}, ErrCouponInactive
	case !coupon.HasRemainingUses():
		return domain.CouponValidation{}, ErrCouponExhausted
	case !coupon.AllowsParticipant(check.ParticipantType):
		return domain.CouponValidation{}, ErrCouponParticipant
	case !coupon.AllowsCategory(category.ID):
		return domain.CouponValidation{}, ErrCouponCategory
	}

	final := coupon.Apply(category.PriceCents)

	return domain.CouponValidation{
		Coupon:          coupon,
		OriginalCents:   category.PriceCents,
		FinalCents:      final,
		DiscountedCents: category.PriceCents - final,
	}, nil
}

// SyncCategory mirrors the category into Stripe and records the outcome on
// the category row, including failures.
func (s *CatalogService) SyncCategory(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("s.repo.FindCategory -> %w", err)
	}
	if !s.products.Configured() {
		return domain.Category{}, ErrPaymentNotConfigured
	}

	synced, syncErr := s.products.SyncProduct(ctx, category)
	if syncErr != nil {
		category.SyncStatus = domain.SyncError
		category.SyncError = syncErr.Error()
	} else {
		category.StripeProductID = synced.ProductID
		category.StripePriceID = synced.PriceID
		category.SyncStatus = domain.SyncOK
		category.SyncError = ""
	}

	if err = s.repo.SaveCategorySync(ctx, category); err != nil {
		return domain.Category{}, fmt.Errorf("s.repo.SaveCategorySync -> %w", err)
	}

	if syncErr != nil {
		zap.L().Warn("category sync failed",
			zap.String("category_id", category.ID.String()), zap.Error(syncErr))
		return category, fmt.Errorf("%w: %v", ErrPaymentGateway, syncErr)
	}

	return category, nil
}
