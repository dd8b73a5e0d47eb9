package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository/dao"
)

var (
	ErrCategoryNotFound = dao.ErrCategoryNotFound
	ErrCouponNotFound   = dao.ErrCouponNotFound
	ErrCouponExhausted  = dao.ErrCouponExhausted
)

type CatalogDAO interface {
	FindCategoryByID(ctx context.Context, id uuid.UUID) (dao.Category, error)
	ListActiveCategories(ctx context.Context) ([]dao.Category, error)
	UpdateCategorySync(ctx context.Context, id uuid.UUID, productID, priceID, status, syncErr string) error
	FindCouponByCode(ctx context.Context, code string) (dao.Coupon, error)
	IncrementCouponUsage(ctx context.Context, code string) error
	ReleaseCouponUsage(ctx context.Context, code string) error
}

type CatalogRepository struct {
	dao CatalogDAO
}

func NewCatalogRepository(dao CatalogDAO) *CatalogRepository {
	return &CatalogRepository{
		dao: dao,
	}
}

func (r *CatalogRepository) FindCategory(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	found, err := r.dao.FindCategoryByID(ctx, id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("r.dao.FindCategoryByID -> %w", err)
	}

	return categoryToDomain(found), nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	found, err := r.dao.ListActiveCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListActiveCategories -> %w", err)
	}

	categories := make([]domain.Category, 0, len(found))
	for _, c := range found {
		categories = append(categories, categoryToDomain(c))
	}

	return categories, nil
}

func (r *CatalogRepository) SaveCategorySync(ctx context.Context, c domain.Category) error {
	err := r.dao.UpdateCategorySync(ctx, c.ID, c.StripeProductID, c.StripePriceID, string(c.SyncStatus), c.SyncError)
	if err != nil {
		return fmt.Errorf("r.dao.UpdateCategorySync -> %w", err)
	}

	return nil
}

func (r *CatalogRepository) FindCoupon(ctx context.Context, code string) (domain.Coupon, error) {
	found, err := r.dao.FindCouponByCode(ctx, code)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("r.dao.FindCouponByCode -> %w", err)
	}

	return domain.Coupon{
		ID:               found.ID,
		Code:             found.Code,
		DiscountType:     domain.DiscountType(found.DiscountType),
		DiscountValue:    found.DiscountValue,
		CategoryID:       found.CategoryID,
		ParticipantTypes: found.ParticipantTypes,
		UsageLimit:       found.UsageLimit,
		UsageCount:       found.UsageCount,
		IsActive:         found.IsActive,
		CreatedAt:        found.CreatedAt,
		UpdatedAt:        found.UpdatedAt,
	}, nil
}

func (r *CatalogRepository) IncrementCouponUsage(ctx context.Context, code string) error {
	if err := r.dao.IncrementCouponUsage(ctx, code); err != nil {
		return fmt.Errorf("r.dao.IncrementCouponUsage -> %w", err)
	}

	return nil
}

func (r *CatalogRepository) ReleaseCouponUsage(ctx context.Context, code string) error {
	if err := r.dao.ReleaseCouponUsage(ctx, code); err != nil {
		return fmt.Errorf("r.dao.ReleaseCouponUsage -> %w", err)
	}

	return nil
}

func categoryToDomain(c dao.Category) domain.Category {
	return domain.Category{
		ID:              c.ID,
		Slug:            c.Slug,
		TitlePT:         c.TitlePT,
		TitleEN:         c.TitleEN,
		TitleES:         c.TitleES,
		DescriptionPT:   c.DescriptionPT,
		DescriptionEN:   c.DescriptionEN,
		DescriptionES:   c.DescriptionES,
		PriceCents:      c.PriceCents,
		Currency:        c.Currency,
		IsFree:          c.IsFree,
		IsPromotional:   c.IsPromotional,
		Quota:           c.Quota,
		AvailableFrom:   c.AvailableFrom,
		AvailableUntil:  c.AvailableUntil,
		IsActive:        c.IsActive,
		StripeProductID: c.StripeProductID,
		StripePriceID:   c.StripePriceID,
		SyncStatus:      domain.SyncStatus(c.SyncStatus),
		SyncError:       c.SyncError,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
