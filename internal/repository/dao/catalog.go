package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrCouponExhausted  = errors.New("coupon has no remaining uses")
)

type Category struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slug            string    `gorm:"uniqueIndex;not null"`
	TitlePT         string    `gorm:"not null"`
	TitleEN         string
	TitleES         string
	DescriptionPT   string
	DescriptionEN   string
	DescriptionES   string
	PriceCents      int64  `gorm:"not null;default:0"`
	Currency        string `gorm:"not null;default:'brl'"`
	IsFree          bool   `gorm:"not null;default:false"`
	IsPromotional   bool   `gorm:"not null;default:false"`
	Quota           *int
	AvailableFrom   *time.Time
	AvailableUntil  *time.Time
	IsActive        bool `gorm:"not null;default:true"`
	StripeProductID string
	StripePriceID   string
	SyncStatus      string `gorm:"not null;default:'pending'"`
	SyncError       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Coupon struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code             string     `gorm:"uniqueIndex;not null"`
	DiscountType     string     `gorm:"not null"`
	DiscountValue    int64      `gorm:"not null;default:0"`
	CategoryID       *uuid.UUID `gorm:"type:uuid;index"`
	ParticipantTypes []string   `gorm:"type:jsonb;serializer:json"`
	UsageLimit       *int
	UsageCount       int  `gorm:"not null;default:0"`
	IsActive         bool `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CatalogDAO struct {
	db *gorm.DB
}

func NewCatalogDAO(db *gorm.DB) *CatalogDAO {
	return &CatalogDAO{
		db: db,
	}
}

func (d *CatalogDAO) FindCategoryByID(ctx context.Context, id uuid.UUID) (Category, error) {
	var category Category

	result := d.db.WithContext(ctx).First(&category, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Category{}, ErrCategoryNotFound
		}

		return Category{}, result.Error
	}

	return category, nil
}

func (d *CatalogDAO) ListActiveCategories(ctx context.Context) ([]Category, error) {
	var categories []Category

	result := d.db.WithContext(ctx).
		Where("is_active").
		Order("price_cents ASC, title_pt ASC").
		Find(&categories)
	if result.Error != nil {
		return nil, result.Error
	}

	return categories, nil
}

func (d *CatalogDAO) UpdateCategorySync(ctx context.Context, id uuid.UUID, productID, priceID, status, syncErr string) error {
	result := d.db.WithContext(ctx).Model(&Category{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stripe_product_id": productID,
			"stripe_price_id":   priceID,
			"sync_status":       status,
			"sync_error":        syncErr,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func (d *CatalogDAO) FindCouponByCode(ctx context.Context, code string) (Coupon, error) {
	var coupon Coupon

	result := d.db.WithContext(ctx).First(&coupon, "upper(code) = upper(?)", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Coupon{}, ErrCouponNotFound
		}

		return Coupon{}, result.Error
	}

	return coupon, nil
}

// IncrementCouponUsage redeems one use of the coupon. The limit is checked in
// the same statement so concurrent redemptions cannot overshoot it.
func (d *CatalogDAO) IncrementCouponUsage(ctx context.Context, code string) error {
	result := d.db.WithContext(ctx).Model(&Coupon{}).
		Where("upper(code) = upper(?)", code).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindCouponByCode(ctx, code); err != nil {
			return err
		}
		return ErrCouponExhausted
	}

	return nil
}

// ReleaseCouponUsage gives back a use taken by IncrementCouponUsage.
func (d *CatalogDAO) ReleaseCouponUsage(ctx context.Context, code string) error {
	result := d.db.WithContext(ctx).Model(&Coupon{}).
		Where("upper(code) = upper(?) AND usage_count > 0", code).
		Update("usage_count", gorm.Expr("usage_count - 1"))

	return result.Error
}
