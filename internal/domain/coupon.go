package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type DiscountType string

const (
	DiscountPercentage       DiscountType = "percentage"
	DiscountFixedAmount      DiscountType = "fixed_amount"
	DiscountCategoryOverride DiscountType = "category_override"
)

type Coupon struct {
	ID               uuid.UUID    `json:"id"`
	Code             string       `json:"code"`
	DiscountType     DiscountType `json:"discount_type"`
	DiscountValue    int64        `json:"discount_value"`
	CategoryID       *uuid.UUID   `json:"category_id,omitempty"`
	ParticipantTypes []string     `json:"participant_types,omitempty"`
	UsageLimit       *int         `json:"usage_limit,omitempty"`
	UsageCount       int          `json:"usage_count"`
	IsActive         bool         `json:"is_active"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (c *Coupon) HasRemainingUses() bool {
	return c.UsageLimit == nil || c.UsageCount < *c.UsageLimit
}

// AllowsParticipant is true when the coupon has no participant restriction
// or lists the given type.
func (c *Coupon) AllowsParticipant(participantType string) bool {
	if len(c.ParticipantTypes) == 0 {
		return true
	}
	return slices.Contains(c.ParticipantTypes, participantType)
}

func (c *Coupon) AllowsCategory(categoryID uuid.UUID) bool {
	return c.CategoryID == nil || *c.CategoryID == categoryID
}

// Apply returns the final price in minor units for a base price.
func (c *Coupon) Apply(priceCents int64) int64 {
	var final int64
	switch c.DiscountType {
	case DiscountPercentage:
		pct := min(max(c.DiscountValue, 0), 100)
		final = priceCents * (100 - pct) / 100
	case DiscountFixedAmount:
		final = priceCents - c.DiscountValue
	case DiscountCategoryOverride:
		final = c.DiscountValue
	default:
		final = priceCents
	}

	return max(final, 0)
}

// CouponCheck is the input of the server-side coupon validation routine.
type CouponCheck struct {
	Code            string
	CategoryID      uuid.UUID
	ParticipantType string
}

type CouponValidation struct {
	Coupon          Coupon `json:"coupon"`
	OriginalCents   int64  `json:"original_cents"`
	FinalCents      int64  `json:"final_cents"`
	DiscountedCents int64  `json:"discounted_cents"`
}
