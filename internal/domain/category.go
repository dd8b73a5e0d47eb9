package domain

import (
	"time"

	"github.com/google/uuid"
)

type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncOK      SyncStatus = "ok"
	SyncError   SyncStatus = "error"
)

type Category struct {
	ID              uuid.UUID  `json:"id"`
	Slug            string     `json:"slug"`
	TitlePT         string     `json:"title_pt"`
	TitleEN         string     `json:"title_en"`
	TitleES         string     `json:"title_es"`
	DescriptionPT   string     `json:"description_pt"`
	DescriptionEN   string     `json:"description_en"`
	DescriptionES   string     `json:"description_es"`
	PriceCents      int64      `json:"price_cents"`
	Currency        string     `json:"currency"`
	IsFree          bool       `json:"is_free"`
	IsPromotional   bool       `json:"is_promotional"`
	Quota           *int       `json:"quota,omitempty"`
	AvailableFrom   *time.Time `json:"available_from,omitempty"`
	AvailableUntil  *time.Time `json:"available_until,omitempty"`
	IsActive        bool       `json:"is_active"`
	StripeProductID string     `json:"stripe_product_id,omitempty"`
	StripePriceID   string     `json:"stripe_price_id,omitempty"`
	SyncStatus      SyncStatus `json:"sync_status"`
	SyncError       string     `json:"sync_error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Title returns the portuguese title, falling back to the other locales.
func (c *Category) Title() string {
	switch {
	case c.TitlePT != "":
		return c.TitlePT
	case c.TitleEN != "":
		return c.TitleEN
	default:
		return c.TitleES
	}
}

// AvailableAt reports whether the category can be sold at t.
func (c *Category) AvailableAt(t time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.AvailableFrom != nil && t.Before(*c.AvailableFrom) {
		return false
	}
	if c.AvailableUntil != nil && t.After(*c.AvailableUntil) {
		return false
	}
	return true
}
