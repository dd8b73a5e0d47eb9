package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound      = errors.New("stripe event not found")
	ErrEventAlreadyExists = errors.New("stripe event already recorded")
)

type StripeEvent struct {
	ID          string `gorm:"primaryKey"`
	Type        string `gorm:"not null;index"`
	Status      string `gorm:"not null;default:'processing'"`
	Error       string
	Payload     []byte `gorm:"type:jsonb"`
	Created     time.Time
	ReceivedAt  time.Time `gorm:"not null"`
	ClaimedAt   *time.Time
	ProcessedAt *time.Time
}

type StripeCharge struct {
	ID                string `gorm:"primaryKey"`
	PaymentIntentID   string `gorm:"index"`
	CustomerID        string
	Amount            int64 `gorm:"not null;default:0"`
	AmountRefunded    int64 `gorm:"not null;default:0"`
	Fee               int64 `gorm:"not null;default:0"`
	Currency          string
	Status            string `gorm:"index"`
	Paid              bool
	Refunded          bool
	PaymentMethodType string
	CardBrand         string
	BillingName       string
	BillingEmail      string
	Metadata          map[string]string `gorm:"type:jsonb;serializer:json"`
	Created           time.Time         `gorm:"index"`
	UpdatedAt         time.Time
}

type StripePaymentIntent struct {
	ID             string `gorm:"primaryKey"`
	CustomerID     string
	Amount         int64
	AmountReceived int64
	Currency       string
	Status         string
	LatestChargeID string
	Metadata       map[string]string `gorm:"type:jsonb;serializer:json"`
	Created        time.Time
	UpdatedAt      time.Time
}

type StripeRefund struct {
	ID              string `gorm:"primaryKey"`
	ChargeID        string `gorm:"index"`
	PaymentIntentID string
	Amount          int64
	Currency        string
	Status          string
	Reason          string
	Metadata        map[string]string `gorm:"type:jsonb;serializer:json"`
	Created         time.Time
	UpdatedAt       time.Time
}

type StripePayout struct {
	ID          string `gorm:"primaryKey"`
	Amount      int64
	Currency    string
	Status      string
	Method      string
	Description string
	ArrivalDate time.Time
	Metadata    map[string]string `gorm:"type:jsonb;serializer:json"`
	Created     time.Time
	UpdatedAt   time.Time
}

type StripeDispute struct {
	ID              string `gorm:"primaryKey"`
	ChargeID        string `gorm:"index"`
	PaymentIntentID string
	Amount          int64
	Currency        string
	Status          string
	Reason          string
	Metadata        map[string]string `gorm:"type:jsonb;serializer:json"`
	Created         time.Time
	UpdatedAt       time.Time
}

type StripeCustomer struct {
	ID        string `gorm:"primaryKey"`
	Email     string `gorm:"index"`
	Name      string
	Phone     string
	Deleted   bool
	Metadata  map[string]string `gorm:"type:jsonb;serializer:json"`
	Created   time.Time
	UpdatedAt time.Time
}

type StripeCheckoutSession struct {
	ID              string `gorm:"primaryKey"`
	PaymentIntentID string
	CustomerEmail   string
	AmountTotal     int64
	Currency        string
	Status          string
	PaymentStatus   string
	Metadata        map[string]string `gorm:"type:jsonb;serializer:json"`
	Created         time.Time
	UpdatedAt       time.Time
}

type StripeDAO struct {
	db *gorm.DB
}

func NewStripeDAO(db *gorm.DB) *StripeDAO {
	return &StripeDAO{
		db: db,
	}
}

// InsertEvent records the first delivery of an event id.
func (d *StripeDAO) InsertEvent(ctx context.Context, event StripeEvent) error {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrEventAlreadyExists
		}
		return result.Error
	}

	return nil
}

func (d *StripeDAO) FindEvent(ctx context.Context, id string) (StripeEvent, error) {
	var event StripeEvent

	result := d.db.WithContext(ctx).First(&event, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return StripeEvent{}, ErrEventNotFound
		}

		return StripeEvent{}, result.Error
	}

	return event, nil
}

// ReclaimEvent moves a failed event, or one stuck in processing since before
// staleBefore, back to processing under a new claim. Only one concurrent
// caller can win.
func (d *StripeDAO) ReclaimEvent(ctx context.Context, id string, payload []byte, at, staleBefore time.Time) (bool, error) {
	result := d.db.WithContext(ctx).Model(&StripeEvent{}).
		Where("id = ?", id).
		Where("status = ? OR (status = ? AND (claimed_at IS NULL OR claimed_at < ?))", "error", "processing", staleBefore).
		Updates(map[string]interface{}{
			"status":     "processing",
			"error":      "",
			"payload":    payload,
			"claimed_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (d *StripeDAO) FinishEvent(ctx context.Context, id string, status string, errMsg string, at time.Time) error {
	updates := map[string]interface{}{
		"status": status,
		"error":  errMsg,
	}
	if status == "processed" {
		updates["processed_at"] = at
	}

	return d.db.WithContext(ctx).Model(&StripeEvent{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (d *StripeDAO) upsert(ctx context.Context, value interface{}) error {
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(value).Error
}

func (d *StripeDAO) UpsertCharge(ctx context.Context, charge StripeCharge) error {
	return d.upsert(ctx, &charge)
}

func (d *StripeDAO) UpsertPaymentIntent(ctx context.Context, intent StripePaymentIntent) error {
	return d.upsert(ctx, &intent)
}

func (d *StripeDAO) UpsertRefund(ctx context.Context, refund StripeRefund) error {
	return d.upsert(ctx, &refund)
}

func (d *StripeDAO) UpsertPayout(ctx context.Context, payout StripePayout) error {
	return d.upsert(ctx, &payout)
}

func (d *StripeDAO) UpsertDispute(ctx context.Context, dispute StripeDispute) error {
	return d.upsert(ctx, &dispute)
}

func (d *StripeDAO) UpsertCustomer(ctx context.Context, customer StripeCustomer) error {
	return d.upsert(ctx, &customer)
}

func (d *StripeDAO) UpsertCheckoutSession(ctx context.Context, session StripeCheckoutSession) error {
	return d.upsert(ctx, &session)
}

// RefreshFinanceDaily rebuilds the daily aggregate. A missing view is not an
// error.
func (d *StripeDAO) RefreshFinanceDaily(ctx context.Context) error {
	err := d.db.WithContext(ctx).Exec("REFRESH MATERIALIZED VIEW finance_daily").Error
	if err != nil && !isUndefinedTable(err) {
		return err
	}

	return nil
}
