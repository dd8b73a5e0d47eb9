package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrAggregateUnavailable is returned when the finance_daily view is missing.
var ErrAggregateUnavailable = errors.New("finance aggregate unavailable")

type DailyAggregate struct {
	Bucket            time.Time
	ConfirmedPayments int64
	GrossCents        int64
	NetCents          int64
}

type StatusCount struct {
	PaymentStatus string
	Total         int64
}

type FinanceDAO struct {
	db *gorm.DB
}

func NewFinanceDAO(db *gorm.DB) *FinanceDAO {
	return &FinanceDAO{
		db: db,
	}
}

func windowed(tx *gorm.DB, column string, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		tx = tx.Where(column+" >= ?", from)
	}
	return tx.Where(column+" < ?", to)
}

// ListSucceededCharges returns the charges that count toward revenue.
func (d *FinanceDAO) ListSucceededCharges(ctx context.Context, from, to time.Time) ([]StripeCharge, error) {
	var charges []StripeCharge

	tx := d.db.WithContext(ctx).Model(&StripeCharge{}).
		Where("status = ? AND paid", "succeeded")
	result := windowed(tx, "created", from, to).
		Order("created ASC").
		Find(&charges)
	if result.Error != nil {
		return nil, result.Error
	}

	return charges, nil
}

func (d *FinanceDAO) CountRegistrationsByStatus(ctx context.Context, from, to time.Time) ([]StatusCount, error) {
	var counts []StatusCount

	tx := d.db.WithContext(ctx).Model(&Registration{}).
		Select("payment_status, COUNT(*) AS total")
	result := windowed(tx, "created_at", from, to).
		Group("payment_status").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}

	return counts, nil
}

// DailyAggregates reads the UTC day buckets in [from, to). Callers pass day
// boundaries; a partial day is not in the view.
func (d *FinanceDAO) DailyAggregates(ctx context.Context, from, to time.Time) ([]DailyAggregate, error) {
	var rows []DailyAggregate

	tx := d.db.WithContext(ctx).Table("finance_daily").
		Select("bucket, confirmed_payments, gross_cents, net_cents")
	result := windowed(tx, "bucket", from.UTC(), to.UTC()).
		Order("bucket ASC").
		Scan(&rows)
	if result.Error != nil {
		if isUndefinedTable(result.Error) {
			return nil, ErrAggregateUnavailable
		}
		return nil, result.Error
	}

	return rows, nil
}

// RecentCharges backs the payment-method lookup when the gateway is not
// configured.
func (d *FinanceDAO) RecentCharges(ctx context.Context, limit int) ([]StripeCharge, error) {
	var charges []StripeCharge

	result := d.db.WithContext(ctx).
		Order("created DESC").
		Limit(limit).
		Find(&charges)
	if result.Error != nil {
		return nil, result.Error
	}

	return charges, nil
}
