package dao

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Buckets are UTC days whatever the session TimeZone is.
const createFinanceDailyView = `
CREATE MATERIALIZED VIEW finance_daily AS
SELECT date_trunc('day', created AT TIME ZONE 'UTC') AT TIME ZONE 'UTC' AS bucket,
       COUNT(*) AS confirmed_payments,
       COALESCE(SUM(amount), 0) AS gross_cents,
       COALESCE(SUM(amount - amount_refunded - fee), 0) AS net_cents
FROM stripe_charges
WHERE status = 'succeeded' AND paid
GROUP BY 1`

func InitTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&AdminUser{},
		&Category{},
		&Coupon{},
		&Registration{},
		&Notification{},
		&StripeEvent{},
		&StripeCharge{},
		&StripePaymentIntent{},
		&StripeRefund{},
		&StripePayout{},
		&StripeDispute{},
		&StripeCustomer{},
		&StripeCheckoutSession{},
		&Event{},
		&Certificate{},
		&MediaAsset{},
		&ScheduleSession{},
	)
	if err != nil {
		return err
	}

	// The view only holds derived rows, so it is rebuilt to pick up
	// definition changes.
	if err = db.Exec("DROP MATERIALIZED VIEW IF EXISTS finance_daily").Error; err != nil {
		return err
	}

	return db.Exec(createFinanceDailyView).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}
