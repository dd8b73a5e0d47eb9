package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository/dao"
)

var (
	ErrAggregateUnavailable = dao.ErrAggregateUnavailable
)

type FinanceDAO interface {
	ListSucceededCharges(ctx context.Context, from, to time.Time) ([]dao.StripeCharge, error)
	CountRegistrationsByStatus(ctx context.Context, from, to time.Time) ([]dao.StatusCount, error)
	DailyAggregates(ctx context.Context, from, to time.Time) ([]dao.DailyAggregate, error)
	RecentCharges(ctx context.Context, limit int) ([]dao.StripeCharge, error)
}

type FinanceRepository struct {
	dao FinanceDAO
}

func NewFinanceRepository(dao FinanceDAO) *FinanceRepository {
	return &FinanceRepository{
		dao: dao,
	}
}

func (r *FinanceRepository) SucceededCharges(ctx context.Context, w domain.TimeWindow) ([]domain.Charge, error) {
	found, err := r.dao.ListSucceededCharges(ctx, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListSucceededCharges -> %w", err)
	}

	return chargesToDomain(found), nil
}

func (r *FinanceRepository) RecentCharges(ctx context.Context, limit int) ([]domain.Charge, error) {
	found, err := r.dao.RecentCharges(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.RecentCharges -> %w", err)
	}

	return chargesToDomain(found), nil
}

func (r *FinanceRepository) RegistrationCounts(ctx context.Context, w domain.TimeWindow) (domain.RegistrationCounts, error) {
	rows, err := r.dao.CountRegistrationsByStatus(ctx, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountRegistrationsByStatus -> %w", err)
	}

	counts := make(domain.RegistrationCounts, len(rows))
	for _, row := range rows {
		counts[domain.PaymentStatus(row.PaymentStatus)] += row.Total
	}

	return counts, nil
}

func (r *FinanceRepository) DailySeries(ctx context.Context, w domain.TimeWindow) ([]domain.SeriesPoint, error) {
	rows, err := r.dao.DailyAggregates(ctx, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("r.dao.DailyAggregates -> %w", err)
	}

	points := make([]domain.SeriesPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, domain.SeriesPoint{
			Bucket:            row.Bucket.UTC(),
			ConfirmedPayments: row.ConfirmedPayments,
			GrossCents:        row.GrossCents,
			NetCents:          row.NetCents,
		})
	}

	return points, nil
}

func chargesToDomain(rows []dao.StripeCharge) []domain.Charge {
	charges := make([]domain.Charge, 0, len(rows))
	for _, c := range rows {
		charges = append(charges, domain.Charge{
			ID:                c.ID,
			PaymentIntentID:   c.PaymentIntentID,
			CustomerID:        c.CustomerID,
			Amount:            c.Amount,
			AmountRefunded:    c.AmountRefunded,
			Fee:               c.Fee,
			Currency:          c.Currency,
			Status:            c.Status,
			Paid:              c.Paid,
			Refunded:          c.Refunded,
			PaymentMethodType: c.PaymentMethodType,
			CardBrand:         c.CardBrand,
			BillingName:       c.BillingName,
			BillingEmail:      c.BillingEmail,
			Metadata:          c.Metadata,
			Created:           c.Created.UTC(),
		})
	}

	return charges
}
