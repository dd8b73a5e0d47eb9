package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository/dao"
)

var (
	ErrEventNotFound = dao.ErrEventNotFound
)

type StripeDAO interface {
	InsertEvent(ctx context.Context, event dao.StripeEvent) error
	FindEvent(ctx context.Context, id string) (dao.StripeEvent, error)
	ReclaimEvent(ctx context.Context, id string, payload []byte, at, staleBefore time.Time) (bool, error)
	FinishEvent(ctx context.Context, id string, status string, errMsg string, at time.Time) error
	UpsertCharge(ctx context.Context, charge dao.StripeCharge) error
	UpsertPaymentIntent(ctx context.Context, intent dao.StripePaymentIntent) error
	UpsertRefund(ctx context.Context, refund dao.StripeRefund) error
	UpsertPayout(ctx context.Context, payout dao.StripePayout) error
	UpsertDispute(ctx context.Context, dispute dao.StripeDispute) error
	UpsertCustomer(ctx context.Context, customer dao.StripeCustomer) error
	UpsertCheckoutSession(ctx context.Context, session dao.StripeCheckoutSession) error
	RefreshFinanceDaily(ctx context.Context) error
}

type StripeRepository struct {
	dao StripeDAO
}

func NewStripeRepository(dao StripeDAO) *StripeRepository {
	return &StripeRepository{
		dao: dao,
	}
}

// ClaimEvent takes ownership of an event id for processing. It returns the
// existing record and false when the event is processed or another delivery
// holds a live claim on it. Failed events and claims older than
// domain.EventLease are taken over.
func (r *StripeRepository) ClaimEvent(ctx context.Context, event domain.StripeEvent, at time.Time) (domain.EventRecord, bool, error) {
	err := r.dao.InsertEvent(ctx, dao.StripeEvent{
		ID:         event.ID,
		Type:       event.Type,
		Status:     string(domain.EventProcessing),
		Payload:    event.Payload,
		Created:    event.Created,
		ReceivedAt: at,
		ClaimedAt:  &at,
	})
	if err == nil {
		return domain.EventRecord{ID: event.ID, Type: event.Type, Status: domain.EventProcessing, ReceivedAt: at, ClaimedAt: &at}, true, nil
	}
	if !errors.Is(err, dao.ErrEventAlreadyExists) {
		return domain.EventRecord{}, false, fmt.Errorf("r.dao.InsertEvent -> %w", err)
	}

	existing, err := r.dao.FindEvent(ctx, event.ID)
	if err != nil {
		return domain.EventRecord{}, false, fmt.Errorf("r.dao.FindEvent -> %w", err)
	}
	record := eventToDomain(existing)
	if !record.Claimable(at) {
		return record, false, nil
	}

	reclaimed, err := r.dao.ReclaimEvent(ctx, event.ID, event.Payload, at, at.Add(-domain.EventLease))
	if err != nil {
		return domain.EventRecord{}, false, fmt.Errorf("r.dao.ReclaimEvent -> %w", err)
	}
	if reclaimed {
		record.Status = domain.EventProcessing
		record.Error = ""
		record.ClaimedAt = &at
	}

	return record, reclaimed, nil
}

func (r *StripeRepository) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	if err := r.dao.FinishEvent(ctx, id, string(domain.EventProcessed), "", at); err != nil {
		return fmt.Errorf("r.dao.FinishEvent -> %w", err)
	}

	return nil
}

func (r *StripeRepository) MarkFailed(ctx context.Context, id string, cause string, at time.Time) error {
	if err := r.dao.FinishEvent(ctx, id, string(domain.EventError), cause, at); err != nil {
		return fmt.Errorf("r.dao.FinishEvent -> %w", err)
	}

	return nil
}

func (r *StripeRepository) SaveCharge(ctx context.Context, c domain.Charge) error {
	err := r.dao.UpsertCharge(ctx, dao.StripeCharge{
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
		Created:           c.Created,
	})
	if err != nil {
		return fmt.Errorf("r.dao.UpsertCharge -> %w", err)
	}

	return nil
}

func (r *StripeRepository) SavePaymentIntent(ctx context.Context, pi domain.PaymentIntent) error {
	err := r.dao.UpsertPaymentIntent(ctx, dao.StripePaymentIntent{
		ID:             pi.ID,
		CustomerID:     pi.CustomerID,
		Amount:         pi.Amount,
		AmountReceived: pi.AmountReceived,
		Currency:       pi.Currency,
		Status:         pi.Status,
		LatestChargeID: pi.LatestChargeID,
		Metadata:       pi.Metadata,
		Created:        pi.Created,
	})
	if err != nil {
		return fmt.Errorf("r.dao.UpsertPaymentIntent -> %w", err)
	}

	return nil
}

func (r *StripeRepository) SaveRefund(ctx context.Context, rf domain.Refund) error {
	err := r.dao.UpsertRefund(ctx, dao.StripeRefund{
		ID:              rf.ID,
		ChargeID:        rf.ChargeID,
		PaymentIntentID: rf.PaymentIntentID,
		Amount:          rf.Amount,
		Currency:        rf.Currency,
		Status:          rf.Status,
		Reason:          rf.Reason,
		Metadata:        rf.Metadata,
		Created:         rf.Created,
	})
	if err != nil {
		return fmt.Errorf("r.dao.UpsertRefund -> %w", err)
	}

	return nil
}

func (r *StripeRepository) SavePayout(ctx context.Context, p domain.Payout) error {
	err := r.dao.UpsertPayout(ctx, dao.StripePayout{
		ID:          p.ID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Status:      p.Status,
		Method:      p.Method,
		Description: p.Description,
		ArrivalDate: p.ArrivalDate,
		Metadata:    p.Metadata,
		Created:     p.Created,
	})
	if err != nil {
		return fmt.Errorf("r.dao.UpsertPayout -> %w", err)
	}

	return nil
}

func (r *StripeRepository) SaveDispute(ctx context.Context, d domain.Dispute) error {
	err := r.dao.UpsertDispute(ctx, dao.StripeDispute{
		ID:              d.ID,
		ChargeID:        d.ChargeID,
		PaymentIntentID: d.PaymentIntentID,
		Amount:          d.Amount,
		Currency:        d.Currency,
		Status:          d.Status,
		Reason:          d.Reason,
		Metadata:        d.Metadata,
		Created:         d.Created,
	})
	if err != nil {
		return fmt.Errorf("r.dao.UpsertDispute -> %w", err)
	}

	return nil
}

func (r *StripeRepository) SaveCustomer(ctx context.Context, c domain.Customer) error {
	err := r.dao.UpsertCustomer(ctx, dao.StripeCustomer{
		ID:       c.ID,
		Email:    c.Email,
		Name:     c.Name,
		Phone:    c.Phone,
		Deleted:  c.Deleted,
		Metadata: c.Metadata,
		Created:  c.Created,
	})
	if err != nil {
		return fmt.Errorf("r.dao.UpsertCustomer -> %w", err)
	}

	return nil
}

func (r *StripeRepository) SaveCheckoutSession(ctx context.Context, s domain.CheckoutSession) error {
	err := r.dao.UpsertCheckoutSession(ctx, dao.StripeCheckoutSession{
		ID:              s.ID,
		PaymentIntentID: s.PaymentIntentID,
		CustomerEmail:   s.CustomerEmail,
		AmountTotal:     s.AmountTotal,
		Currency:        s.Currency,
		Status:          s.Status,
		PaymentStatus:   s.PaymentStatus,
		Metadata:        s.Metadata,
		Created:         s.Created,
	})
	if err != nil {
		return fmt.Errorf("r.dao.UpsertCheckoutSession -> %w", err)
	}

	return nil
}

func (r *StripeRepository) RefreshFinanceDaily(ctx context.Context) error {
	if err := r.dao.RefreshFinanceDaily(ctx); err != nil {
		return fmt.Errorf("r.dao.RefreshFinanceDaily -> %w", err)
	}

	return nil
}

func eventToDomain(e dao.StripeEvent) domain.EventRecord {
	return domain.EventRecord{
		ID:          e.ID,
		Type:        e.Type,
		Status:      domain.EventStatus(e.Status),
		Error:       e.Error,
		ReceivedAt:  e.ReceivedAt,
		ClaimedAt:   e.ClaimedAt,
		ProcessedAt: e.ProcessedAt,
	}
}
