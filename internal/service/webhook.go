package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civeni/civeni-api/internal/clock"
	"github.com/civeni/civeni-api/internal/domain"
	stripegw "github.com/civeni/civeni-api/internal/gateway/stripe"
)

var (
	ErrEventProcessing = errors.New("failed to process stripe event")
)

type StripeMirrorRepository interface {
	ClaimEvent(ctx context.Context, event domain.StripeEvent, at time.Time) (domain.EventRecord, bool, error)
	MarkProcessed(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, cause string, at time.Time) error
	SaveCharge(ctx context.Context, c domain.Charge) error
	SavePaymentIntent(ctx context.Context, pi domain.PaymentIntent) error
	SaveRefund(ctx context.Context, r domain.Refund) error
	SavePayout(ctx context.Context, p domain.Payout) error
	SaveDispute(ctx context.Context, d domain.Dispute) error
	SaveCustomer(ctx context.Context, c domain.Customer) error
	SaveCheckoutSession(ctx context.Context, s domain.CheckoutSession) error
	RefreshFinanceDaily(ctx context.Context) error
}

type FeeLookup interface {
	Configured() bool
	ChargeFee(ctx context.Context, balanceTxID string) (int64, error)
}

type ChangePublisher interface {
	Publish(change domain.ChangeEvent)
}

type processor func(ctx context.Context, event domain.StripeEvent) (table string, id string, err error)

type WebhookService struct {
	repo      StripeMirrorRepository
	fees      FeeLookup
	publisher ChangePublisher
	clock     clock.Clock
}

func NewWebhookService(repo StripeMirrorRepository, fees FeeLookup, publisher ChangePublisher, clk clock.Clock) *WebhookService {
	return &WebhookService{
		repo:      repo,
		fees:      fees,
		publisher: publisher,
		clock:     clk,
	}
}

// Ingest processes a verified event at most once. Deliveries of an event that
// is processed or in flight are acknowledged as duplicates. Failed events, and
// claims abandoned for longer than domain.EventLease, are picked up again.
func (s *WebhookService) Ingest(ctx context.Context, event domain.StripeEvent) (domain.IngestResult, error) {
	result := domain.IngestResult{EventID: event.ID, Type: event.Type}
	log := zap.L().With(zap.String("event_id", event.ID), zap.String("event_type", event.Type))

	record, claimed, err := s.repo.ClaimEvent(ctx, event, s.clock.Now())
	if err != nil {
		return result, fmt.Errorf("s.repo.ClaimEvent -> %w", err)
	}
	if !claimed {
		log.Info("duplicate stripe event", zap.String("status", string(record.Status)))
		result.Duplicate = true
		return result, nil
	}

	process := s.processorFor(event.Type)
	if process == nil {
		if err = s.repo.MarkProcessed(ctx, event.ID, s.clock.Now()); err != nil {
			return result, fmt.Errorf("s.repo.MarkProcessed -> %w", err)
		}
		log.Debug("stripe event ignored")
		return result, nil
	}

	table, id, procErr := process(ctx, event)
	if procErr != nil {
		log.Error("stripe event processing failed", zap.Error(procErr))
		if err = s.repo.MarkFailed(ctx, event.ID, procErr.Error(), s.clock.Now()); err != nil {
			log.Error("failed to record event failure", zap.Error(err))
		}
		return result, fmt.Errorf("%w: %v", ErrEventProcessing, procErr)
	}

	if err = s.repo.MarkProcessed(ctx, event.ID, s.clock.Now()); err != nil {
		return result, fmt.Errorf("s.repo.MarkProcessed -> %w", err)
	}

	result.Handled = true
	if s.publisher != nil {
		s.publisher.Publish(domain.ChangeEvent{Table: table, Type: event.Type, ID: id, At: s.clock.Now()})
	}
	log.Info("stripe event processed", zap.String("object_id", id))

	return result, nil
}

// processorFor routes on the type prefix. More specific prefixes come first
// since charge.dispute.* and charge.refund.* also start with charge.
func (s *WebhookService) processorFor(eventType string) processor {
	switch {
	case strings.HasPrefix(eventType, "checkout.session."):
		return s.processCheckoutSession
	case strings.HasPrefix(eventType, "payment_intent."):
		return s.processPaymentIntent
	case strings.HasPrefix(eventType, "charge.dispute."):
		return s.processDispute
	case strings.HasPrefix(eventType, "charge.refund."), strings.HasPrefix(eventType, "refund."):
		return s.processRefund
	case strings.HasPrefix(eventType, "charge."):
		return s.processCharge
	case strings.HasPrefix(eventType, "payout."):
		return s.processPayout
	case strings.HasPrefix(eventType, "customer.subscription."),
		strings.HasPrefix(eventType, "customer.source."),
		strings.HasPrefix(eventType, "customer.tax_id."),
		strings.HasPrefix(eventType, "customer.discount."),
		strings.HasPrefix(eventType, "customer.cash_balance"):
		return nil
	case strings.HasPrefix(eventType, "customer."):
		return s.processCustomer
	default:
		return nil
	}
}

func (s *WebhookService) processCheckoutSession(ctx context.Context, event domain.StripeEvent) (string, string, error) {
	session, err := stripegw.DecodeCheckoutSession(event.Data)
	if err != nil {
		return "", "", err
	}

	return "stripe_checkout_sessions", session.ID, s.repo.SaveCheckoutSession(ctx, session)
}

func (s *WebhookService) processPaymentIntent(ctx context.Context, event domain.StripeEvent) (string, string, error) {
	pi, err := stripegw.DecodePaymentIntent(event.Data)
	if err != nil {
		return "", "", err
	}

	return "stripe_payment_intents", pi.ID, s.repo.SavePaymentIntent(ctx, pi)
}

func (s *WebhookService) processCharge(ctx context.Context, event domain.StripeEvent) (string, string, error) {
	charge, err := stripegw.DecodeCharge(event.Data)
	if err != nil {
		return "", "", err
	}

	// Webhook payloads carry the balance transaction as an id only.
	if charge.Fee == 0 && charge.BalanceTxID != "" && s.fees != nil && s.fees.Configured() {
		fee, err := s.fees.ChargeFee(ctx, charge.BalanceTxID)
		if err != nil {
			zap.L().Warn("failed to fetch charge fee",
				zap.String("charge_id", charge.ID), zap.Error(err))
		} else {
			charge.Fee = fee
		}
	}

	if err = s.repo.SaveCharge(ctx, charge); err != nil {
		return "", "", err
	}

	if err = s.repo.RefreshFinanceDaily(ctx); err != nil {
		zap.L().Warn("failed to refresh finance_daily", zap.Error(err))
	}

	return "stripe_charges", charge.ID, nil
}

func (s *WebhookService) processRefund(ctx context.Context, event domain.StripeEvent) (string, string, error) {
	refund, err := stripegw.DecodeRefund(event.Data)
	if err != nil {
		return "", "", err
	}

	return "stripe_refunds", refund.ID, s.repo.SaveRefund(ctx, refund)
}

func (s *WebhookService) processDispute(ctx context.Context, event domain.StripeEvent) (string, string, error) {
	dispute, err := stripegw.DecodeDispute(event.Data)
	if err != nil {
		return "", "", err
	}

	return "stripe_disputes", dispute.ID, s.repo.SaveDispute(ctx, dispute)
}

func (s *WebhookService) processPayout(ctx context.Context, event domain.StripeEvent) (string, string, error) {
	payout, err := stripegw.DecodePayout(event.Data)
	if err != nil {
		return "", "", err
	}

	return "stripe_payouts", payout.ID, s.repo.SavePayout(ctx, payout)
}

func (s *WebhookService) processCustomer(ctx context.Context, event domain.StripeEvent) (string, string, error) {
	customer, err := stripegw.DecodeCustomer(event.Data)
	if err != nil {
		return "", "", err
	}
	if event.Type == "customer.deleted" {
		customer.Deleted = true
	}

	return "stripe_customers", customer.ID, s.repo.SaveCustomer(ctx, customer)
}
