package stripe

import (
	"encoding/json"
	"errors"
	"fmt"

	stripesdk "github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"

	"github.com/civeni/civeni-api/internal/domain"
)

var (
	ErrMissingSignature = errors.New("missing stripe signature")
	ErrInvalidSignature = errors.New("invalid stripe signature")
)

type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: secret,
	}
}

func (v *Verifier) Configured() bool {
	return v.secret != ""
}

// Verify checks the Stripe-Signature header against the raw body and returns
// the decoded event.
func (v *Verifier) Verify(payload []byte, signature string) (domain.StripeEvent, error) {
	if signature == "" {
		return domain.StripeEvent{}, ErrMissingSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return domain.StripeEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if event.Data == nil {
		return domain.StripeEvent{}, fmt.Errorf("%w: event %s has no data", ErrInvalidSignature, event.ID)
	}

	return domain.StripeEvent{
		ID:      event.ID,
		Type:    string(event.Type),
		Created: unix(event.Created),
		Data:    event.Data.Raw,
		Payload: payload,
	}, nil
}

func decode[T any](raw json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func DecodeCharge(raw json.RawMessage) (domain.Charge, error) {
	c, err := decode[stripesdk.Charge](raw)
	if err != nil {
		return domain.Charge{}, fmt.Errorf("decode charge -> %w", err)
	}
	return ChargeToDomain(c), nil
}

func DecodePaymentIntent(raw json.RawMessage) (domain.PaymentIntent, error) {
	pi, err := decode[stripesdk.PaymentIntent](raw)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("decode payment intent -> %w", err)
	}
	return PaymentIntentToDomain(pi), nil
}

func DecodeRefund(raw json.RawMessage) (domain.Refund, error) {
	r, err := decode[stripesdk.Refund](raw)
	if err != nil {
		return domain.Refund{}, fmt.Errorf("decode refund -> %w", err)
	}
	return RefundToDomain(r), nil
}

func DecodePayout(raw json.RawMessage) (domain.Payout, error) {
	p, err := decode[stripesdk.Payout](raw)
	if err != nil {
		return domain.Payout{}, fmt.Errorf("decode payout -> %w", err)
	}
	return PayoutToDomain(p), nil
}

func DecodeDispute(raw json.RawMessage) (domain.Dispute, error) {
	d, err := decode[stripesdk.Dispute](raw)
	if err != nil {
		return domain.Dispute{}, fmt.Errorf("decode dispute -> %w", err)
	}
	return DisputeToDomain(d), nil
}

func DecodeCustomer(raw json.RawMessage) (domain.Customer, error) {
	c, err := decode[stripesdk.Customer](raw)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("decode customer -> %w", err)
	}
	return CustomerToDomain(c), nil
}

func DecodeCheckoutSession(raw json.RawMessage) (domain.CheckoutSession, error) {
	s, err := decode[stripesdk.CheckoutSession](raw)
	if err != nil {
		return domain.CheckoutSession{}, fmt.Errorf("decode checkout session -> %w", err)
	}
	return CheckoutSessionToDomain(s), nil
}
