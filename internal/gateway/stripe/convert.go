package stripe

import (
	"time"

	stripesdk "github.com/stripe/stripe-go/v83"

	"github.com/civeni/civeni-api/internal/domain"
)

func unix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func ChargeToDomain(c *stripesdk.Charge) domain.Charge {
	out := domain.Charge{
		ID:             c.ID,
		Amount:         c.Amount,
		AmountRefunded: c.AmountRefunded,
		Currency:       string(c.Currency),
		Status:         string(c.Status),
		Paid:           c.Paid,
		Refunded:       c.Refunded,
		Metadata:       c.Metadata,
		Created:        unix(c.Created),
	}
	if c.PaymentIntent != nil {
		out.PaymentIntentID = c.PaymentIntent.ID
	}
	if c.Customer != nil {
		out.CustomerID = c.Customer.ID
	}
	if c.BalanceTransaction != nil {
		out.BalanceTxID = c.BalanceTransaction.ID
		out.Fee = c.BalanceTransaction.Fee
	}
	if c.BillingDetails != nil {
		out.BillingName = c.BillingDetails.Name
		out.BillingEmail = c.BillingDetails.Email
	}
	if d := c.PaymentMethodDetails; d != nil {
		out.PaymentMethodType = string(d.Type)
		if d.Card != nil {
			out.CardBrand = string(d.Card.Brand)
		}
	}

	return out
}

func PaymentIntentToDomain(pi *stripesdk.PaymentIntent) domain.PaymentIntent {
	out := domain.PaymentIntent{
		ID:             pi.ID,
		Amount:         pi.Amount,
		AmountReceived: pi.AmountReceived,
		Currency:       string(pi.Currency),
		Status:         string(pi.Status),
		Metadata:       pi.Metadata,
		Created:        unix(pi.Created),
	}
	if pi.Customer != nil {
		out.CustomerID = pi.Customer.ID
	}
	if pi.LatestCharge != nil {
		out.LatestChargeID = pi.LatestCharge.ID
	}

	return out
}

func RefundToDomain(r *stripesdk.Refund) domain.Refund {
	out := domain.Refund{
		ID:       r.ID,
		Amount:   r.Amount,
		Currency: string(r.Currency),
		Status:   string(r.Status),
		Reason:   string(r.Reason),
		Metadata: r.Metadata,
		Created:  unix(r.Created),
	}
	if r.Charge != nil {
		out.ChargeID = r.Charge.ID
	}
	if r.PaymentIntent != nil {
		out.PaymentIntentID = r.PaymentIntent.ID
	}

	return out
}

func PayoutToDomain(p *stripesdk.Payout) domain.Payout {
	return domain.Payout{
		ID:          p.ID,
		Amount:      p.Amount,
		Currency:    string(p.Currency),
		Status:      string(p.Status),
		Method:      string(p.Method),
		Description: p.Description,
		ArrivalDate: unix(p.ArrivalDate),
		Metadata:    p.Metadata,
		Created:     unix(p.Created),
	}
}

func DisputeToDomain(d *stripesdk.Dispute) domain.Dispute {
	out := domain.Dispute{
		ID:       d.ID,
		Amount:   d.Amount,
		Currency: string(d.Currency),
		Status:   string(d.Status),
		Reason:   string(d.Reason),
		Metadata: d.Metadata,
		Created:  unix(d.Created),
	}
	if d.Charge != nil {
		out.ChargeID = d.Charge.ID
	}
	if d.PaymentIntent != nil {
		out.PaymentIntentID = d.PaymentIntent.ID
	}

	return out
}

func CustomerToDomain(c *stripesdk.Customer) domain.Customer {
	return domain.Customer{
		ID:       c.ID,
		Email:    c.Email,
		Name:     c.Name,
		Phone:    c.Phone,
		Deleted:  c.Deleted,
		Metadata: c.Metadata,
		Created:  unix(c.Created),
	}
}

func CheckoutSessionToDomain(s *stripesdk.CheckoutSession) domain.CheckoutSession {
	out := domain.CheckoutSession{
		ID:            s.ID,
		CustomerEmail: s.CustomerEmail,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		URL:           s.URL,
		Metadata:      s.Metadata,
		Created:       unix(s.Created),
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	if out.CustomerEmail == "" && s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}

	return out
}
