package domain

import "time"

const (
	ChargeStatusSucceeded = "succeeded"
)

type Charge struct {
	ID                string            `json:"id"`
	PaymentIntentID   string            `json:"payment_intent_id,omitempty"`
	CustomerID        string            `json:"customer_id,omitempty"`
	Amount            int64             `json:"amount"`
	AmountRefunded    int64             `json:"amount_refunded"`
	Fee               int64             `json:"fee"`
	BalanceTxID       string            `json:"-"`
	Currency          string            `json:"currency"`
	Status            string            `json:"status"`
	Paid              bool              `json:"paid"`
	Refunded          bool              `json:"refunded"`
	PaymentMethodType string            `json:"payment_method_type,omitempty"`
	CardBrand         string            `json:"card_brand,omitempty"`
	BillingName       string            `json:"billing_name,omitempty"`
	BillingEmail      string            `json:"billing_email,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	Created           time.Time         `json:"created"`
}

// Net is what the charge contributes to revenue after refunds and fees.
func (c *Charge) Net() int64 {
	return c.Amount - c.AmountRefunded - c.Fee
}

// Counts reports whether the charge is part of revenue figures.
func (c *Charge) Counts() bool {
	return c.Status == ChargeStatusSucceeded && c.Paid
}

type PaymentIntent struct {
	ID             string            `json:"id"`
	CustomerID     string            `json:"customer_id,omitempty"`
	Amount         int64             `json:"amount"`
	AmountReceived int64             `json:"amount_received"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	LatestChargeID string            `json:"latest_charge_id,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Created        time.Time         `json:"created"`
}

type Refund struct {
	ID              string            `json:"id"`
	ChargeID        string            `json:"charge_id,omitempty"`
	PaymentIntentID string            `json:"payment_intent_id,omitempty"`
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	Status          string            `json:"status"`
	Reason          string            `json:"reason,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Created         time.Time         `json:"created"`
}

type Payout struct {
	ID          string            `json:"id"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Status      string            `json:"status"`
	Method      string            `json:"method,omitempty"`
	Description string            `json:"description,omitempty"`
	ArrivalDate time.Time         `json:"arrival_date"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Created     time.Time         `json:"created"`
}

type Dispute struct {
	ID              string            `json:"id"`
	ChargeID        string            `json:"charge_id,omitempty"`
	PaymentIntentID string            `json:"payment_intent_id,omitempty"`
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	Status          string            `json:"status"`
	Reason          string            `json:"reason,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Created         time.Time         `json:"created"`
}

type Customer struct {
	ID       string            `json:"id"`
	Email    string            `json:"email,omitempty"`
	Name     string            `json:"name,omitempty"`
	Phone    string            `json:"phone,omitempty"`
	Deleted  bool              `json:"deleted"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Created  time.Time         `json:"created"`
}

type CheckoutSession struct {
	ID              string            `json:"id"`
	PaymentIntentID string            `json:"payment_intent_id,omitempty"`
	CustomerEmail   string            `json:"customer_email,omitempty"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"payment_status"`
	URL             string            `json:"url,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Created         time.Time         `json:"created"`
}

// IsPaid mirrors Stripe's "paid" checkout payment status.
func (s *CheckoutSession) IsPaid() bool {
	return s.PaymentStatus == "paid"
}

// CheckoutRequest holds everything needed to open a hosted checkout page.
type CheckoutRequest struct {
	ProductName   string
	UnitAmount    int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
}

// ProductSync is the result of mirroring a category as a Stripe product.
type ProductSync struct {
	ProductID string
	PriceID   string
}
