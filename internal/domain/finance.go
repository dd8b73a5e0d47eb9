package domain

import "time"

const (
	NoLotLabel     = "Sem Lote"
	NoCouponLabel  = "Sem Cupom"
	OtherLabel     = "Outros"
	UnknownPayment = "Não identificado"
)

type Granularity string

const (
	GranularityDay  Granularity = "day"
	GranularityHour Granularity = "hour"
)

type Dimension string

const (
	DimensionLot           Dimension = "lot"
	DimensionCoupon        Dimension = "coupon"
	DimensionPaymentMethod Dimension = "payment_method"
)

// TimeWindow is a half-open [From, To) interval. A zero From means "since
// the beginning".
type TimeWindow struct {
	From time.Time
	To   time.Time
}

func (w TimeWindow) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	return t.Before(w.To)
}

type KPIs struct {
	Registrations     int64   `json:"registrations"`
	PendingPayments   int64   `json:"pending_payments"`
	ConfirmedPayments int64   `json:"confirmed_payments"`
	GrossCents        int64   `json:"gross_cents"`
	RefundedCents     int64   `json:"refunded_cents"`
	FeeCents          int64   `json:"fee_cents"`
	NetCents          int64   `json:"net_cents"`
	ConversionRate    float64 `json:"conversion_rate"`
}

type SeriesPoint struct {
	Bucket            time.Time `json:"bucket"`
	ConfirmedPayments int64     `json:"confirmed_payments"`
	GrossCents        int64     `json:"gross_cents"`
	NetCents          int64     `json:"net_cents"`
}

type BreakdownRow struct {
	Label             string `json:"label"`
	ConfirmedPayments int64  `json:"confirmed_payments"`
	GrossCents        int64  `json:"gross_cents"`
	NetCents          int64  `json:"net_cents"`
}

// RegistrationCounts groups registration counts by payment status.
type RegistrationCounts map[PaymentStatus]int64

func (c RegistrationCounts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}

// PaymentMethodMatch is the best-effort answer of the payment-method resolver.
type PaymentMethodMatch struct {
	Label    string `json:"label"`
	ChargeID string `json:"charge_id,omitempty"`
	Score    int    `json:"score"`
}
