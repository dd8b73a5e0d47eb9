package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/civeni/civeni-api/internal/domain"
)

type LoginResponse struct {
	Token string           `json:"token"`
	User  domain.AdminUser `json:"user"`
}

type RegistrationResponse struct {
	Success         bool      `json:"success"`
	PaymentRequired bool      `json:"payment_required"`
	RegistrationID  uuid.UUID `json:"registration_id"`
	URL             string    `json:"url,omitempty"`
	SessionID       string    `json:"session_id,omitempty"`
}

type CouponResponse struct {
	Valid           bool                `json:"valid"`
	Code            string              `json:"code"`
	DiscountType    domain.DiscountType `json:"discount_type"`
	DiscountValue   int64               `json:"discount_value"`
	OriginalCents   int64               `json:"original_cents"`
	FinalCents      int64               `json:"final_cents"`
	DiscountedCents int64               `json:"discounted_cents"`
}

type VerificationResponse struct {
	Success          bool                 `json:"success"`
	PaymentStatus    domain.PaymentStatus `json:"payment_status"`
	RegistrationID   uuid.UUID            `json:"registration_id"`
	AlreadyCompleted bool                 `json:"already_completed"`
}

type WebhookResponse struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate,omitempty"`
}

type CertificateResponse struct {
	Valid      bool      `json:"valid"`
	Code       string    `json:"code"`
	HolderName string    `json:"holder_name"`
	Event      string    `json:"event"`
	IssuedAt   time.Time `json:"issued_at"`
}

type InvalidCertificateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error"`
}

type MediaResponse struct {
	domain.MediaAsset
	VersionedURL string `json:"versioned_url"`
}

type DedupResponse struct {
	Success bool  `json:"success"`
	Deleted int64 `json:"deleted"`
}

type FinanceWindow struct {
	From *time.Time `json:"from,omitempty"`
	To   time.Time  `json:"to"`
}

type KPIResponse struct {
	Window FinanceWindow `json:"window"`
	domain.KPIs
}

type SeriesResponse struct {
	Window      FinanceWindow        `json:"window"`
	Granularity domain.Granularity   `json:"granularity"`
	Points      []domain.SeriesPoint `json:"points"`
}

type BreakdownResponse struct {
	Window    FinanceWindow         `json:"window"`
	Dimension domain.Dimension      `json:"dimension"`
	Rows      []domain.BreakdownRow `json:"rows"`
}

func NewFinanceWindow(w domain.TimeWindow) FinanceWindow {
	out := FinanceWindow{To: w.To}
	if !w.From.IsZero() {
		from := w.From
		out.From = &from
	}
	return out
}
