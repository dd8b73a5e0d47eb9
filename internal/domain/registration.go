package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentStarted   PaymentStatus = "started"
	PaymentCompleted PaymentStatus = "completed"
)

// ParticipantTypeVCCUStudent must pick a course and a class when registering.
const ParticipantTypeVCCUStudent = "vccu_student"

type Registration struct {
	ID              uuid.UUID     `json:"id"`
	Email           string        `json:"email"`
	FullName        string        `json:"full_name"`
	CategoryID      uuid.UUID     `json:"category_id"`
	CouponCode      string        `json:"coupon_code,omitempty"`
	ParticipantType string        `json:"participant_type"`
	CourseID        string        `json:"course_id,omitempty"`
	ClassID         string        `json:"class_id,omitempty"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	StripeSessionID string        `json:"stripe_session_id,omitempty"`
	AmountCents     int64         `json:"amount_cents"`
	Currency        string        `json:"currency"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (r *Registration) IsCompleted() bool {
	return r.PaymentStatus == PaymentCompleted
}

// Start moves a pending registration to started once a checkout session exists.
func (r *Registration) Start(sessionID string) {
	if r.PaymentStatus == PaymentPending {
		r.PaymentStatus = PaymentStarted
		r.StripeSessionID = sessionID
	}
}

// RegistrationInput is what a visitor submits on the registration form.
type RegistrationInput struct {
	Email           string
	FullName        string
	CategoryID      uuid.UUID
	CouponCode      string
	ParticipantType string
	CourseID        string
	ClassID         string
	Currency        string
}

// RegistrationResult is returned by the orchestration step.
type RegistrationResult struct {
	Registration    Registration
	PaymentRequired bool
	CheckoutURL     string
	SessionID       string
}

// VerificationResult is returned by payment verification.
type VerificationResult struct {
	RegistrationID   uuid.UUID
	PaymentStatus    PaymentStatus
	SessionStatus    string
	AlreadyCompleted bool
}
