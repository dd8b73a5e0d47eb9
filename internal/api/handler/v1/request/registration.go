package request

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/civeni/civeni-api/internal/domain"
)

type RegistrationRequest struct {
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	CategoryID      uuid.UUID `json:"category_id"`
	CouponCode      string    `json:"coupon_code,omitempty"`
	ParticipantType string    `json:"participant_type"`
	CourseID        string    `json:"course_id,omitempty"`
	ClassID         string    `json:"class_id,omitempty"`
	Currency        string    `json:"currency,omitempty"`
}

func (req *RegistrationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.FullName, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.CategoryID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&req.ParticipantType, validation.Required, validation.Length(1, 60)),
		validation.Field(&req.CouponCode, validation.Length(0, 60)),
		validation.Field(&req.Currency, validation.Length(0, 3)),
	)
}

func (req *RegistrationRequest) ToDomain() domain.RegistrationInput {
	return domain.RegistrationInput{
		Email:           req.Email,
		FullName:        req.FullName,
		CategoryID:      req.CategoryID,
		CouponCode:      req.CouponCode,
		ParticipantType: strings.TrimSpace(req.ParticipantType),
		CourseID:        strings.TrimSpace(req.CourseID),
		ClassID:         strings.TrimSpace(req.ClassID),
		Currency:        req.Currency,
	}
}

type CouponValidationRequest struct {
	Code            string    `json:"code"`
	CategoryID      uuid.UUID `json:"category_id"`
	ParticipantType string    `json:"participant_type"`
}

func (req *CouponValidationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.Length(1, 60)),
		validation.Field(&req.CategoryID, validation.Required, validation.By(notNilUUID)),
	)
}

type VerifyPaymentRequest struct {
	SessionID      string     `json:"session_id"`
	RegistrationID *uuid.UUID `json:"registration_id,omitempty"`
}

func (req *VerifyPaymentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.SessionID, validation.Required, validation.Length(3, 255)),
	)
}

func notNilUUID(value interface{}) error {
	if id, ok := value.(uuid.UUID); ok && id == uuid.Nil {
		return validation.NewError("validation_nil_uuid", "must be a valid id")
	}
	return nil
}
