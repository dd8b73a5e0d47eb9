package request

import (
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/civeni/civeni-api/internal/domain"
)

var clockExp = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type VerifyCertificateRequest struct {
	Code string `json:"code"`
}

func (req *VerifyCertificateRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.Length(4, 64)),
	)
}

type IssueCertificateRequest struct {
	EventID    uuid.UUID `json:"event_id"`
	HolderName string    `json:"holder_name"`
	Code       string    `json:"code,omitempty"`
}

func (req *IssueCertificateRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&req.HolderName, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.Code, validation.Length(0, 64)),
	)
}

type ScheduleSessionRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
	Title     string `json:"title"`
	Speaker   string `json:"speaker,omitempty"`
	Origin    string `json:"origin,omitempty"`
	Location  string `json:"location,omitempty"`
}

func (req ScheduleSessionRequest) Validate() error {
	return validation.ValidateStruct(
		&req,
		validation.Field(&req.StartTime, validation.Required, validation.Match(clockExp)),
		validation.Field(&req.EndTime, validation.Match(clockExp)),
		validation.Field(&req.Title, validation.Required),
	)
}

type ScheduleDayRequest struct {
	Date     string                   `json:"date"`
	Sessions []ScheduleSessionRequest `json:"sessions"`
}

func (req ScheduleDayRequest) Validate() error {
	return validation.ValidateStruct(
		&req,
		validation.Field(&req.Date, validation.Required, validation.Date(time.DateOnly)),
		validation.Field(&req.Sessions, validation.Required),
	)
}

type ReplaceScheduleRequest struct {
	Days []ScheduleDayRequest `json:"days"`
}

func (req *ReplaceScheduleRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Days, validation.Required),
	)
}

func (req *ReplaceScheduleRequest) ToDomain() ([]domain.ScheduleDay, error) {
	days := make([]domain.ScheduleDay, 0, len(req.Days))
	for _, d := range req.Days {
		date, err := time.Parse(time.DateOnly, d.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", d.Date)
		}

		day := domain.ScheduleDay{Date: date}
		for _, s := range d.Sessions {
			day.Sessions = append(day.Sessions, domain.ScheduleSession{
				StartTime: s.StartTime,
				EndTime:   s.EndTime,
				Title:     s.Title,
				Speaker:   s.Speaker,
				Origin:    s.Origin,
				Location:  s.Location,
			})
		}
		days = append(days, day)
	}

	return days, nil
}
