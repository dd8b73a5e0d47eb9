package domain

import (
	"time"

	"github.com/google/uuid"
)

type ScheduleSession struct {
	ID        uuid.UUID `json:"id" yaml:"-"`
	Day       time.Time `json:"day" yaml:"-"`
	StartTime string    `json:"start_time" yaml:"start"`
	EndTime   string    `json:"end_time" yaml:"end"`
	Title     string    `json:"title" yaml:"title"`
	Speaker   string    `json:"speaker" yaml:"speaker"`
	Origin    string    `json:"origin" yaml:"origin"`
	Location  string    `json:"location" yaml:"location"`
	Position  int       `json:"position" yaml:"-"`
}

// Time renders the session slot as "09:00 - 10:30".
func (s *ScheduleSession) Time() string {
	if s.EndTime == "" {
		return s.StartTime
	}
	return s.StartTime + " - " + s.EndTime
}

// SpeakerLine joins speaker and origin the way the printed agenda shows them.
func (s *ScheduleSession) SpeakerLine() string {
	switch {
	case s.Speaker == "":
		return s.Origin
	case s.Origin == "":
		return s.Speaker
	default:
		return s.Speaker + " (" + s.Origin + ")"
	}
}

type ScheduleDay struct {
	Date     time.Time         `json:"date"`
	Label    string            `json:"label"`
	Sessions []ScheduleSession `json:"sessions"`
}
