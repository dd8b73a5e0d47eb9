package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/schedulepdf"
)

var (
	monthsPT   = [...]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}
	weekdaysPT = [...]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"}
)

type ScheduleRepository interface {
	ListSessions(ctx context.Context) ([]domain.ScheduleSession, error)
	ReplaceSessions(ctx context.Context, sessions []domain.ScheduleSession) error
}

type ScheduleService struct {
	repo  ScheduleRepository
	title string
}

func NewScheduleService(repo ScheduleRepository, title string) *ScheduleService {
	return &ScheduleService{
		repo:  repo,
		title: title,
	}
}

func (s *ScheduleService) Days(ctx context.Context) ([]domain.ScheduleDay, error) {
	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListSessions -> %w", err)
	}

	return GroupByDay(sessions), nil
}

// Replace swaps the whole agenda. Positions follow the given order per day.
func (s *ScheduleService) Replace(ctx context.Context, days []domain.ScheduleDay) error {
	var sessions []domain.ScheduleSession
	for _, d := range days {
		for i, session := range d.Sessions {
			session.Day = d.Date
			session.Position = i
			sessions = append(sessions, session)
		}
	}

	if err := s.repo.ReplaceSessions(ctx, sessions); err != nil {
		return fmt.Errorf("s.repo.ReplaceSessions -> %w", err)
	}

	return nil
}

func (s *ScheduleService) WritePDF(ctx context.Context, w io.Writer) error {
	days, err := s.Days(ctx)
	if err != nil {
		return err
	}

	return schedulepdf.Render(w, s.title, days)
}

// GroupByDay expects sessions ordered by day and keeps that order.
func GroupByDay(sessions []domain.ScheduleSession) []domain.ScheduleDay {
	var days []domain.ScheduleDay
	for _, session := range sessions {
		date := session.Day.UTC().Truncate(24 * time.Hour)
		if len(days) == 0 || !days[len(days)-1].Date.Equal(date) {
			days = append(days, domain.ScheduleDay{Date: date, Label: DayLabel(date)})
		}
		last := &days[len(days)-1]
		last.Sessions = append(last.Sessions, session)
	}

	return days
}

// DayLabel renders "10 de dezembro de 2025 (quarta-feira)".
func DayLabel(d time.Time) string {
	return fmt.Sprintf("%d de %s de %d (%s)", d.Day(), monthsPT[d.Month()-1], d.Year(), weekdaysPT[d.Weekday()])
}
