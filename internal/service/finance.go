package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/civeni/civeni-api/internal/clock"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository"
)

var (
	ErrInvalidRange       = errors.New("invalid time range")
	ErrInvalidGranularity = errors.New("granularity must be day or hour")
	ErrInvalidDimension   = errors.New("dimension must be lot, coupon or payment_method")
)

var (
	lotKeys    = []string{"lot", "lote", "batch", "category_name", "category"}
	couponKeys = []string{"coupon_code", "coupon"}
)

type FinanceRepository interface {
	SucceededCharges(ctx context.Context, w domain.TimeWindow) ([]domain.Charge, error)
	RecentCharges(ctx context.Context, limit int) ([]domain.Charge, error)
	RegistrationCounts(ctx context.Context, w domain.TimeWindow) (domain.RegistrationCounts, error)
	DailySeries(ctx context.Context, w domain.TimeWindow) ([]domain.SeriesPoint, error)
}

type FinanceService struct {
	repo    FinanceRepository
	clock   clock.Clock
	useView bool
}

func NewFinanceService(repo FinanceRepository, clk clock.Clock, useView bool) *FinanceService {
	return &FinanceService{
		repo:    repo,
		clock:   clk,
		useView: useView,
	}
}

// Window resolves the range selector. Explicit from/to win over the named
// range; a bare date as "to" includes that whole day.
func (s *FinanceService) Window(rangeName, from, to string) (domain.TimeWindow, error) {
	now := s.clock.Now()

	if from != "" || to != "" {
		w := domain.TimeWindow{To: now}
		if from != "" {
			t, _, err := parseBound(from)
			if err != nil {
				return domain.TimeWindow{}, err
			}
			w.From = t
		}
		if to != "" {
			t, dateOnly, err := parseBound(to)
			if err != nil {
				return domain.TimeWindow{}, err
			}
			if dateOnly {
				t = t.AddDate(0, 0, 1)
			}
			w.To = t
		}
		if !w.From.IsZero() && w.From.After(w.To) {
			return domain.TimeWindow{}, fmt.Errorf("%w: from is after to", ErrInvalidRange)
		}
		return w, nil
	}

	switch rangeName {
	case "7d":
		return domain.TimeWindow{From: now.AddDate(0, 0, -7), To: now}, nil
	case "", "30d":
		return domain.TimeWindow{From: now.AddDate(0, 0, -30), To: now}, nil
	case "90d":
		return domain.TimeWindow{From: now.AddDate(0, 0, -90), To: now}, nil
	case "all":
		return domain.TimeWindow{To: now.Add(time.Second)}, nil
	default:
		return domain.TimeWindow{}, fmt.Errorf("%w: unknown range %q", ErrInvalidRange, rangeName)
	}
}

func parseBound(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), true, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: cannot parse %q", ErrInvalidRange, s)
}

func (s *FinanceService) KPIs(ctx context.Context, w domain.TimeWindow) (domain.KPIs, error) {
	charges, err := s.repo.SucceededCharges(ctx, w)
	if err != nil {
		return domain.KPIs{}, fmt.Errorf("s.repo.SucceededCharges -> %w", err)
	}

	counts, err := s.repo.RegistrationCounts(ctx, w)
	if err != nil {
		return domain.KPIs{}, fmt.Errorf("s.repo.RegistrationCounts -> %w", err)
	}

	var k domain.KPIs
	for i := range charges {
		c := &charges[i]
		if !c.Counts() {
			continue
		}
		k.ConfirmedPayments++
		k.GrossCents += c.Amount
		k.RefundedCents += c.AmountRefunded
		k.FeeCents += c.Fee
		k.NetCents += c.Net()
	}

	k.Registrations = counts.Total()
	k.PendingPayments = counts[domain.PaymentPending] + counts[domain.PaymentStarted]
	if denominator := k.ConfirmedPayments + k.PendingPayments; denominator > 0 {
		k.ConversionRate = float64(k.ConfirmedPayments) / float64(denominator)
	}

	return k, nil
}

func (s *FinanceService) Series(ctx context.Context, w domain.TimeWindow, g domain.Granularity) ([]domain.SeriesPoint, error) {
	switch g {
	case "", domain.GranularityDay:
		g = domain.GranularityDay
	case domain.GranularityHour:
	default:
		return nil, ErrInvalidGranularity
	}

	if g == domain.GranularityDay && s.useView {
		points, ok, err := s.viewSeries(ctx, w)
		if err != nil {
			return nil, err
		}
		if ok {
			return points, nil
		}
	}

	charges, err := s.repo.SucceededCharges(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("s.repo.SucceededCharges -> %w", err)
	}

	return bucketCharges(charges, g), nil
}

// viewSeries reads the whole days of w from the aggregate view and buckets
// the partial days at its edges from the charges, so the totals match the
// charge-based series. ok is false when the view cannot serve w.
func (s *FinanceService) viewSeries(ctx context.Context, w domain.TimeWindow) ([]domain.SeriesPoint, bool, error) {
	whole := domain.TimeWindow{To: truncate(w.To, domain.GranularityDay)}
	if !w.From.IsZero() {
		whole.From = truncate(w.From, domain.GranularityDay)
		if whole.From.Before(w.From) {
			whole.From = whole.From.AddDate(0, 0, 1)
		}
		if !whole.From.Before(whole.To) {
			return nil, false, nil
		}
	}

	points, err := s.repo.DailySeries(ctx, whole)
	if err != nil {
		if errors.Is(err, repository.ErrAggregateUnavailable) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("s.repo.DailySeries -> %w", err)
	}

	edges := []domain.TimeWindow{
		{From: w.From, To: whole.From},
		{From: whole.To, To: w.To},
	}
	for _, edge := range edges {
		if !edge.From.Before(edge.To) {
			continue
		}
		charges, err := s.repo.SucceededCharges(ctx, edge)
		if err != nil {
			return nil, false, fmt.Errorf("s.repo.SucceededCharges -> %w", err)
		}
		points = append(points, bucketCharges(charges, domain.GranularityDay)...)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Bucket.Before(points[j].Bucket)
	})

	return points, true, nil
}

func truncate(t time.Time, g domain.Granularity) time.Time {
	t = t.UTC()
	if g == domain.GranularityHour {
		return t.Truncate(time.Hour)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func bucketCharges(charges []domain.Charge, g domain.Granularity) []domain.SeriesPoint {
	buckets := make(map[time.Time]*domain.SeriesPoint)
	for i := range charges {
		c := &charges[i]
		if !c.Counts() {
			continue
		}

		key := truncate(c.Created, g)
		p, ok := buckets[key]
		if !ok {
			p = &domain.SeriesPoint{Bucket: key}
			buckets[key] = p
		}
		p.ConfirmedPayments++
		p.GrossCents += c.Amount
		p.NetCents += c.Net()
	}

	points := make([]domain.SeriesPoint, 0, len(buckets))
	for _, p := range buckets {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Bucket.Before(points[j].Bucket)
	})

	return points
}

func (s *FinanceService) Breakdown(ctx context.Context, w domain.TimeWindow, d domain.Dimension) ([]domain.BreakdownRow, error) {
	var label func(c *domain.Charge) string
	switch d {
	case "", domain.DimensionLot:
		label = func(c *domain.Charge) string { return metadataLabel(c.Metadata, lotKeys, domain.NoLotLabel) }
	case domain.DimensionCoupon:
		label = func(c *domain.Charge) string { return metadataLabel(c.Metadata, couponKeys, domain.NoCouponLabel) }
	case domain.DimensionPaymentMethod:
		label = func(c *domain.Charge) string { return methodLabel(c.PaymentMethodType) }
	default:
		return nil, ErrInvalidDimension
	}

	charges, err := s.repo.SucceededCharges(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("s.repo.SucceededCharges -> %w", err)
	}

	return groupCharges(charges, label), nil
}

// groupCharges puts every counted charge in exactly one row, so the row nets
// always add up to the total net.
func groupCharges(charges []domain.Charge, label func(c *domain.Charge) string) []domain.BreakdownRow {
	groups := make(map[string]*domain.BreakdownRow)
	for i := range charges {
		c := &charges[i]
		if !c.Counts() {
			continue
		}

		key := label(c)
		row, ok := groups[key]
		if !ok {
			row = &domain.BreakdownRow{Label: key}
			groups[key] = row
		}
		row.ConfirmedPayments++
		row.GrossCents += c.Amount
		row.NetCents += c.Net()
	}

	rows := make([]domain.BreakdownRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].NetCents != rows[j].NetCents {
			return rows[i].NetCents > rows[j].NetCents
		}
		return rows[i].Label < rows[j].Label
	})

	return rows
}

func metadataLabel(metadata map[string]string, keys []string, fallback string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(metadata[k]); v != "" {
			return v
		}
	}
	return fallback
}

func methodLabel(methodType string) string {
	switch methodType {
	case "card":
		return "Cartão de Crédito"
	case "pix":
		return "PIX"
	case "boleto":
		return "Boleto"
	case "":
		return domain.OtherLabel
	default:
		return methodType
	}
}
