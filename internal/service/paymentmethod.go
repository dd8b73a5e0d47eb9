package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/civeni/civeni-api/internal/cache"
	"github.com/civeni/civeni-api/internal/domain"
)

const (
	amountTolerance = 5
	minQualifying   = 3
)

type ChargeSource interface {
	Configured() bool
	ListRecentCharges(ctx context.Context, limit int) ([]domain.Charge, error)
}

// PaymentMethodResolver guesses how a participant paid by matching their name
// and the expected amount against recent charges. It is a heuristic: charges
// carry no reference back to registrations made before metadata existed.
type PaymentMethodResolver struct {
	source ChargeSource
	mirror FinanceRepository
	store  cache.Store
	ttl    time.Duration
	limit  int
}

func NewPaymentMethodResolver(source ChargeSource, mirror FinanceRepository, store cache.Store, ttl time.Duration, limit int) *PaymentMethodResolver {
	return &PaymentMethodResolver{
		source: source,
		mirror: mirror,
		store:  store,
		ttl:    ttl,
		limit:  limit,
	}
}

func (r *PaymentMethodResolver) Resolve(ctx context.Context, name string, amountCents int64) (domain.PaymentMethodMatch, error) {
	normalized := NormalizeName(name)
	key := "payment-method:" + normalized + ":" + strconv.FormatInt(amountCents, 10)

	if cached, ok := r.store.Get(key); ok {
		if match, ok := cached.(domain.PaymentMethodMatch); ok {
			return match, nil
		}
	}

	charges, err := r.recentCharges(ctx)
	if err != nil {
		return domain.PaymentMethodMatch{}, err
	}

	match := bestMatch(normalized, amountCents, charges)
	r.store.Set(key, match, r.ttl)

	return match, nil
}

// recentCharges prefers live Stripe data and falls back to the local mirror.
func (r *PaymentMethodResolver) recentCharges(ctx context.Context) ([]domain.Charge, error) {
	if r.source != nil && r.source.Configured() {
		charges, err := r.source.ListRecentCharges(ctx, r.limit)
		if err == nil {
			return charges, nil
		}
		zap.L().Warn("stripe charge listing failed, using mirror", zap.Error(err))
	}

	charges, err := r.mirror.RecentCharges(ctx, r.limit)
	if err != nil {
		return nil, fmt.Errorf("r.mirror.RecentCharges -> %w", err)
	}

	return charges, nil
}

func bestMatch(name string, amountCents int64, charges []domain.Charge) domain.PaymentMethodMatch {
	best := domain.PaymentMethodMatch{Label: domain.UnknownPayment}
	var bestCharge *domain.Charge

	for i := range charges {
		c := &charges[i]
		if !c.Counts() {
			continue
		}

		score := scoreCharge(name, amountCents, c)
		if score < minQualifying {
			continue
		}
		if bestCharge == nil || score > best.Score || (score == best.Score && c.Created.After(bestCharge.Created)) {
			bestCharge = c
			best.Score = score
		}
	}

	if bestCharge != nil {
		best.ChargeID = bestCharge.ID
		best.Label = paymentLabel(bestCharge)
	}

	return best
}

func scoreCharge(name string, amountCents int64, c *domain.Charge) int {
	score := nameScore(name, NormalizeName(c.BillingName))

	if amountCents > 0 {
		diff := c.Amount - amountCents
		if diff < 0 {
			diff = -diff
		}
		if diff <= amountTolerance {
			score += 2
		}
	}

	return score
}

func nameScore(participant, billing string) int {
	if participant == "" || billing == "" {
		return 0
	}
	if participant == billing {
		return 3
	}

	billingTokens := make(map[string]struct{})
	for _, t := range strings.Fields(billing) {
		billingTokens[t] = struct{}{}
	}

	tokens := strings.Fields(participant)
	all := true
	for _, t := range tokens {
		if _, ok := billingTokens[t]; !ok {
			all = false
			break
		}
	}
	if all {
		return 2
	}

	_, first := billingTokens[tokens[0]]
	_, last := billingTokens[tokens[len(tokens)-1]]
	if len(tokens) > 1 && first && last {
		return 1
	}

	return 0
}

func paymentLabel(c *domain.Charge) string {
	if c.PaymentMethodType == "card" && c.CardBrand != "" {
		return "Cartão de Crédito (" + strings.ToUpper(c.CardBrand) + ")"
	}
	if c.PaymentMethodType == "" {
		return domain.UnknownPayment
	}
	return methodLabel(c.PaymentMethodType)
}

// NormalizeName lower-cases, strips diacritics and collapses whitespace.
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
