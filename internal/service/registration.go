package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civeni/civeni-api/internal/clock"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository"
)

var (
	ErrRegistrationNotFound = repository.ErrRegistrationNotFound
	ErrCourseRequired       = errors.New("course and class are required for this participant type")
	ErrCouponRequired       = errors.New("a coupon is required for this category")
	ErrSessionMismatch      = errors.New("checkout session does not belong to this registration")
)

type RegistrationRepository interface {
	Create(ctx context.Context, registration domain.Registration) (domain.Registration, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Registration, error)
	FindBySessionID(ctx context.Context, sessionID string) (domain.Registration, error)
	SaveSession(ctx context.Context, registration domain.Registration) error
	MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error)
	ListAll(ctx context.Context) ([]domain.Registration, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	EnqueueNotification(ctx context.Context, n domain.Notification) (bool, error)
}

type CheckoutGateway interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (domain.CheckoutSession, error)
}

type CouponValidator interface {
	ValidateCoupon(ctx context.Context, check domain.CouponCheck) (domain.CouponValidation, error)
}

type RegistrationService struct {
	repo     RegistrationRepository
	catalog  CatalogRepository
	coupons  CouponValidator
	checkout CheckoutGateway
	clock    clock.Clock
}

func NewRegistrationService(
	repo RegistrationRepository,
	catalog CatalogRepository,
	coupons CouponValidator,
	checkout CheckoutGateway,
	clk clock.Clock,
) *RegistrationService {
	return &RegistrationService{
		repo:     repo,
		catalog:  catalog,
		coupons:  coupons,
		checkout: checkout,
		clock:    clk,
	}
}

// Register validates the submission, prices it from the stored category and
// either completes it at once (nothing to pay) or opens a checkout session.
func (s *RegistrationService) Register(ctx context.Context, in domain.RegistrationInput) (domain.RegistrationResult, error) {
	category, err := s.catalog.FindCategory(ctx, in.CategoryID)
	if err != nil {
		return domain.RegistrationResult{}, fmt.Errorf("s.catalog.FindCategory -> %w", err)
	}
	if !category.AvailableAt(s.clock.Now()) {
		return domain.RegistrationResult{}, ErrCategoryUnavailable
	}
	if in.ParticipantType == domain.ParticipantTypeVCCUStudent && (in.CourseID == "" || in.ClassID == "") {
		return domain.RegistrationResult{}, ErrCourseRequired
	}

	free := category.IsFree || category.PriceCents == 0
	code := strings.TrimSpace(in.CouponCode)
	if free && code == "" {
		return domain.RegistrationResult{}, ErrCouponRequired
	}

	amount := category.PriceCents
	if free {
		amount = 0
	}
	if code != "" {
		validation, err := s.coupons.ValidateCoupon(ctx, domain.CouponCheck{
			Code:            code,
			CategoryID:      category.ID,
			ParticipantType: in.ParticipantType,
		})
		if err != nil {
			return domain.RegistrationResult{}, fmt.Errorf("s.coupons.ValidateCoupon -> %w", err)
		}
		code = validation.Coupon.Code
		amount = min(amount, validation.FinalCents)
	}

	currency := strings.ToLower(category.Currency)
	if currency == "" {
		currency = strings.ToLower(in.Currency)
	}

	registration := domain.Registration{
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		FullName:        strings.TrimSpace(in.FullName),
		CategoryID:      category.ID,
		CouponCode:      code,
		ParticipantType: in.ParticipantType,
		CourseID:        in.CourseID,
		ClassID:         in.ClassID,
		PaymentStatus:   domain.PaymentPending,
		AmountCents:     amount,
		Currency:        currency,
	}

	if amount == 0 {
		// The coupon use is taken before the row exists so two concurrent
		// registrations cannot both redeem the last one.
		if code != "" {
			if err = s.catalog.IncrementCouponUsage(ctx, code); err != nil {
				return domain.RegistrationResult{}, fmt.Errorf("s.catalog.IncrementCouponUsage -> %w", err)
			}
		}

		registration.PaymentStatus = domain.PaymentCompleted
		created, err := s.repo.Create(ctx, registration)
		if err != nil {
			s.releaseCoupon(ctx, code)
			return domain.RegistrationResult{}, fmt.Errorf("s.repo.Create -> %w", err)
		}
		s.afterCompletion(ctx, created, category.Title())

		return domain.RegistrationResult{Registration: created}, nil
	}

	if !s.checkout.Configured() {
		return domain.RegistrationResult{}, ErrPaymentNotConfigured
	}

	created, err := s.repo.Create(ctx, registration)
	if err != nil {
		return domain.RegistrationResult{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	session, err := s.checkout.CreateCheckoutSession(ctx, domain.CheckoutRequest{
		ProductName:   category.Title(),
		UnitAmount:    amount,
		Currency:      currency,
		CustomerEmail: created.Email,
		Metadata: map[string]string{
			"registration_id":  created.ID.String(),
			"category_id":      category.ID.String(),
			"category_name":    category.Title(),
			"email":            created.Email,
			"participant_name": created.FullName,
			"participant_type": created.ParticipantType,
			"coupon_code":      created.CouponCode,
		},
	})
	if err != nil {
		zap.L().Error("checkout session creation failed",
			zap.String("registration_id", created.ID.String()), zap.Error(err))
		return domain.RegistrationResult{}, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	created.Start(session.ID)
	if err = s.repo.SaveSession(ctx, created); err != nil {
		return domain.RegistrationResult{}, fmt.Errorf("s.repo.SaveSession -> %w", err)
	}

	return domain.RegistrationResult{
		Registration:    created,
		PaymentRequired: true,
		CheckoutURL:     session.URL,
		SessionID:       session.ID,
	}, nil
}

// VerifyPayment asks Stripe for the session state and completes the
// registration once it is paid. Repeated calls are harmless.
func (s *RegistrationService) VerifyPayment(ctx context.Context, sessionID string, registrationID *uuid.UUID) (domain.VerificationResult, error) {
	if !s.checkout.Configured() {
		return domain.VerificationResult{}, ErrPaymentNotConfigured
	}

	session, err := s.checkout.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return domain.VerificationResult{}, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	if registrationID != nil && session.Metadata["registration_id"] != registrationID.String() {
		return domain.VerificationResult{}, ErrSessionMismatch
	}

	registration, err := s.findForSession(ctx, session)
	if err != nil {
		return domain.VerificationResult{}, err
	}

	result := domain.VerificationResult{
		RegistrationID:   registration.ID,
		PaymentStatus:    registration.PaymentStatus,
		SessionStatus:    session.PaymentStatus,
		AlreadyCompleted: registration.IsCompleted(),
	}
	if !session.IsPaid() || registration.IsCompleted() {
		return result, nil
	}

	changed, err := s.repo.MarkCompleted(ctx, registration.ID)
	if err != nil {
		return domain.VerificationResult{}, fmt.Errorf("s.repo.MarkCompleted -> %w", err)
	}

	result.PaymentStatus = domain.PaymentCompleted
	if !changed {
		// Another verification call won the transition.
		result.AlreadyCompleted = true
		return result, nil
	}

	if registration.CouponCode != "" {
		// The payment is already captured, so an exhausted coupon does not
		// undo the completion.
		if err = s.catalog.IncrementCouponUsage(ctx, registration.CouponCode); err != nil {
			zap.L().Warn("coupon use not recorded",
				zap.String("registration_id", registration.ID.String()),
				zap.String("coupon_code", registration.CouponCode), zap.Error(err))
		}
	}
	s.afterCompletion(ctx, registration, session.Metadata["category_name"])

	return result, nil
}

func (s *RegistrationService) releaseCoupon(ctx context.Context, code string) {
	if code == "" {
		return
	}
	if err := s.catalog.ReleaseCouponUsage(ctx, code); err != nil {
		zap.L().Warn("failed to release coupon use", zap.String("coupon_code", code), zap.Error(err))
	}
}

func (s *RegistrationService) findForSession(ctx context.Context, session domain.CheckoutSession) (domain.Registration, error) {
	registration, err := s.repo.FindBySessionID(ctx, session.ID)
	if err == nil {
		return registration, nil
	}
	if !errors.Is(err, repository.ErrRegistrationNotFound) {
		return domain.Registration{}, fmt.Errorf("s.repo.FindBySessionID -> %w", err)
	}

	id, parseErr := uuid.Parse(session.Metadata["registration_id"])
	if parseErr != nil {
		return domain.Registration{}, ErrRegistrationNotFound
	}

	registration, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return registration, nil
}

// afterCompletion queues the confirmation of a completed registration.
// Failures are logged, not returned: the registration itself is already
// committed.
func (s *RegistrationService) afterCompletion(ctx context.Context, r domain.Registration, categoryName string) {
	log := zap.L().With(zap.String("registration_id", r.ID.String()))

	inserted, err := s.repo.EnqueueNotification(ctx, domain.Notification{
		RegistrationID: r.ID,
		Kind:           domain.NotificationRegistrationConfirmed,
		Channel:        domain.ChannelEmail,
		Recipient:      r.Email,
		Status:         domain.NotificationQueued,
		Payload: map[string]string{
			"full_name":     r.FullName,
			"category_name": categoryName,
			"amount_cents":  strconv.FormatInt(r.AmountCents, 10),
			"currency":      r.Currency,
		},
	})
	if err != nil {
		log.Warn("failed to enqueue confirmation", zap.Error(err))
		return
	}
	if inserted {
		log.Info("registration confirmed")
	}
}

// Deduplicate keeps one registration per (email, category): the completed
// one if any, otherwise the newest. It returns how many rows were removed.
func (s *RegistrationService) Deduplicate(ctx context.Context) (int64, error) {
	registrations, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("s.repo.ListAll -> %w", err)
	}

	ids := duplicateIDs(registrations)
	if len(ids) == 0 {
		return 0, nil
	}

	deleted, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("s.repo.DeleteByIDs -> %w", err)
	}

	zap.L().Info("duplicate registrations removed", zap.Int64("deleted", deleted))

	return deleted, nil
}

func duplicateIDs(registrations []domain.Registration) []uuid.UUID {
	groups := make(map[string][]domain.Registration)
	var keys []string
	for _, r := range registrations {
		key := strings.ToLower(strings.TrimSpace(r.Email)) + "|" + r.CategoryID.String()
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], r)
	}

	var ids []uuid.UUID
	for _, key := range keys {
		group := groups[key]
		if len(group) < 2 {
			continue
		}

		sort.SliceStable(group, func(i, j int) bool {
			if group[i].IsCompleted() != group[j].IsCompleted() {
				return group[i].IsCompleted()
			}
			return group[i].CreatedAt.After(group[j].CreatedAt)
		})
		for _, r := range group[1:] {
			ids = append(ids, r.ID)
		}
	}

	return ids
}
