package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/civeni/civeni-api/internal/domain"
)

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) FindCategory(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCatalogRepository) SaveCategorySync(ctx context.Context, c domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCatalogRepository) FindCoupon(ctx context.Context, code string) (domain.Coupon, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Coupon), args.Error(1)
}

func (m *MockCatalogRepository) IncrementCouponUsage(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCatalogRepository) ReleaseCouponUsage(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

type MockProductGateway struct {
	mock.Mock
}

func (m *MockProductGateway) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockProductGateway) SyncProduct(ctx context.Context, c domain.Category) (domain.ProductSync, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.ProductSync), args.Error(1)
}

type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(ctx context.Context, r domain.Registration) (domain.Registration, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Registration, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindBySessionID(ctx context.Context, sessionID string) (domain.Registration, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) SaveSession(ctx context.Context, r domain.Registration) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRegistrationRepository) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistrationRepository) ListAll(ctx context.Context) ([]domain.Registration, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegistrationRepository) EnqueueNotification(ctx context.Context, n domain.Notification) (bool, error) {
	args := m.Called(ctx, n)
	return args.Bool(0), args.Error(1)
}

type MockCheckoutGateway struct {
	mock.Mock
}

func (m *MockCheckoutGateway) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockCheckoutGateway) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.CheckoutSession), args.Error(1)
}

func (m *MockCheckoutGateway) GetCheckoutSession(ctx context.Context, id string) (domain.CheckoutSession, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.CheckoutSession), args.Error(1)
}

type MockStripeMirrorRepository struct {
	mock.Mock
}

func (m *MockStripeMirrorRepository) ClaimEvent(ctx context.Context, event domain.StripeEvent, at time.Time) (domain.EventRecord, bool, error) {
	args := m.Called(ctx, event, at)
	return args.Get(0).(domain.EventRecord), args.Bool(1), args.Error(2)
}

func (m *MockStripeMirrorRepository) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockStripeMirrorRepository) MarkFailed(ctx context.Context, id string, cause string, at time.Time) error {
	return m.Called(ctx, id, cause, at).Error(0)
}

func (m *MockStripeMirrorRepository) SaveCharge(ctx context.Context, c domain.Charge) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockStripeMirrorRepository) SavePaymentIntent(ctx context.Context, pi domain.PaymentIntent) error {
	return m.Called(ctx, pi).Error(0)
}

func (m *MockStripeMirrorRepository) SaveRefund(ctx context.Context, r domain.Refund) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockStripeMirrorRepository) SavePayout(ctx context.Context, p domain.Payout) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockStripeMirrorRepository) SaveDispute(ctx context.Context, d domain.Dispute) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockStripeMirrorRepository) SaveCustomer(ctx context.Context, c domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockStripeMirrorRepository) SaveCheckoutSession(ctx context.Context, s domain.CheckoutSession) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStripeMirrorRepository) RefreshFinanceDaily(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockFeeLookup struct {
	mock.Mock
}

func (m *MockFeeLookup) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockFeeLookup) ChargeFee(ctx context.Context, balanceTxID string) (int64, error) {
	args := m.Called(ctx, balanceTxID)
	return args.Get(0).(int64), args.Error(1)
}

type MockFinanceRepository struct {
	mock.Mock
}

func (m *MockFinanceRepository) SucceededCharges(ctx context.Context, w domain.TimeWindow) ([]domain.Charge, error) {
	args := m.Called(ctx, w)
	return args.Get(0).([]domain.Charge), args.Error(1)
}

func (m *MockFinanceRepository) RecentCharges(ctx context.Context, limit int) ([]domain.Charge, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Charge), args.Error(1)
}

func (m *MockFinanceRepository) RegistrationCounts(ctx context.Context, w domain.TimeWindow) (domain.RegistrationCounts, error) {
	args := m.Called(ctx, w)
	return args.Get(0).(domain.RegistrationCounts), args.Error(1)
}

func (m *MockFinanceRepository) DailySeries(ctx context.Context, w domain.TimeWindow) ([]domain.SeriesPoint, error) {
	args := m.Called(ctx, w)
	return args.Get(0).([]domain.SeriesPoint), args.Error(1)
}

type MockChargeSource struct {
	mock.Mock
}

func (m *MockChargeSource) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockChargeSource) ListRecentCharges(ctx context.Context, limit int) ([]domain.Charge, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Charge), args.Error(1)
}

type MockCertificateRepository struct {
	mock.Mock
}

func (m *MockCertificateRepository) FindEvent(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockCertificateRepository) FindByCode(ctx context.Context, code string) (domain.Certificate, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Certificate), args.Error(1)
}

func (m *MockCertificateRepository) Create(ctx context.Context, c domain.Certificate) (domain.Certificate, error) {
	args := m.Called(ctx, c)
	if fn, ok := args.Get(0).(func(context.Context, domain.Certificate) domain.Certificate); ok {
		return fn(ctx, c), args.Error(1)
	}
	return args.Get(0).(domain.Certificate), args.Error(1)
}

func (m *MockCertificateRepository) Revoke(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

type MockMediaRepository struct {
	mock.Mock
}

func (m *MockMediaRepository) Save(ctx context.Context, a domain.MediaAsset) (domain.MediaAsset, error) {
	args := m.Called(ctx, a)
	if fn, ok := args.Get(0).(func(context.Context, domain.MediaAsset) domain.MediaAsset); ok {
		return fn(ctx, a), args.Error(1)
	}
	return args.Get(0).(domain.MediaAsset), args.Error(1)
}

func (m *MockMediaRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.MediaAsset, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.MediaAsset), args.Error(1)
}

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) ListSessions(ctx context.Context) ([]domain.ScheduleSession, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ScheduleSession), args.Error(1)
}

func (m *MockScheduleRepository) ReplaceSessions(ctx context.Context, sessions []domain.ScheduleSession) error {
	return m.Called(ctx, sessions).Error(0)
}

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, u domain.AdminUser) (domain.AdminUser, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.AdminUser), args.Error(1)
}

func (m *MockAdminRepository) FindByID(ctx context.Context, id uint) (domain.AdminUser, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.AdminUser), args.Error(1)
}

func (m *MockAdminRepository) FindByEmail(ctx context.Context, email string) (domain.AdminUser, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.AdminUser), args.Error(1)
}

// recordingPublisher keeps every published change.
type recordingPublisher struct {
	mu      sync.Mutex
	changes []domain.ChangeEvent
}

func (p *recordingPublisher) Publish(change domain.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
}
