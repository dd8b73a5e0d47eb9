package v1

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/civeni/civeni-api/internal/api/handler/v1/response"
	"github.com/civeni/civeni-api/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serve runs a single request through a router with one route.
func serve(method, route, target string, body io.Reader, handler gin.HandlerFunc, headers ...string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Handle(method, route, handler)

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) response.Err {
	t.Helper()

	var body response.Err
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Register(ctx context.Context, in domain.RegistrationInput) (domain.RegistrationResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.RegistrationResult), args.Error(1)
}

func (m *MockRegistrationService) VerifyPayment(ctx context.Context, sessionID string, registrationID *uuid.UUID) (domain.VerificationResult, error) {
	args := m.Called(ctx, sessionID, registrationID)
	return args.Get(0).(domain.VerificationResult), args.Error(1)
}

func (m *MockRegistrationService) Deduplicate(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) AvailableCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCatalogService) ValidateCoupon(ctx context.Context, check domain.CouponCheck) (domain.CouponValidation, error) {
	args := m.Called(ctx, check)
	return args.Get(0).(domain.CouponValidation), args.Error(1)
}

func (m *MockCatalogService) SyncCategory(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Category), args.Error(1)
}

type MockSignatureVerifier struct {
	mock.Mock
}

func (m *MockSignatureVerifier) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockSignatureVerifier) Verify(payload []byte, signature string) (domain.StripeEvent, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(domain.StripeEvent), args.Error(1)
}

type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) Ingest(ctx context.Context, event domain.StripeEvent) (domain.IngestResult, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(domain.IngestResult), args.Error(1)
}

type MockFinanceService struct {
	mock.Mock
}

func (m *MockFinanceService) Window(rangeName, from, to string) (domain.TimeWindow, error) {
	args := m.Called(rangeName, from, to)
	return args.Get(0).(domain.TimeWindow), args.Error(1)
}

func (m *MockFinanceService) KPIs(ctx context.Context, w domain.TimeWindow) (domain.KPIs, error) {
	args := m.Called(ctx, w)
	return args.Get(0).(domain.KPIs), args.Error(1)
}

func (m *MockFinanceService) Series(ctx context.Context, w domain.TimeWindow, g domain.Granularity) ([]domain.SeriesPoint, error) {
	args := m.Called(ctx, w, g)
	return args.Get(0).([]domain.SeriesPoint), args.Error(1)
}

func (m *MockFinanceService) Breakdown(ctx context.Context, w domain.TimeWindow, d domain.Dimension) ([]domain.BreakdownRow, error) {
	args := m.Called(ctx, w, d)
	return args.Get(0).([]domain.BreakdownRow), args.Error(1)
}

type MockPaymentMethodResolver struct {
	mock.Mock
}

func (m *MockPaymentMethodResolver) Resolve(ctx context.Context, name string, amountCents int64) (domain.PaymentMethodMatch, error) {
	args := m.Called(ctx, name, amountCents)
	return args.Get(0).(domain.PaymentMethodMatch), args.Error(1)
}

type MockCertificateService struct {
	mock.Mock
}

func (m *MockCertificateService) Verify(ctx context.Context, code string) (domain.Certificate, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Certificate), args.Error(1)
}

func (m *MockCertificateService) Issue(ctx context.Context, c domain.Certificate) (domain.Certificate, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.Certificate), args.Error(1)
}

func (m *MockCertificateService) Revoke(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) Days(ctx context.Context) ([]domain.ScheduleDay, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ScheduleDay), args.Error(1)
}

func (m *MockScheduleService) Replace(ctx context.Context, days []domain.ScheduleDay) error {
	return m.Called(ctx, days).Error(0)
}

func (m *MockScheduleService) WritePDF(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx, w)
	if err := args.Error(0); err != nil {
		return err
	}
	_, err := io.WriteString(w, "%PDF-1.3 test")
	return err
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) Upload(ctx context.Context, objectPath, filename string, data []byte) (domain.MediaAsset, error) {
	args := m.Called(ctx, objectPath, filename, data)
	return args.Get(0).(domain.MediaAsset), args.Error(1)
}

func (m *MockMediaService) Get(ctx context.Context, id uuid.UUID) (domain.MediaAsset, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.MediaAsset), args.Error(1)
}

type MockObjectReader struct {
	mock.Mock
}

func (m *MockObjectReader) Get(p string) ([]byte, error) {
	args := m.Called(p)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Signup(ctx context.Context, user domain.AdminUser) (domain.AdminUser, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.AdminUser), args.Error(1)
}

func (m *MockAdminService) Login(ctx context.Context, email, password string) (domain.AdminUser, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(domain.AdminUser), args.Error(1)
}

func (m *MockAdminService) GetAdmin(ctx context.Context, id uint) (domain.AdminUser, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.AdminUser), args.Error(1)
}
