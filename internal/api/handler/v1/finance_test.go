package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/civeni/civeni-api/internal/api/handler/v1/response"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/service"
)

var testWindow = domain.TimeWindow{
	From: time.Date(2025, 11, 13, 15, 0, 0, 0, time.UTC),
	To:   time.Date(2025, 11, 20, 15, 0, 0, 0, time.UTC),
}

func TestFinanceHandler_HandleKPIs(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := new(MockFinanceService)
		h := NewFinanceHandler(svc, new(MockPaymentMethodResolver))
		svc.On("Window", "7d", "", "").Return(testWindow, nil).Once()
		svc.On("KPIs", mock.Anything, testWindow).Return(domain.KPIs{
			Registrations:     4,
			ConfirmedPayments: 2,
			GrossCents:        22000,
			NetCents:          14000,
			ConversionRate:    0.5,
		}, nil).Once()

		w := serve(http.MethodGet, "/kpis", "/kpis?range=7d", nil, h.HandleKPIs)

		require.Equal(t, http.StatusOK, w.Code)
		var body response.KPIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, int64(22000), body.GrossCents)
		assert.Equal(t, 0.5, body.ConversionRate)
		require.NotNil(t, body.Window.From)
		assert.True(t, testWindow.From.Equal(*body.Window.From))
		svc.AssertExpectations(t)
	})

	t.Run("all time has no lower bound", func(t *testing.T) {
		svc := new(MockFinanceService)
		h := NewFinanceHandler(svc, new(MockPaymentMethodResolver))
		all := domain.TimeWindow{To: testWindow.To}
		svc.On("Window", "all", "", "").Return(all, nil).Once()
		svc.On("KPIs", mock.Anything, all).Return(domain.KPIs{}, nil).Once()

		w := serve(http.MethodGet, "/kpis", "/kpis?range=all", nil, h.HandleKPIs)

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), `"from"`)
	})

	t.Run("bad window", func(t *testing.T) {
		svc := new(MockFinanceService)
		h := NewFinanceHandler(svc, new(MockPaymentMethodResolver))
		svc.On("Window", "", "yesterday", "").Return(domain.TimeWindow{}, errors.New("invalid from")).Once()

		w := serve(http.MethodGet, "/kpis", "/kpis?from=yesterday", nil, h.HandleKPIs)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "KPIs", mock.Anything, mock.Anything)
	})

	t.Run("query failure is shown to the operator", func(t *testing.T) {
		svc := new(MockFinanceService)
		h := NewFinanceHandler(svc, new(MockPaymentMethodResolver))
		svc.On("Window", "", "", "").Return(testWindow, nil).Once()
		svc.On("KPIs", mock.Anything, testWindow).Return(domain.KPIs{}, errors.New("relation stripe_charges does not exist")).Once()

		w := serve(http.MethodGet, "/kpis", "/kpis", nil, h.HandleKPIs)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, decodeErr(t, w).Message, "stripe_charges")
	})
}

func TestFinanceHandler_HandleSeries(t *testing.T) {
	t.Run("defaults to daily buckets", func(t *testing.T) {
		svc := new(MockFinanceService)
		h := NewFinanceHandler(svc, new(MockPaymentMethodResolver))
		svc.On("Window", "30d", "", "").Return(testWindow, nil).Once()
		svc.On("Series", mock.Anything, testWindow, domain.GranularityDay).Return([]domain.SeriesPoint{
			{Bucket: testWindow.From, ConfirmedPayments: 1, GrossCents: 7000, NetCents: 6601},
		}, nil).Once()

		w := serve(http.MethodGet, "/series", "/series?range=30d", nil, h.HandleSeries)

		require.Equal(t, http.StatusOK, w.Code)
		var body response.SeriesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, domain.GranularityDay, body.Granularity)
		require.Len(t, body.Points, 1)
		assert.Equal(t, int64(6601), body.Points[0].NetCents)
	})

	t.Run("unknown granularity", func(t *testing.T) {
		svc := new(MockFinanceService)
		h := NewFinanceHandler(svc, new(MockPaymentMethodResolver))
		svc.On("Window", "", "", "").Return(testWindow, nil).Once()
		svc.On("Series", mock.Anything, testWindow, domain.Granularity("week")).Return([]domain.SeriesPoint(nil), service.ErrInvalidGranularity).Once()

		w := serve(http.MethodGet, "/series", "/series?granularity=week", nil, h.HandleSeries)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFinanceHandler_HandleBreakdown(t *testing.T) {
	svc := new(MockFinanceService)
	h := NewFinanceHandler(svc, new(MockPaymentMethodResolver))
	svc.On("Window", "90d", "", "").Return(testWindow, nil).Once()
	svc.On("Breakdown", mock.Anything, testWindow, domain.DimensionCoupon).Return([]domain.BreakdownRow{
		{Label: "Sem Cupom", ConfirmedPayments: 2, GrossCents: 15000, NetCents: 7382},
	}, nil).Once()

	w := serve(http.MethodGet, "/breakdown", "/breakdown?range=90d&dimension=coupon", nil, h.HandleBreakdown)

	require.Equal(t, http.StatusOK, w.Code)
	var body response.BreakdownResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domain.DimensionCoupon, body.Dimension)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "Sem Cupom", body.Rows[0].Label)
}

func TestFinanceHandler_HandlePaymentMethod(t *testing.T) {
	t.Run("resolves with amount", func(t *testing.T) {
		resolver := new(MockPaymentMethodResolver)
		h := NewFinanceHandler(new(MockFinanceService), resolver)
		resolver.On("Resolve", mock.Anything, "João da Silva", int64(7000)).
			Return(domain.PaymentMethodMatch{Label: "PIX", ChargeID: "ch_1", Score: 5}, nil).Once()

		w := serve(http.MethodGet, "/pm", "/pm?name=Jo%C3%A3o+da+Silva&amount_cents=7000", nil, h.HandlePaymentMethod)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"label":"PIX","charge_id":"ch_1","score":5}`, w.Body.String())
	})

	tests := []struct {
		name   string
		target string
	}{
		{name: "missing name", target: "/pm"},
		{name: "blank name", target: "/pm?name=++"},
		{name: "bad amount", target: "/pm?name=Ana&amount_cents=7k"},
		{name: "negative amount", target: "/pm?name=Ana&amount_cents=-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(MockPaymentMethodResolver)
			h := NewFinanceHandler(new(MockFinanceService), resolver)

			w := serve(http.MethodGet, "/pm", tt.target, nil, h.HandlePaymentMethod)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
