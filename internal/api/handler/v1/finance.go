package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civeni/civeni-api/internal/api/handler/v1/response"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/service"
)

var errNameRequired = errors.New("name is required")

type FinanceService interface {
	Window(rangeName, from, to string) (domain.TimeWindow, error)
	KPIs(ctx context.Context, w domain.TimeWindow) (domain.KPIs, error)
	Series(ctx context.Context, w domain.TimeWindow, g domain.Granularity) ([]domain.SeriesPoint, error)
	Breakdown(ctx context.Context, w domain.TimeWindow, d domain.Dimension) ([]domain.BreakdownRow, error)
}

type PaymentMethodResolver interface {
	Resolve(ctx context.Context, name string, amountCents int64) (domain.PaymentMethodMatch, error)
}

type FinanceHandler struct {
	svc      FinanceService
	resolver PaymentMethodResolver
}

func NewFinanceHandler(svc FinanceService, resolver PaymentMethodResolver) *FinanceHandler {
	return &FinanceHandler{
		svc:      svc,
		resolver: resolver,
	}
}

func (h *FinanceHandler) window(ctx *gin.Context) (domain.TimeWindow, bool) {
	w, err := h.svc.Window(ctx.Query("range"), ctx.Query("from"), ctx.Query("to"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return domain.TimeWindow{}, false
	}
	return w, true
}

func renderFinanceErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidGranularity), errors.Is(err, service.ErrInvalidDimension):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		// Dashboards show the failing query to the operator.
		e := response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
		e.Message = err.Error()
		response.RenderErr(ctx, e)
	}
}

// HandleKPIs godoc
// @Summary      Finance KPIs for a time window
// @Tags         finance
// @Produce      json
// @Param        range  query     string  false  "7d, 30d, 90d or all"
// @Param        from   query     string  false  "RFC3339 or YYYY-MM-DD"
// @Param        to     query     string  false  "RFC3339 or YYYY-MM-DD"
// @Success      200    {object}  response.KPIResponse
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /admin/finance/kpis [get]
// @Security BearerAuth
func (h *FinanceHandler) HandleKPIs(ctx *gin.Context) {
	w, ok := h.window(ctx)
	if !ok {
		return
	}

	kpis, err := h.svc.KPIs(ctx.Request.Context(), w)
	if err != nil {
		renderFinanceErr(ctx, "v1.HandleKPIs -> h.svc.KPIs", err)
		return
	}

	ctx.JSON(http.StatusOK, response.KPIResponse{Window: response.NewFinanceWindow(w), KPIs: kpis})
}

// HandleSeries godoc
// @Summary      Confirmed payments and revenue over time
// @Tags         finance
// @Produce      json
// @Param        range        query     string  false  "7d, 30d, 90d or all"
// @Param        from         query     string  false  "RFC3339 or YYYY-MM-DD"
// @Param        to           query     string  false  "RFC3339 or YYYY-MM-DD"
// @Param        granularity  query     string  false  "day or hour"
// @Success      200          {object}  response.SeriesResponse
// @Failure      400          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /admin/finance/series [get]
// @Security BearerAuth
func (h *FinanceHandler) HandleSeries(ctx *gin.Context) {
	w, ok := h.window(ctx)
	if !ok {
		return
	}

	g := domain.Granularity(ctx.DefaultQuery("granularity", string(domain.GranularityDay)))
	points, err := h.svc.Series(ctx.Request.Context(), w, g)
	if err != nil {
		renderFinanceErr(ctx, "v1.HandleSeries -> h.svc.Series", err)
		return
	}

	ctx.JSON(http.StatusOK, response.SeriesResponse{
		Window:      response.NewFinanceWindow(w),
		Granularity: g,
		Points:      points,
	})
}

// HandleBreakdown godoc
// @Summary      Revenue grouped by lot, coupon or payment method
// @Tags         finance
// @Produce      json
// @Param        range      query     string  false  "7d, 30d, 90d or all"
// @Param        from       query     string  false  "RFC3339 or YYYY-MM-DD"
// @Param        to         query     string  false  "RFC3339 or YYYY-MM-DD"
// @Param        dimension  query     string  false  "lot, coupon or payment_method"
// @Success      200        {object}  response.BreakdownResponse
// @Failure      400        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /admin/finance/breakdown [get]
// @Security BearerAuth
func (h *FinanceHandler) HandleBreakdown(ctx *gin.Context) {
	w, ok := h.window(ctx)
	if !ok {
		return
	}

	d := domain.Dimension(ctx.DefaultQuery("dimension", string(domain.DimensionLot)))
	rows, err := h.svc.Breakdown(ctx.Request.Context(), w, d)
	if err != nil {
		renderFinanceErr(ctx, "v1.HandleBreakdown -> h.svc.Breakdown", err)
		return
	}

	ctx.JSON(http.StatusOK, response.BreakdownResponse{
		Window:    response.NewFinanceWindow(w),
		Dimension: d,
		Rows:      rows,
	})
}

// HandlePaymentMethod godoc
// @Summary      Guess how a participant paid
// @Tags         finance
// @Produce      json
// @Param        name          query     string  true   "participant name"
// @Param        amount_cents  query     int     false  "expected amount"
// @Success      200           {object}  domain.PaymentMethodMatch
// @Failure      400           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /admin/finance/payment-method [get]
// @Security BearerAuth
func (h *FinanceHandler) HandlePaymentMethod(ctx *gin.Context) {
	name := strings.TrimSpace(ctx.Query("name"))
	if name == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errNameRequired))
		return
	}

	var amount int64
	if raw := ctx.Query("amount_cents"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid amount_cents %q", raw)))
			return
		}
		amount = v
	}

	match, err := h.resolver.Resolve(ctx.Request.Context(), name, amount)
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("v1.HandlePaymentMethod -> h.resolver.Resolve -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, match)
}
