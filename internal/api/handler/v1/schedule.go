package v1

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civeni/civeni-api/internal/api/handler/v1/request"
	"github.com/civeni/civeni-api/internal/api/handler/v1/response"
	"github.com/civeni/civeni-api/internal/domain"
)

const schedulePDFName = "civeni-2025-programacao.pdf"

type ScheduleService interface {
	Days(ctx context.Context) ([]domain.ScheduleDay, error)
	Replace(ctx context.Context, days []domain.ScheduleDay) error
	WritePDF(ctx context.Context, w io.Writer) error
}

type ScheduleHandler struct {
	svc ScheduleService
}

func NewScheduleHandler(svc ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		svc: svc,
	}
}

// HandleGetSchedule godoc
// @Summary      Conference agenda grouped by day
// @Tags         schedule
// @Produce      json
// @Success      200  {array}   domain.ScheduleDay
// @Failure      500  {object}  response.Err
// @Router       /schedule [get]
func (h *ScheduleHandler) HandleGetSchedule(ctx *gin.Context) {
	days, err := h.svc.Days(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetSchedule -> h.svc.Days -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if days == nil {
		days = []domain.ScheduleDay{}
	}
	ctx.JSON(http.StatusOK, days)
}

// HandleSchedulePDF godoc
// @Summary      Conference agenda as PDF
// @Tags         schedule
// @Produce      application/pdf
// @Success      200  {file}    binary
// @Failure      500  {object}  response.Err
// @Router       /schedule/pdf [get]
func (h *ScheduleHandler) HandleSchedulePDF(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.WritePDF(ctx.Request.Context(), &buf); err != nil {
		err = fmt.Errorf("v1.HandleSchedulePDF -> h.svc.WritePDF -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+schedulePDFName+`"`)
	ctx.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// HandleReplaceSchedule godoc
// @Summary      Replace the whole agenda
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        request  body      request.ReplaceScheduleRequest  true  "agenda"
// @Success      200      {array}   domain.ScheduleDay
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/schedule [put]
// @Security BearerAuth
func (h *ScheduleHandler) HandleReplaceSchedule(ctx *gin.Context) {
	var req request.ReplaceScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	days, err := req.ToDomain()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = h.svc.Replace(ctx.Request.Context(), days); err != nil {
		err = fmt.Errorf("v1.HandleReplaceSchedule -> h.svc.Replace -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.HandleGetSchedule(ctx)
}
