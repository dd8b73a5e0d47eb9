package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civeni/civeni-api/internal/api/handler/v1/request"
	"github.com/civeni/civeni-api/internal/api/handler/v1/response"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/service"
)

type CertificateService interface {
	Verify(ctx context.Context, code string) (domain.Certificate, error)
	Issue(ctx context.Context, c domain.Certificate) (domain.Certificate, error)
	Revoke(ctx context.Context, code string) error
}

type CertificateHandler struct {
	svc CertificateService
}

func NewCertificateHandler(svc CertificateService) *CertificateHandler {
	return &CertificateHandler{
		svc: svc,
	}
}

func certificateResponse(c domain.Certificate) response.CertificateResponse {
	return response.CertificateResponse{
		Valid:      true,
		Code:       c.Code,
		HolderName: c.HolderName,
		Event:      c.EventName,
		IssuedAt:   c.IssuedAt,
	}
}

func (h *CertificateHandler) verify(ctx *gin.Context, code string) {
	certificate, err := h.svc.Verify(ctx.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) || errors.Is(err, service.ErrCertificateRevoked) {
			ctx.JSON(http.StatusNotFound, response.InvalidCertificateResponse{
				Valid: false,
				Error: "certificate not found or no longer valid",
			})
			return
		}

		err = fmt.Errorf("v1.verify -> h.svc.Verify -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, certificateResponse(certificate))
}

// HandleGetCertificate godoc
// @Summary      Verify a certificate by code
// @Tags         certificates
// @Produce      json
// @Param        code  path      string  true  "certificate code"
// @Success      200   {object}  response.CertificateResponse
// @Failure      404   {object}  response.InvalidCertificateResponse
// @Router       /certificates/{code} [get]
func (h *CertificateHandler) HandleGetCertificate(ctx *gin.Context) {
	h.verify(ctx, ctx.Param("code"))
}

// HandleVerifyCertificate godoc
// @Summary      Verify a certificate
// @Tags         certificates
// @Accept       json
// @Produce      json
// @Param        request  body      request.VerifyCertificateRequest  true  "code"
// @Success      200      {object}  response.CertificateResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.InvalidCertificateResponse
// @Router       /certificates/verify [post]
func (h *CertificateHandler) HandleVerifyCertificate(ctx *gin.Context) {
	var req request.VerifyCertificateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	h.verify(ctx, req.Code)
}

// HandleIssueCertificate godoc
// @Summary      Issue a certificate
// @Tags         certificates
// @Accept       json
// @Produce      json
// @Param        request  body      request.IssueCertificateRequest  true  "certificate"
// @Success      201      {object}  domain.Certificate
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/certificates [post]
// @Security BearerAuth
func (h *CertificateHandler) HandleIssueCertificate(ctx *gin.Context) {
	var req request.IssueCertificateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	certificate, err := h.svc.Issue(ctx.Request.Context(), domain.Certificate{
		Code:       req.Code,
		HolderName: req.HolderName,
		EventID:    req.EventID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "id", req.EventID))
		case errors.Is(err, service.ErrCertificateExists):
			response.RenderErr(ctx, response.ErrConflict("certificate_exists", service.ErrCertificateExists))
		default:
			err = fmt.Errorf("v1.HandleIssueCertificate -> h.svc.Issue -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, certificate)
}

// HandleRevokeCertificate godoc
// @Summary      Revoke a certificate
// @Tags         certificates
// @Produce      json
// @Param        code  path  string  true  "certificate code"
// @Success      204
// @Failure      404   {object}  response.Err
// @Router       /admin/certificates/{code}/revoke [post]
// @Security BearerAuth
func (h *CertificateHandler) HandleRevokeCertificate(ctx *gin.Context) {
	code := ctx.Param("code")

	if err := h.svc.Revoke(ctx.Request.Context(), code); err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("certificate", "code", code))
			return
		}

		err = fmt.Errorf("v1.HandleRevokeCertificate -> h.svc.Revoke -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}
