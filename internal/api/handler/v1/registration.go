package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/civeni/civeni-api/internal/api/handler/v1/request"
	"github.com/civeni/civeni-api/internal/api/handler/v1/response"
	"github.com/civeni/civeni-api/internal/domain"
)

type RegistrationService interface {
	Register(ctx context.Context, in domain.RegistrationInput) (domain.RegistrationResult, error)
	VerifyPayment(ctx context.Context, sessionID string, registrationID *uuid.UUID) (domain.VerificationResult, error)
	Deduplicate(ctx context.Context) (int64, error)
}

type CatalogService interface {
	AvailableCategories(ctx context.Context) ([]domain.Category, error)
	ValidateCoupon(ctx context.Context, check domain.CouponCheck) (domain.CouponValidation, error)
	SyncCategory(ctx context.Context, id uuid.UUID) (domain.Category, error)
}

type RegistrationHandler struct {
	svc     RegistrationService
	catalog CatalogService
}

func NewRegistrationHandler(svc RegistrationService, catalog CatalogService) *RegistrationHandler {
	return &RegistrationHandler{
		svc:     svc,
		catalog: catalog,
	}
}

// HandleListCategories godoc
// @Summary      List categories open for registration
// @Tags         registrations
// @Produce      json
// @Success      200  {array}   domain.Category
// @Failure      500  {object}  response.Err
// @Router       /categories [get]
func (h *RegistrationHandler) HandleListCategories(ctx *gin.Context) {
	categories, err := h.catalog.AvailableCategories(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListCategories -> h.catalog.AvailableCategories", err)
		return
	}

	ctx.JSON(http.StatusOK, categories)
}

// HandleRegister godoc
// @Summary      Register a participant
// @Description  Prices the registration from the stored category and coupon. Paid registrations get a Stripe checkout url.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request  body      request.RegistrationRequest  true  "registration"
// @Success      201      {object}  response.RegistrationResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Failure      503      {object}  response.Err
// @Router       /registrations [post]
func (h *RegistrationHandler) HandleRegister(ctx *gin.Context) {
	var req request.RegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ctx.Set(categoryIDKey, req.CategoryID.String())
	ctx.Set(couponCodeKey, req.CouponCode)

	result, err := h.svc.Register(ctx.Request.Context(), req.ToDomain())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleRegister -> h.svc.Register", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.RegistrationResponse{
		Success:         true,
		PaymentRequired: result.PaymentRequired,
		RegistrationID:  result.Registration.ID,
		URL:             result.CheckoutURL,
		SessionID:       result.SessionID,
	})
}

// HandleValidateCoupon godoc
// @Summary      Validate a coupon for a category
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request  body      request.CouponValidationRequest  true  "coupon"
// @Success      200      {object}  response.CouponResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /coupons/validate [post]
func (h *RegistrationHandler) HandleValidateCoupon(ctx *gin.Context) {
	var req request.CouponValidationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ctx.Set(categoryIDKey, req.CategoryID.String())
	ctx.Set(couponCodeKey, req.Code)

	v, err := h.catalog.ValidateCoupon(ctx.Request.Context(), domain.CouponCheck{
		Code:            req.Code,
		CategoryID:      req.CategoryID,
		ParticipantType: req.ParticipantType,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleValidateCoupon -> h.catalog.ValidateCoupon", err)
		return
	}

	ctx.JSON(http.StatusOK, response.CouponResponse{
		Valid:           true,
		Code:            v.Coupon.Code,
		DiscountType:    v.Coupon.DiscountType,
		DiscountValue:   v.Coupon.DiscountValue,
		OriginalCents:   v.OriginalCents,
		FinalCents:      v.FinalCents,
		DiscountedCents: v.DiscountedCents,
	})
}

// HandleVerifyPayment godoc
// @Summary      Verify a checkout session and complete the registration
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      request.VerifyPaymentRequest  true  "session"
// @Success      200      {object}  response.VerificationResponse
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      429      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Failure      503      {object}  response.Err
// @Router       /payments/verify [post]
func (h *RegistrationHandler) HandleVerifyPayment(ctx *gin.Context) {
	var req request.VerifyPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ctx.Set(sessionIDKey, req.SessionID)

	result, err := h.svc.VerifyPayment(ctx.Request.Context(), req.SessionID, req.RegistrationID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleVerifyPayment -> h.svc.VerifyPayment", err)
		return
	}

	ctx.JSON(http.StatusOK, response.VerificationResponse{
		Success:          true,
		PaymentStatus:    result.PaymentStatus,
		RegistrationID:   result.RegistrationID,
		AlreadyCompleted: result.AlreadyCompleted,
	})
}

// HandleSyncCategory godoc
// @Summary      Create or refresh the Stripe product and price of a category
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "category id"
// @Success      200  {object}  domain.Category
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      502  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Router       /admin/categories/{id}/sync [post]
// @Security BearerAuth
func (h *RegistrationHandler) HandleSyncCategory(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	ctx.Set(categoryIDKey, id.String())

	category, err := h.catalog.SyncCategory(ctx.Request.Context(), id)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleSyncCategory -> h.catalog.SyncCategory", err)
		return
	}

	ctx.JSON(http.StatusOK, category)
}

// HandleDeduplicate godoc
// @Summary      Remove duplicate registrations
// @Description  Keeps one registration per email and category: the completed one, otherwise the newest.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.DedupResponse
// @Failure      500  {object}  response.Err
// @Router       /admin/registrations/dedup [post]
// @Security BearerAuth
func (h *RegistrationHandler) HandleDeduplicate(ctx *gin.Context) {
	deleted, err := h.svc.Deduplicate(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleDeduplicate -> h.svc.Deduplicate", err)
		return
	}

	ctx.JSON(http.StatusOK, response.DedupResponse{Success: true, Deleted: deleted})
}
