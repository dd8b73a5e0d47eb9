package v1

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/civeni/civeni-api/internal/api/handler/v1/response"
	"github.com/civeni/civeni-api/internal/service"
)

// renderServiceErr maps the sentinels shared by the payment flows onto their
// response. Anything unknown is a 500 tagged with op.
func renderServiceErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		response.RenderErr(ctx, response.ErrNotFound("category", "id", ctx.GetString(categoryIDKey)))
	case errors.Is(err, service.ErrCategoryUnavailable):
		response.RenderErr(ctx, response.ErrConflict("category_unavailable", service.ErrCategoryUnavailable))
	case errors.Is(err, service.ErrCourseRequired):
		response.RenderErr(ctx, response.ErrInvalid("course_required", service.ErrCourseRequired))
	case errors.Is(err, service.ErrCouponRequired):
		response.RenderErr(ctx, response.ErrInvalid("coupon_required", service.ErrCouponRequired))
	case errors.Is(err, service.ErrCouponNotFound):
		response.RenderErr(ctx, response.ErrNotFound("coupon", "code", ctx.GetString(couponCodeKey)))
	case couponRejection(err) != nil:
		response.RenderErr(ctx, response.ErrInvalid("coupon_invalid", couponRejection(err)))
	case errors.Is(err, service.ErrRegistrationNotFound):
		response.RenderErr(ctx, response.ErrNotFound("registration", "session_id", ctx.GetString(sessionIDKey)))
	case errors.Is(err, service.ErrSessionMismatch):
		response.RenderErr(ctx, response.ErrForbidden("session_mismatch", service.ErrSessionMismatch))
	case errors.Is(err, service.ErrPaymentNotConfigured):
		response.RenderErr(ctx, response.ErrServiceUnavailable("payment_not_configured", service.ErrPaymentNotConfigured))
	case errors.Is(err, service.ErrPaymentGateway):
		response.RenderErr(ctx, response.ErrBadGateway(err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}

func couponRejection(err error) error {
	for _, sentinel := range []error{
		service.ErrCouponInactive,
		service.ErrCouponExhausted,
		service.ErrCouponParticipant,
		service.ErrCouponCategory,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}

// Context keys carrying the identifiers used in not-found messages.
const (
	categoryIDKey = "categoryID"
	couponCodeKey = "couponCode"
	sessionIDKey  = "sessionID"
)
