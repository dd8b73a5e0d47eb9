package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the body of every failed request.
type Err struct {
	Success bool   `json:"success"`
	Message string `json:"error"`
	Code    string `json:"code"`

	status int
	cause  error
}

func (e *Err) Error() string {
	return e.Message
}

func (e *Err) Unwrap() error {
	return e.cause
}

func (e *Err) Status() int {
	return e.status
}

func newErr(status int, code string, cause error) *Err {
	msg := http.StatusText(status)
	if cause != nil {
		msg = cause.Error()
	}

	return &Err{
		Message: msg,
		Code:    code,
		status:  status,
		cause:   cause,
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, "bad_request", err)
}

// ErrInvalid is a 400 with a specific code, e.g. coupon_required.
func ErrInvalid(code string, err error) *Err {
	return newErr(http.StatusBadRequest, code, err)
}

func ErrUnauthorized(err error) *Err {
	return newErr(http.StatusUnauthorized, "unauthorized", err)
}

func ErrWrongCredentials(err error) *Err {
	e := newErr(http.StatusUnauthorized, "wrong_credentials", err)
	e.Message = "wrong email or password"
	return e
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, "permission_denied", err)
}

func ErrForbidden(code string, err error) *Err {
	return newErr(http.StatusForbidden, code, err)
}

func ErrNotFound(entity, field string, val any) *Err {
	return newErr(http.StatusNotFound, entity+"_not_found",
		fmt.Errorf("%s with %s '%v' not found", entity, field, val))
}

func ErrConflict(code string, err error) *Err {
	return newErr(http.StatusConflict, code, err)
}

func ErrPayloadTooLarge(err error) *Err {
	return newErr(http.StatusRequestEntityTooLarge, "payload_too_large", err)
}

func ErrTooManyRequests() *Err {
	return newErr(http.StatusTooManyRequests, "rate_limited", errors.New("too many requests, try again later"))
}

func ErrInternalServerError(err error) *Err {
	e := newErr(http.StatusInternalServerError, "internal_error", err)
	e.Message = "internal server error"
	return e
}

func ErrBadGateway(err error) *Err {
	e := newErr(http.StatusBadGateway, "payment_gateway_error", err)
	e.Message = "payment processor request failed"
	return e
}

func ErrServiceUnavailable(code string, err error) *Err {
	return newErr(http.StatusServiceUnavailable, code, err)
}

// RenderErr writes err and aborts the chain. Server side failures are logged
// with their cause; the client only sees the generic message.
func RenderErr(ctx *gin.Context, err *Err) {
	if err.status >= http.StatusInternalServerError {
		zap.L().Error(err.Message,
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(err.cause))
	}

	ctx.AbortWithStatusJSON(err.status, err)
}
