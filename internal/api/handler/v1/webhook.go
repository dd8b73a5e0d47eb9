package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civeni/civeni-api/internal/api/handler/v1/response"
	"github.com/civeni/civeni-api/internal/domain"
)

// MaxWebhookBody bounds the raw Stripe payload read before verification.
const MaxWebhookBody = 64 << 10

var (
	errWebhookNotConfigured = errors.New("stripe webhook secret is not configured")
	errWebhookTooLarge      = fmt.Errorf("webhook payload exceeds %d bytes", MaxWebhookBody)
)

type SignatureVerifier interface {
	Configured() bool
	Verify(payload []byte, signature string) (domain.StripeEvent, error)
}

type WebhookService interface {
	Ingest(ctx context.Context, event domain.StripeEvent) (domain.IngestResult, error)
}

type WebhookHandler struct {
	verifier SignatureVerifier
	svc      WebhookService
}

func NewWebhookHandler(verifier SignatureVerifier, svc WebhookService) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		svc:      svc,
	}
}

// HandleStripeWebhook godoc
// @Summary      Receive Stripe events
// @Description  Verifies the Stripe-Signature header and mirrors the event payload. Replayed events are acknowledged without reprocessing.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header    string  true  "stripe signature"
// @Success      200               {object}  response.WebhookResponse
// @Failure      400               {object}  response.Err
// @Failure      413               {object}  response.Err
// @Failure      500               {object}  response.Err
// @Failure      503               {object}  response.Err
// @Router       /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(ctx *gin.Context) {
	if !h.verifier.Configured() {
		response.RenderErr(ctx, response.ErrServiceUnavailable("webhook_not_configured", errWebhookNotConfigured))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, MaxWebhookBody+1))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if len(payload) > MaxWebhookBody {
		response.RenderErr(ctx, response.ErrPayloadTooLarge(errWebhookTooLarge))
		return
	}

	event, err := h.verifier.Verify(payload, ctx.GetHeader("Stripe-Signature"))
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalid("invalid_signature", err))
		return
	}

	result, err := h.svc.Ingest(ctx.Request.Context(), event)
	if err != nil {
		err = fmt.Errorf("v1.HandleStripeWebhook -> h.svc.Ingest(%s) -> %w", event.ID, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.WebhookResponse{
		Received:  true,
		Duplicate: result.Duplicate,
	})
}
