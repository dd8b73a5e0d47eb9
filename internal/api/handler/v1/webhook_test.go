package v1

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83/webhook"

	"github.com/civeni/civeni-api/internal/domain"
	stripegw "github.com/civeni/civeni-api/internal/gateway/stripe"
)

const (
	webhookSecret  = "whsec_handler_test"
	webhookPayload = `{"id":"evt_1","object":"event","type":"charge.succeeded","created":1763650800,"data":{"object":{"id":"ch_1","object":"charge","amount":7000}}}`
)

func signedHeader(payload, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func TestWebhookHandler_HandleStripeWebhook(t *testing.T) {
	t.Run("signed event is ingested", func(t *testing.T) {
		svc := new(MockWebhookService)
		h := NewWebhookHandler(stripegw.NewVerifier(webhookSecret), svc)
		svc.On("Ingest", mock.Anything, mock.MatchedBy(func(e domain.StripeEvent) bool {
			return e.ID == "evt_1" && e.Type == "charge.succeeded"
		})).Return(domain.IngestResult{EventID: "evt_1", Handled: true}, nil).Once()

		w := serve(http.MethodPost, "/webhooks/stripe", "/webhooks/stripe", jsonBody(webhookPayload), h.HandleStripeWebhook,
			"Stripe-Signature", signedHeader(webhookPayload, webhookSecret))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("replayed event is acknowledged", func(t *testing.T) {
		svc := new(MockWebhookService)
		h := NewWebhookHandler(stripegw.NewVerifier(webhookSecret), svc)
		svc.On("Ingest", mock.Anything, mock.Anything).Return(domain.IngestResult{EventID: "evt_1", Duplicate: true}, nil).Once()

		w := serve(http.MethodPost, "/webhooks/stripe", "/webhooks/stripe", jsonBody(webhookPayload), h.HandleStripeWebhook,
			"Stripe-Signature", signedHeader(webhookPayload, webhookSecret))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true,"duplicate":true}`, w.Body.String())
	})

	t.Run("bad signature", func(t *testing.T) {
		svc := new(MockWebhookService)
		h := NewWebhookHandler(stripegw.NewVerifier(webhookSecret), svc)

		w := serve(http.MethodPost, "/webhooks/stripe", "/webhooks/stripe", jsonBody(webhookPayload), h.HandleStripeWebhook,
			"Stripe-Signature", signedHeader(webhookPayload, "whsec_attacker"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_signature", decodeErr(t, w).Code)
		svc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
	})

	t.Run("missing signature", func(t *testing.T) {
		svc := new(MockWebhookService)
		h := NewWebhookHandler(stripegw.NewVerifier(webhookSecret), svc)

		w := serve(http.MethodPost, "/webhooks/stripe", "/webhooks/stripe", jsonBody(webhookPayload), h.HandleStripeWebhook)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("secret not configured", func(t *testing.T) {
		svc := new(MockWebhookService)
		h := NewWebhookHandler(stripegw.NewVerifier(""), svc)

		w := serve(http.MethodPost, "/webhooks/stripe", "/webhooks/stripe", jsonBody(webhookPayload), h.HandleStripeWebhook,
			"Stripe-Signature", signedHeader(webhookPayload, webhookSecret))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "webhook_not_configured", decodeErr(t, w).Code)
	})

	t.Run("oversized payload", func(t *testing.T) {
		verifier := new(MockSignatureVerifier)
		svc := new(MockWebhookService)
		h := NewWebhookHandler(verifier, svc)
		verifier.On("Configured").Return(true)

		big := strings.Repeat("x", MaxWebhookBody+1)
		w := serve(http.MethodPost, "/webhooks/stripe", "/webhooks/stripe", strings.NewReader(big), h.HandleStripeWebhook,
			"Stripe-Signature", "t=1,v1=abc")

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("processing failure lets stripe retry", func(t *testing.T) {
		verifier := new(MockSignatureVerifier)
		svc := new(MockWebhookService)
		h := NewWebhookHandler(verifier, svc)
		event := domain.StripeEvent{ID: "evt_2", Type: "charge.refunded"}
		verifier.On("Configured").Return(true)
		verifier.On("Verify", []byte(webhookPayload), "sig").Return(event, nil).Once()
		svc.On("Ingest", mock.Anything, event).Return(domain.IngestResult{}, errors.New("deadlock detected")).Once()

		w := serve(http.MethodPost, "/webhooks/stripe", "/webhooks/stripe", jsonBody(webhookPayload), h.HandleStripeWebhook,
			"Stripe-Signature", "sig")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		svc.AssertExpectations(t)
	})
}
