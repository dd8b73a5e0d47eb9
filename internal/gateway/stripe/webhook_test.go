package stripe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83/webhook"
)

const testSecret = "whsec_test_secret"

func signed(t *testing.T, payload string, secret string) string {
	t.Helper()

	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})

	return sp.Header
}

func TestVerifier_Verify(t *testing.T) {
	payload := `{"id":"evt_1","object":"event","type":"charge.succeeded","created":1736942400,"data":{"object":{"id":"ch_1","object":"charge","amount":50000}}}`

	t.Run("valid signature", func(t *testing.T) {
		v := NewVerifier(testSecret)

		event, err := v.Verify([]byte(payload), signed(t, payload, testSecret))
		require.NoError(t, err)
		assert.Equal(t, "evt_1", event.ID)
		assert.Equal(t, "charge.succeeded", event.Type)
		assert.Equal(t, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), event.Created)
		assert.JSONEq(t, `{"id":"ch_1","object":"charge","amount":50000}`, string(event.Data))
	})

	t.Run("wrong secret", func(t *testing.T) {
		v := NewVerifier(testSecret)

		_, err := v.Verify([]byte(payload), signed(t, payload, "whsec_other"))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("missing header", func(t *testing.T) {
		v := NewVerifier(testSecret)

		_, err := v.Verify([]byte(payload), "")
		assert.ErrorIs(t, err, ErrMissingSignature)
	})
}

func TestDecodeCharge(t *testing.T) {
	raw := []byte(`{
		"id": "ch_123",
		"object": "charge",
		"amount": 7000,
		"amount_refunded": 1000,
		"currency": "brl",
		"status": "succeeded",
		"paid": true,
		"payment_intent": "pi_123",
		"balance_transaction": "txn_123",
		"billing_details": {"name": "Maria Silva", "email": "maria@example.com"},
		"payment_method_details": {"type": "card", "card": {"brand": "visa"}},
		"metadata": {"lot": "Lote 1"},
		"created": 1736942400
	}`)

	c, err := DecodeCharge(raw)
	require.NoError(t, err)

	assert.Equal(t, "ch_123", c.ID)
	assert.Equal(t, int64(7000), c.Amount)
	assert.Equal(t, int64(1000), c.AmountRefunded)
	assert.Equal(t, "pi_123", c.PaymentIntentID)
	assert.Equal(t, "txn_123", c.BalanceTxID)
	assert.Equal(t, "card", c.PaymentMethodType)
	assert.Equal(t, "visa", c.CardBrand)
	assert.Equal(t, "Maria Silva", c.BillingName)
	assert.Equal(t, "Lote 1", c.Metadata["lot"])
	assert.True(t, c.Counts())
}

func TestDecodeCheckoutSession(t *testing.T) {
	raw := []byte(`{
		"id": "cs_test_1",
		"object": "checkout.session",
		"amount_total": 7000,
		"currency": "brl",
		"status": "complete",
		"payment_status": "paid",
		"customer_details": {"email": "joao@example.com"},
		"metadata": {"registration_id": "abc"},
		"created": 1736942400
	}`)

	s, err := DecodeCheckoutSession(raw)
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", s.ID)
	assert.True(t, s.IsPaid())
	assert.Equal(t, "joao@example.com", s.CustomerEmail)
	assert.Equal(t, "abc", s.Metadata["registration_id"])
}
