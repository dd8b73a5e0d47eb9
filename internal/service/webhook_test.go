package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/civeni/civeni-api/internal/clock"
	"github.com/civeni/civeni-api/internal/domain"
)

const chargeObject = `{
	"id": "ch_1",
	"object": "charge",
	"amount": 7000,
	"amount_refunded": 0,
	"currency": "brl",
	"status": "succeeded",
	"paid": true,
	"balance_transaction": "txn_1",
	"metadata": {"registration_id": "r-1"},
	"payment_method_details": {"type": "card", "card": {"brand": "visa"}},
	"created": 1763650800
}`

func chargeEvent(id string) domain.StripeEvent {
	return domain.StripeEvent{
		ID:      id,
		Type:    "charge.succeeded",
		Created: testNow,
		Data:    json.RawMessage(chargeObject),
	}
}

func TestIngest_ProcessesChargeOnce(t *testing.T) {
	repo := new(MockStripeMirrorRepository)
	fees := new(MockFeeLookup)
	publisher := &recordingPublisher{}
	event := chargeEvent("evt_1")

	repo.On("ClaimEvent", mock.Anything, event, testNow).Return(domain.EventRecord{ID: "evt_1", Status: domain.EventProcessing}, true, nil).Once()
	repo.On("ClaimEvent", mock.Anything, event, testNow).Return(domain.EventRecord{ID: "evt_1", Status: domain.EventProcessed}, false, nil).Once()
	fees.On("Configured").Return(true)
	fees.On("ChargeFee", mock.Anything, "txn_1").Return(int64(399), nil)
	repo.On("SaveCharge", mock.Anything, mock.MatchedBy(func(c domain.Charge) bool {
		return c.ID == "ch_1" && c.Fee == 399 && c.Net() == 6601 && c.CardBrand == "visa"
	})).Return(nil).Once()
	repo.On("RefreshFinanceDaily", mock.Anything).Return(nil)
	repo.On("MarkProcessed", mock.Anything, "evt_1", testNow).Return(nil).Once()

	svc := NewWebhookService(repo, fees, publisher, clock.NewFixed(testNow))

	first, err := svc.Ingest(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, first.Handled)
	assert.False(t, first.Duplicate)

	second, err := svc.Ingest(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.False(t, second.Handled)

	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "SaveCharge", 1)
	require.Len(t, publisher.changes, 1)
	assert.Equal(t, domain.ChangeEvent{Table: "stripe_charges", Type: "charge.succeeded", ID: "ch_1", At: testNow}, publisher.changes[0])
}

func TestIngest_FailureIsRecorded(t *testing.T) {
	repo := new(MockStripeMirrorRepository)
	publisher := &recordingPublisher{}
	event := chargeEvent("evt_2")

	repo.On("ClaimEvent", mock.Anything, event, testNow).Return(domain.EventRecord{ID: "evt_2"}, true, nil)
	repo.On("SaveCharge", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
	repo.On("MarkFailed", mock.Anything, "evt_2", "connection reset", testNow).Return(nil)

	svc := NewWebhookService(repo, nil, publisher, clock.NewFixed(testNow))
	_, err := svc.Ingest(context.Background(), event)

	assert.ErrorIs(t, err, ErrEventProcessing)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, publisher.changes)
}

func TestIngest_UnhandledTypeIsAcknowledged(t *testing.T) {
	for _, eventType := range []string{"invoice.paid", "customer.subscription.created", "customer.tax_id.updated"} {
		t.Run(eventType, func(t *testing.T) {
			repo := new(MockStripeMirrorRepository)
			event := domain.StripeEvent{ID: "evt_" + eventType, Type: eventType, Data: json.RawMessage(`{}`)}
			repo.On("ClaimEvent", mock.Anything, event, testNow).Return(domain.EventRecord{}, true, nil)
			repo.On("MarkProcessed", mock.Anything, event.ID, testNow).Return(nil)

			svc := NewWebhookService(repo, nil, nil, clock.NewFixed(testNow))
			got, err := svc.Ingest(context.Background(), event)

			require.NoError(t, err)
			assert.False(t, got.Handled)
			repo.AssertExpectations(t)
		})
	}
}

func TestIngest_Routing(t *testing.T) {
	tests := []struct {
		eventType string
		data      string
		method    string
	}{
		{"checkout.session.completed", `{"id":"cs_1","object":"checkout.session","payment_status":"paid"}`, "SaveCheckoutSession"},
		{"payment_intent.succeeded", `{"id":"pi_1","object":"payment_intent","amount":7000}`, "SavePaymentIntent"},
		{"charge.refund.updated", `{"id":"re_1","object":"refund","amount":100}`, "SaveRefund"},
		{"charge.dispute.created", `{"id":"dp_1","object":"dispute","amount":7000}`, "SaveDispute"},
		{"payout.paid", `{"id":"po_1","object":"payout","amount":50000}`, "SavePayout"},
		{"customer.updated", `{"id":"cus_1","object":"customer","email":"a@b.c"}`, "SaveCustomer"},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			repo := new(MockStripeMirrorRepository)
			publisher := &recordingPublisher{}
			event := domain.StripeEvent{ID: "evt_" + tt.eventType, Type: tt.eventType, Data: json.RawMessage(tt.data)}
			repo.On("ClaimEvent", mock.Anything, event, testNow).Return(domain.EventRecord{}, true, nil)
			repo.On(tt.method, mock.Anything, mock.Anything).Return(nil).Once()
			repo.On("MarkProcessed", mock.Anything, event.ID, testNow).Return(nil)

			svc := NewWebhookService(repo, nil, publisher, clock.NewFixed(testNow))
			got, err := svc.Ingest(context.Background(), event)

			require.NoError(t, err)
			assert.True(t, got.Handled)
			repo.AssertExpectations(t)
			require.Len(t, publisher.changes, 1)
		})
	}
}

func TestIngest_DeletedCustomer(t *testing.T) {
	repo := new(MockStripeMirrorRepository)
	event := domain.StripeEvent{ID: "evt_del", Type: "customer.deleted", Data: json.RawMessage(`{"id":"cus_9","object":"customer"}`)}
	repo.On("ClaimEvent", mock.Anything, event, testNow).Return(domain.EventRecord{}, true, nil)
	repo.On("SaveCustomer", mock.Anything, mock.MatchedBy(func(c domain.Customer) bool {
		return c.ID == "cus_9" && c.Deleted
	})).Return(nil)
	repo.On("MarkProcessed", mock.Anything, "evt_del", testNow).Return(nil)

	svc := NewWebhookService(repo, nil, nil, clock.NewFixed(testNow))
	_, err := svc.Ingest(context.Background(), event)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
