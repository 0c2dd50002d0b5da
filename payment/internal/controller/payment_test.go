package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/ammasidli/storefront/internal/config"
	orderRequest "github.com/ammasidli/storefront/order/pkg/request"
	"github.com/ammasidli/storefront/payment/internal/controller"
	"github.com/ammasidli/storefront/payment/internal/service"
	"github.com/ammasidli/storefront/payment/pkg/client"
)

const testWebhookSecret = "whsec_test_secret"

type fakeIntents struct {
	err error
}

func (f *fakeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
		Amount:       *params.Amount,
	}, nil
}

type fakeTransfers struct {
	params []*stripe.TransferParams
}

func (f *fakeTransfers) New(params *stripe.TransferParams) (*stripe.Transfer, error) {
	f.params = append(f.params, params)
	return &stripe.Transfer{ID: fmt.Sprintf("tr_%d", len(f.params))}, nil
}

type fakeLedger struct {
	completed map[string]bool
}

func (f *fakeLedger) IsCompleted(_ context.Context, orderID, category string) (bool, error) {
	return f.completed[orderID+"/"+category], nil
}

func (f *fakeLedger) MarkPending(
	_ context.Context,
	orderID, category, destination string,
	amountMinor int64,
) error {
	return nil
}

func (f *fakeLedger) MarkCompleted(_ context.Context, orderID, category, transferID string) error {
	f.completed[orderID+"/"+category] = true
	return nil
}

type fakeOrders struct{}

func (f *fakeOrders) UpdateOrderStatus(
	_ context.Context,
	id uuid.UUID,
	status orderRequest.Status,
) error {
	return nil
}

func newRouter(transfers *fakeTransfers) *mux.Router {
	cfg := config.Stripe{
		Currency:       "inr",
		DefaultAccount: "acct_default",
		CategoryAccounts: map[string]string{
			"food":     "acct_food",
			"beverage": "acct_beverage",
		},
	}
	svc := service.NewPaymentService(
		&fakeIntents{},
		transfers,
		&fakeLedger{completed: map[string]bool{}},
		&fakeOrders{},
		cfg,
	)
	router := mux.NewRouter()
	controller.AttachPaymentController(router, svc, testWebhookSecret)
	return router
}

func succeededPayload(orderID uuid.UUID, categoryTotals string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test",
		"type": "payment_intent.succeeded",
		"api_version": %q,
		"data": {
			"object": {
				"id": "pi_test",
				"transfer_group": %q,
				"metadata": {
					"order_id": %q,
					"category_totals": %q
				}
			}
		}
	}`, stripe.APIVersion, orderID.String(), orderID.String(), categoryTotals))
}

func signPayload(t *testing.T, payload []byte) (body []byte, sigHeader string) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func newIntentServer(t *testing.T, intents *fakeIntents) *httptest.Server {
	t.Helper()
	cfg := config.Stripe{
		Currency:       "inr",
		DefaultAccount: "acct_default",
	}
	svc := service.NewPaymentService(
		intents,
		&fakeTransfers{},
		&fakeLedger{completed: map[string]bool{}},
		&fakeOrders{},
		cfg,
	)
	router := mux.NewRouter()
	controller.AttachPaymentController(router, svc, testWebhookSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestCreateIntentRequesterReceivesIntent(t *testing.T) {
	server := newIntentServer(t, &fakeIntents{})
	requester := client.NewRequester(server.URL + "/payments/intents")

	order := orderRequest.CreateOrder{
		UserID: uuid.New(),
		Status: orderRequest.StatusPending,
		Products: []orderRequest.Product{
			{Name: "Samosa", Price: decimal.NewFromInt(40)},
		},
		CategoryTotals: map[string]decimal.Decimal{
			"food": decimal.NewFromInt(40),
		},
	}
	intent, err := requester.CreateIntent(context.Background(), uuid.New(), order)
	require.NoError(t, err)
	assert.EqualValues(t, "pi_test", intent["id"])
	assert.EqualValues(t, "pi_test_secret", intent["client_secret"])
}

func TestCreateIntentRequesterSurfacesUpstreamError(t *testing.T) {
	server := newIntentServer(t, &fakeIntents{err: errors.New("card declined by processor")})
	requester := client.NewRequester(server.URL + "/payments/intents")

	order := orderRequest.CreateOrder{
		UserID: uuid.New(),
		Status: orderRequest.StatusPending,
		Products: []orderRequest.Product{
			{Name: "Samosa", Price: decimal.NewFromInt(40)},
		},
	}
	_, err := requester.CreateIntent(context.Background(), uuid.New(), order)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card declined by processor")
}

func TestWebhookSucceededEventIssuesTransfers(t *testing.T) {
	transfers := &fakeTransfers{}
	router := newRouter(transfers)

	body, sigHeader := signPayload(t, succeededPayload(uuid.New(), `{"food":"50","beverage":"25"}`))
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", sigHeader)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.EqualValues(t, http.StatusOK, rr.Code)
	resp := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.EqualValues(t, map[string]interface{}{"received": true}, resp)

	require.Len(t, transfers.params, 2)
	assert.EqualValues(t, "acct_beverage", *transfers.params[0].Destination)
	assert.EqualValues(t, 2500, *transfers.params[0].Amount)
	assert.EqualValues(t, "acct_food", *transfers.params[1].Destination)
	assert.EqualValues(t, 5000, *transfers.params[1].Amount)
}

func TestWebhookMissingSignature(t *testing.T) {
	transfers := &fakeTransfers{}
	router := newRouter(transfers)

	body := succeededPayload(uuid.New(), `{"food":"50"}`)
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.EqualValues(t, http.StatusBadRequest, rr.Code)
	resp := map[string]string{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
	assert.Empty(t, transfers.params)
}

func TestWebhookInvalidSignature(t *testing.T) {
	transfers := &fakeTransfers{}
	router := newRouter(transfers)

	body := succeededPayload(uuid.New(), `{"food":"50"}`)
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1234567890,v1=invalidsignaturevalue")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.EqualValues(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, transfers.params)
}

func TestWebhookMalformedCategoryTotals(t *testing.T) {
	transfers := &fakeTransfers{}
	router := newRouter(transfers)

	body, sigHeader := signPayload(t, succeededPayload(uuid.New(), `{"food":`))
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", sigHeader)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.EqualValues(t, http.StatusBadRequest, rr.Code)
	resp := map[string]string{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
	assert.Empty(t, transfers.params)
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	transfers := &fakeTransfers{}
	router := newRouter(transfers)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_test",
		"type": "payment_intent.created",
		"api_version": %q,
		"data": {"object": {"id": "pi_test"}}
	}`, stripe.APIVersion))
	body, sigHeader := signPayload(t, payload)
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", sigHeader)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.EqualValues(t, http.StatusOK, rr.Code)
	assert.Empty(t, transfers.params)
}
