package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderRequest "github.com/ammasidli/storefront/order/pkg/request"
)

func testOrderInput(userID uuid.UUID) orderRequest.CreateOrder {
	return orderRequest.CreateOrder{
		UserID: userID,
		Products: []orderRequest.Product{
			{Name: "Plain Idli", Price: decimal.RequireFromString("40")},
			{Name: "Filter Coffee", Price: decimal.RequireFromString("25")},
		},
		Status: orderRequest.StatusPending,
		CategoryTotals: map[string]decimal.Decimal{
			"food":     decimal.RequireFromString("40"),
			"beverage": decimal.RequireFromString("25"),
		},
	}
}

func TestRequesterCreateIntentReturnsPayloadVerbatim(t *testing.T) {
	orderID := uuid.New()
	var received map[string]interface{}
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"clientSecret": "pi_test_secret",
				"intentId":     "pi_test",
			})
		}),
	)
	defer server.Close()

	requester := NewRequester(server.URL)
	intent, err := requester.CreateIntent(context.Background(), orderID, testOrderInput(uuid.New()))

	require.NoError(t, err)
	assert.EqualValues(t, map[string]interface{}{
		"clientSecret": "pi_test_secret",
		"intentId":     "pi_test",
	}, intent)

	assert.EqualValues(t, orderID.String(), received["orderId"])
	assert.EqualValues(t, "65", received["amount"])
	assert.EqualValues(
		t,
		map[string]interface{}{"food": "40", "beverage": "25"},
		received["categoryTotals"],
	)
}

func TestRequesterCreateIntentSurfacesErrorBody(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"error": "processor unavailable"})
		}),
	)
	defer server.Close()

	requester := NewRequester(server.URL)
	_, err := requester.CreateIntent(context.Background(), uuid.New(), testOrderInput(uuid.New()))

	require.Error(t, err)
	assert.EqualValues(t, "processor unavailable", err.Error())
}

func TestRequesterCreateIntentFallsBackToGenericMessage(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}),
	)
	defer server.Close()

	requester := NewRequester(server.URL)
	_, err := requester.CreateIntent(context.Background(), uuid.New(), testOrderInput(uuid.New()))

	require.Error(t, err)
	assert.EqualValues(t, fallbackIntentError, err.Error())
}
