package khalti

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate/internal/payment"
)

func newTestService(t *testing.T, baseURL string) *Service {
	t.Helper()
	svc, err := New(Config{SecretKey: "test-secret", BaseURL: baseURL}, nil)
	require.NoError(t, err)
	return svc
}

func TestNewRequiresSecretKey(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.ErrorIs(t, err, payment.ErrNotConfigured)
}

func TestInitiatePayment(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"pidx":"bZQLD9wRVWo4CdESSfuSsB","payment_url":"https://test-pay.khalti.com/?pidx=bZQLD9wRVWo4CdESSfuSsB","expires_at":"2026-08-28T10:00:00+05:45"}`)
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)

	result, err := svc.InitiatePayment(context.Background(), payment.InitiateRequest{
		Amount:      "100",
		OrderID:     "ORD-1",
		ProductName: "Starter plan",
		SuccessURL:  "https://shop.example/success",
		FailureURL:  "https://shop.example",
	})
	require.NoError(t, err)

	assert.Equal(t, "Key test-secret", gotAuth)
	assert.Equal(t, "bZQLD9wRVWo4CdESSfuSsB", result.Pidx)
	assert.Equal(t, "https://test-pay.khalti.com/?pidx=bZQLD9wRVWo4CdESSfuSsB", result.PaymentURL)

	// Rupees are scaled to paisa on the wire.
	assert.Equal(t, float64(10000), gotBody["amount"])
	assert.Equal(t, "ORD-1", gotBody["purchase_order_id"])
}

func TestLookupStatusMapping(t *testing.T) {
	cases := []struct {
		status    string
		isSuccess bool
	}{
		{"Completed", true},
		{"Pending", false},
		{"Initiated", false},
		{"Expired", false},
		{"User canceled", false},
		{"Refunded", false},
		{"SomethingElse", false},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"pidx":"p-1","total_amount":10000,"status":%q,"transaction_id":"txn-1","refunded":false}`, tc.status)
			}))
			defer server.Close()

			svc := newTestService(t, server.URL)

			outcome, err := svc.Lookup(context.Background(), "p-1")
			require.NoError(t, err)
			assert.Equal(t, tc.status, outcome.Status)
			assert.Equal(t, tc.isSuccess, outcome.IsSuccess)
			assert.Equal(t, outcome.IsSuccess, outcome.ShouldProvideService)
			assert.NotEmpty(t, outcome.Message)
			assert.Equal(t, "p-1", outcome.TransactionUUID)
			assert.Equal(t, "txn-1", outcome.RefID)
		})
	}
}

func TestLookupRequiresPidx(t *testing.T) {
	svc := newTestService(t, "")
	_, err := svc.Lookup(context.Background(), "")
	assert.Error(t, err)
}

func TestLookupGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail":"Not found.","error_key":"validation_error"}`)
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)

	_, err := svc.Lookup(context.Background(), "missing")
	var gwErr *payment.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusNotFound, gwErr.StatusCode)
	assert.Equal(t, "Not found.", gwErr.Message)
}

func TestLookupTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	svc := newTestService(t, server.URL)

	_, err := svc.Lookup(context.Background(), "p-1")
	var transport *payment.TransportError
	assert.True(t, errors.As(err, &transport))
}

func TestFormatErrorFieldValidation(t *testing.T) {
	msg := formatError([]byte(`{"amount":["Amount should be greater than Rs. 10"],"error_key":"validation_error"}`))
	assert.Equal(t, "amount: Amount should be greater than Rs. 10", msg)
}
