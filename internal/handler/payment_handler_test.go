package handler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paygate/internal/middleware"
	"paygate/internal/models"
	"paygate/internal/payment"
	"paygate/internal/payment/esewa"
)

const (
	testMerchantCode = "EPAYTEST"
	testSecretKey    = "8gBm/:&EnhH.1/q"
)

type fakeGatewaySource struct {
	gateways map[string]*models.Gateway
}

func (f *fakeGatewaySource) Resolve(site, paymentType string) (*models.Gateway, error) {
	gw, ok := f.gateways[site+"|"+paymentType]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return gw, nil
}

type fakeLedger struct {
	created  []*models.Transaction
	statuses map[string]string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{statuses: make(map[string]string)}
}

func (f *fakeLedger) Create(tx *models.Transaction) error {
	f.created = append(f.created, tx)
	return nil
}

func (f *fakeLedger) FindByUUID(uuid string) (*models.Transaction, error) {
	return &models.Transaction{TransactionUUID: uuid, Status: f.statuses[uuid]}, nil
}

func (f *fakeLedger) UpdateStatus(uuid, status, refID string) error {
	f.statuses[uuid] = status
	return nil
}

type countingNotifier struct {
	verified int
}

func (n *countingNotifier) PaymentVerified(*models.Transaction, *payment.Outcome) { n.verified++ }
func (n *countingNotifier) DailySummary(map[string]int64)                         {}

func newTestHandler(t *testing.T) (*PaymentHandler, *fakeLedger, *countingNotifier) {
	t.Helper()

	source := &fakeGatewaySource{gateways: map[string]*models.Gateway{
		"default|esewa": {
			Site:         "default",
			PaymentType:  "esewa",
			MerchantCode: testMerchantCode,
			SecretKey:    testSecretKey,
			IsEnabled:    true,
		},
	}}
	ledger := newFakeLedger()
	notifier := &countingNotifier{}
	deduper, err := middleware.NewCallbackDeduper("", "", 0, time.Minute)
	require.NoError(t, err)

	h := NewPaymentHandler(source, ledger, deduper, notifier, zap.NewNop(), "", "")
	return h, ledger, notifier
}

func postJSON(t *testing.T, h echo.HandlerFunc, path string, body interface{}) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(raw)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	var envelope models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

// signedCallback builds a base64 eSewa payload signed with the test key.
func signedCallback(t *testing.T, overrides map[string]string) string {
	t.Helper()

	svc, err := esewa.New(esewa.Config{MerchantCode: testMerchantCode, SecretKey: testSecretKey}, nil)
	require.NoError(t, err)

	fields := map[string]string{
		"transaction_code":   "000ABC",
		"status":             "COMPLETE",
		"total_amount":       "100.0",
		"transaction_uuid":   "tx-1",
		"product_code":       testMerchantCode,
		"signed_field_names": "total_amount,transaction_uuid,product_code",
	}
	fields["signature"] = svc.Sign(fmt.Sprintf(
		"total_amount=%s,transaction_uuid=%s,product_code=%s",
		fields["total_amount"], fields["transaction_uuid"], fields["product_code"],
	))
	for k, v := range overrides {
		fields[k] = v
	}

	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestVerifyEsewaHappyPath(t *testing.T) {
	h, ledger, notifier := newTestHandler(t)

	rec, envelope := postJSON(t, h.Verify, "/api/payments/verify", models.VerifyPaymentRequest{
		Method: "esewa",
		Data:   signedCallback(t, nil),
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var outcome payment.Outcome
	require.NoError(t, json.Unmarshal(data, &outcome))

	assert.Equal(t, "COMPLETE", outcome.Status)
	assert.True(t, outcome.IsSuccess)
	assert.True(t, outcome.ShouldProvideService)

	assert.Equal(t, "COMPLETE", ledger.statuses["tx-1"])
	assert.Equal(t, 1, notifier.verified)
}

func TestVerifyEsewaForgedSignature(t *testing.T) {
	h, ledger, notifier := newTestHandler(t)

	rec, envelope := postJSON(t, h.Verify, "/api/payments/verify", models.VerifyPaymentRequest{
		Method: "esewa",
		Data:   signedCallback(t, map[string]string{"signature": "forged"}),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Error, "Invalid signature")

	// No ledger update, no report, and no oracle material in the body:
	// the expected signature and signed payload stay in the logs.
	assert.Empty(t, ledger.statuses)
	assert.Zero(t, notifier.verified)
	assert.NotContains(t, rec.Body.String(), "total_amount=")
	assert.NotContains(t, rec.Body.String(), "expected")
}

func TestVerifyEsewaReplayedCallbackReportsOnce(t *testing.T) {
	h, _, notifier := newTestHandler(t)

	for i := 0; i < 2; i++ {
		rec, envelope := postJSON(t, h.Verify, "/api/payments/verify", models.VerifyPaymentRequest{
			Method: "esewa",
			Data:   signedCallback(t, nil),
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, envelope.Success)
	}

	assert.Equal(t, 1, notifier.verified)
}

func TestVerifyUnconfiguredGateway(t *testing.T) {
	h, _, _ := newTestHandler(t)

	e := echo.New()
	body := `{"method":"esewa","data":"` + signedCallback(t, nil) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/verify", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Site", "unknown-site")
	rec := httptest.NewRecorder()
	require.NoError(t, h.Verify(e.NewContext(req, rec)))

	var envelope models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	// Ops misconfiguration, distinguishable from a payment failure.
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Error, "not configured")
}

func TestVerifyValidationErrors(t *testing.T) {
	h, _, _ := newTestHandler(t)

	_, envelope := postJSON(t, h.Verify, "/api/payments/verify", models.VerifyPaymentRequest{
		Method: "paypal",
	})
	assert.False(t, envelope.Success)

	_, envelope = postJSON(t, h.Verify, "/api/payments/verify", models.VerifyPaymentRequest{
		Method: "esewa",
	})
	assert.False(t, envelope.Success)

	_, envelope = postJSON(t, h.Verify, "/api/payments/verify", models.VerifyPaymentRequest{
		Method: "khalti",
	})
	assert.False(t, envelope.Success)
}

func TestVerifyEsewaMalformedPayload(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec, envelope := postJSON(t, h.Verify, "/api/payments/verify", models.VerifyPaymentRequest{
		Method: "esewa",
		Data:   "%%%not-base64%%%",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Error, "Invalid payment response")
}

func TestInitiateEsewaRecordsTransaction(t *testing.T) {
	h, ledger, _ := newTestHandler(t)

	rec, envelope := postJSON(t, h.Initiate, "/api/payments/initiate", models.InitiatePaymentRequest{
		Method:      "esewa",
		Amount:      "100",
		ProductName: "Starter plan",
		SuccessURL:  "https://shop.example/success",
		FailureURL:  "https://shop.example/failure",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
	require.Len(t, ledger.created, 1)

	tx := ledger.created[0]
	assert.Equal(t, "esewa", tx.Method)
	assert.Equal(t, models.TxStatusInitiated, tx.Status)
	assert.NotEmpty(t, tx.TransactionUUID)
	assert.NotEmpty(t, tx.OrderID)
	assert.Equal(t, "100", tx.TotalAmount)
}

func TestStatusRequiresIdentifiers(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec, envelope := postJSON(t, h.Status, "/api/payments/status", models.StatusCheckRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
}
