package esewa

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePayload(t *testing.T, payload string) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestDecodeCallbackRoundTrip(t *testing.T) {
	raw := encodePayload(t, `{
		"transaction_code": "000ABC",
		"status": "COMPLETE",
		"total_amount": "100.0",
		"transaction_uuid": "tx-1",
		"product_code": "EPAYTEST",
		"signed_field_names": "total_amount,transaction_uuid,product_code",
		"signature": "abc123"
	}`)

	cb, err := DecodeCallback(raw)
	require.NoError(t, err)

	assert.Equal(t, "000ABC", cb.TransactionCode())
	assert.Equal(t, "COMPLETE", cb.RawStatus())
	assert.Equal(t, "100.0", cb.TotalAmount())
	assert.Equal(t, "tx-1", cb.TransactionUUID())
	assert.Equal(t, "EPAYTEST", cb.ProductCode())
	assert.Equal(t, "abc123", cb.Signature())
	assert.Equal(t, []string{"total_amount", "transaction_uuid", "product_code"}, cb.SignedFieldNames())
}

func TestDecodeCallbackPreservesNumericLiterals(t *testing.T) {
	// 100.0 must stay "100.0", not become "100": the gateway signed the
	// literal text.
	raw := encodePayload(t, `{
		"transaction_code": "000ABC",
		"status": "COMPLETE",
		"total_amount": 100.0,
		"signed_field_names": "total_amount",
		"signature": "x"
	}`)

	cb, err := DecodeCallback(raw)
	require.NoError(t, err)
	assert.Equal(t, "100.0", cb.TotalAmount())
	assert.Equal(t, "total_amount=100.0", cb.SignedPayload())
}

func TestDecodeCallbackEmptyInput(t *testing.T) {
	_, err := DecodeCallback("")
	assert.ErrorIs(t, err, ErrEmptyCallback)

	_, err = DecodeCallback("   ")
	assert.ErrorIs(t, err, ErrEmptyCallback)
}

func TestDecodeCallbackMalformedBase64(t *testing.T) {
	_, err := DecodeCallback("not-base64!!!")
	assert.ErrorIs(t, err, ErrMalformedBase64)
}

func TestDecodeCallbackInvalidJSON(t *testing.T) {
	_, err := DecodeCallback(encodePayload(t, "this is not json"))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestDecodeCallbackMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		field   string
	}{
		{"missing transaction_code", `{"status": "COMPLETE"}`, "transaction_code"},
		{"missing status", `{"transaction_code": "000ABC"}`, "status"},
		{"empty object", `{}`, "transaction_code"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCallback(encodePayload(t, tc.payload))
			var missing *MissingFieldError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tc.field, missing.Field)
		})
	}
}

func TestDecodeCallbackUnpaddedBase64(t *testing.T) {
	payload := `{"transaction_code": "000ABCD", "status": "PENDING"}`
	raw := base64.RawStdEncoding.EncodeToString([]byte(payload))
	require.NotEqual(t, base64.StdEncoding.EncodeToString([]byte(payload)), raw)

	cb, err := DecodeCallback(raw)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", cb.RawStatus())
}

func TestSignedPayloadFollowsFieldOrder(t *testing.T) {
	// The gateway controls field order; the verifier must not impose
	// its own.
	raw := encodePayload(t, `{
		"transaction_code": "000ABC",
		"status": "COMPLETE",
		"total_amount": "100",
		"transaction_uuid": "tx-1",
		"product_code": "EPAYTEST",
		"signed_field_names": "product_code,total_amount,transaction_uuid",
		"signature": "x"
	}`)

	cb, err := DecodeCallback(raw)
	require.NoError(t, err)
	assert.Equal(t, "product_code=EPAYTEST,total_amount=100,transaction_uuid=tx-1", cb.SignedPayload())
}
