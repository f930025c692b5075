package esewa

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paygate/internal/payment"
	"paygate/internal/pkg/httpclient"
)

const (
	// ProductionBaseURL is eSewa's live ePay host.
	ProductionBaseURL = "https://epay.esewa.com.np/api/epay"
	// TestBaseURL is the rc (release-candidate) host used outside production.
	TestBaseURL = "https://rc-epay.esewa.com.np/api/epay"

	// initiateSignedFields is the field list this service signs when it
	// creates a session. Verification never assumes this list: the
	// callback's own signed_field_names wins there.
	initiateSignedFields = "total_amount,transaction_uuid,product_code"
)

// minimumAmount is the smallest charge eSewa will accept, in rupees.
var minimumAmount = decimal.NewFromInt(10)

// Config holds the merchant credentials. Both fields are required; the
// zero value is unusable on purpose so a Service can never exist
// half-configured.
type Config struct {
	MerchantCode string
	SecretKey    string
	// BaseURL overrides the gateway host; defaults to ProductionBaseURL.
	BaseURL string
}

// Service talks to the eSewa ePay gateway. Immutable after New, safe
// for concurrent use.
type Service struct {
	merchantCode string
	secretKey    []byte
	baseURL      string
	client       *httpclient.Client
	logger       *zap.Logger
}

// New builds a Service from credentials. Missing credentials are an
// operator error reported immediately, not at first use.
func New(cfg Config, logger *zap.Logger) (*Service, error) {
	if cfg.MerchantCode == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("esewa: merchant code and secret key are required: %w", payment.ErrNotConfigured)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = ProductionBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		merchantCode: cfg.MerchantCode,
		secretKey:    []byte(cfg.SecretKey),
		baseURL:      baseURL,
		client:       httpclient.New(),
		logger:       logger,
	}, nil
}

func (s *Service) Name() string {
	return "esewa"
}

func (s *Service) CallbackTrust() payment.Trust {
	return payment.TrustSignedCallback
}

// Sign computes Base64(HMAC-SHA256(secretKey, message)). Deterministic:
// same key and message always produce the same signature.
func (s *Service) Sign(message string) string {
	return base64.StdEncoding.EncodeToString(s.signRaw(message))
}

func (s *Service) signRaw(message string) []byte {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(message))
	return mac.Sum(nil)
}

// InitiatePayment builds a signed ePay form session. The browser posts
// the returned fields to PaymentURL; no gateway call happens here.
func (s *Service) InitiatePayment(_ context.Context, req payment.InitiateRequest) (*payment.InitiateResult, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, fmt.Errorf("esewa: valid amount is required")
	}
	if amount.LessThan(minimumAmount) {
		return nil, fmt.Errorf("esewa: amount should be at least Rs. %s", minimumAmount)
	}

	total := amount
	for _, extra := range []string{req.TaxAmount, req.ProductServiceCharge, req.ProductDeliveryCharge} {
		if extra == "" {
			continue
		}
		d, err := decimal.NewFromString(extra)
		if err != nil || d.IsNegative() {
			return nil, fmt.Errorf("esewa: invalid charge amount %q", extra)
		}
		total = total.Add(d)
	}

	transactionUUID := uuid.New().String()
	totalAmount := total.String()

	signedPayload := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s",
		totalAmount, transactionUUID, s.merchantCode)

	fields := map[string]string{
		"amount":                  amount.String(),
		"tax_amount":              orZero(req.TaxAmount),
		"total_amount":            totalAmount,
		"transaction_uuid":        transactionUUID,
		"product_code":            s.merchantCode,
		"product_service_charge":  orZero(req.ProductServiceCharge),
		"product_delivery_charge": orZero(req.ProductDeliveryCharge),
		"success_url":             req.SuccessURL,
		"failure_url":             req.FailureURL,
		"signed_field_names":      initiateSignedFields,
		"signature":               s.Sign(signedPayload),
	}

	s.logger.Info("esewa payment session created",
		zap.String("transaction_uuid", transactionUUID),
		zap.String("total_amount", totalAmount))

	return &payment.InitiateResult{
		PaymentURL:      s.baseURL + "/main/v2/form",
		TransactionUUID: transactionUUID,
		FormFields:      fields,
	}, nil
}

func orZero(v string) string {
	if v == "" {
		return "0"
	}
	return v
}

// VerifyCallback authenticates a browser-relayed redirect payload and
// reconciles its status. This is the trust boundary: the decoded status
// is advisory until the signature matches, and nothing downstream may
// act on an unverified callback.
func (s *Service) VerifyCallback(raw string) (*payment.Outcome, error) {
	cb, err := DecodeCallback(raw)
	if err != nil {
		return nil, err
	}

	if len(cb.SignedFieldNames()) == 0 {
		return nil, &MissingFieldError{Field: "signed_field_names"}
	}
	if cb.Signature() == "" {
		return nil, &MissingFieldError{Field: "signature"}
	}

	signedPayload := cb.SignedPayload()
	expected := s.signRaw(signedPayload)
	received, decodeErr := base64.StdEncoding.DecodeString(cb.Signature())

	if decodeErr != nil || !hmac.Equal(expected, received) {
		s.logger.Warn("esewa signature mismatch",
			zap.String("transaction_uuid", cb.TransactionUUID()),
			zap.String("transaction_code", cb.TransactionCode()))
		return nil, &SignatureMismatchError{
			Expected:      base64.StdEncoding.EncodeToString(expected),
			Received:      cb.Signature(),
			SignedPayload: signedPayload,
		}
	}

	outcome := Reconcile(ParseStatus(cb.RawStatus()))
	outcome.TransactionCode = cb.TransactionCode()
	outcome.TransactionUUID = cb.TransactionUUID()
	outcome.TotalAmount = cb.TotalAmount()
	outcome.ProductCode = cb.ProductCode()
	outcome.RefID = cb.TransactionCode()

	s.logger.Info("esewa callback verified",
		zap.String("transaction_uuid", outcome.TransactionUUID),
		zap.String("status", outcome.Status),
		zap.Bool("is_success", outcome.IsSuccess))

	return &outcome, nil
}

// statusResponse is the transaction status endpoint's reply. A gateway
// that cannot answer sends {"error_message": "..."} instead of a status.
type statusResponse struct {
	ProductCode     string      `json:"product_code"`
	TransactionUUID string      `json:"transaction_uuid"`
	TotalAmount     json.Number `json:"total_amount"`
	Status          string      `json:"status"`
	RefID           string      `json:"ref_id"`
	ErrorMessage    string      `json:"error_message"`
}

// CheckStatus asks the gateway directly for a transaction's state, for
// resolving PENDING payments or lost redirects. The response rides a
// first-party channel, so no signature check applies here; only the
// browser-relayed callback needs one.
func (s *Service) CheckStatus(ctx context.Context, productCode, totalAmount, transactionUUID string) (*payment.Outcome, error) {
	if totalAmount == "" || transactionUUID == "" {
		return nil, fmt.Errorf("esewa: total amount and transaction uuid are required")
	}
	if productCode == "" {
		productCode = s.merchantCode
	}

	resp, err := s.client.Get(ctx, s.baseURL+"/transaction/status/", map[string]string{
		"product_code":     productCode,
		"total_amount":     totalAmount,
		"transaction_uuid": transactionUUID,
	})
	if err != nil {
		return nil, &payment.TransportError{Gateway: "esewa", Err: err}
	}
	if !resp.OK() {
		return nil, &payment.GatewayError{Gateway: "esewa", StatusCode: resp.StatusCode}
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	var body statusResponse
	if err := dec.Decode(&body); err != nil {
		return nil, &payment.GatewayError{Gateway: "esewa", StatusCode: resp.StatusCode, Message: "unreadable status response"}
	}
	if body.ErrorMessage != "" {
		return nil, &payment.GatewayError{Gateway: "esewa", StatusCode: resp.StatusCode, Message: body.ErrorMessage}
	}

	outcome := Reconcile(ParseStatus(body.Status))
	outcome.TransactionUUID = body.TransactionUUID
	outcome.TotalAmount = body.TotalAmount.String()
	outcome.ProductCode = body.ProductCode
	outcome.RefID = body.RefID

	s.logger.Info("esewa status check",
		zap.String("transaction_uuid", transactionUUID),
		zap.String("status", outcome.Status))

	return &outcome, nil
}
