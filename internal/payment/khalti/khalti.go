package khalti

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paygate/internal/payment"
	"paygate/internal/pkg/httpclient"
)

const (
	// ProductionBaseURL is Khalti's live ePayment host.
	ProductionBaseURL = "https://khalti.com/api/v2"
	// TestBaseURL is the sandbox host used outside production.
	TestBaseURL = "https://dev.khalti.com/api/v2"
)

// Khalti has no callback signature; the redirect only carries a pidx
// and the lookup API is the single source of truth for its state.

// Config holds the secret key used for the Authorization header.
type Config struct {
	SecretKey string
	// BaseURL overrides the gateway host; defaults to ProductionBaseURL.
	BaseURL string
}

// Service talks to the Khalti ePayment gateway. Immutable after New.
type Service struct {
	baseURL string
	client  *httpclient.Client
	logger  *zap.Logger
}

// New builds a Service from credentials.
func New(cfg Config, logger *zap.Logger) (*Service, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("khalti: secret key is required: %w", payment.ErrNotConfigured)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = ProductionBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		baseURL: baseURL,
		client:  httpclient.New().WithHeader("Authorization", "Key "+cfg.SecretKey),
		logger:  logger,
	}, nil
}

func (s *Service) Name() string {
	return "khalti"
}

func (s *Service) CallbackTrust() payment.Trust {
	return payment.TrustServerLookup
}

type initiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
}

// InitiatePayment opens an ePayment session. Khalti wants the amount in
// paisa, so the rupee amount from the storefront is scaled by 100.
func (s *Service) InitiatePayment(ctx context.Context, req payment.InitiateRequest) (*payment.InitiateResult, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, fmt.Errorf("khalti: valid amount is required")
	}

	body := map[string]interface{}{
		"return_url":          req.SuccessURL,
		"website_url":         req.FailureURL,
		"amount":              amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"purchase_order_id":   req.OrderID,
		"purchase_order_name": req.ProductName,
	}

	resp, err := s.client.Post(ctx, s.baseURL+"/epayment/initiate/", body)
	if err != nil {
		return nil, &payment.TransportError{Gateway: "khalti", Err: err}
	}
	if !resp.OK() {
		return nil, &payment.GatewayError{Gateway: "khalti", StatusCode: resp.StatusCode, Message: formatError(resp.Body)}
	}

	var parsed initiateResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil || parsed.Pidx == "" {
		return nil, &payment.GatewayError{Gateway: "khalti", StatusCode: resp.StatusCode, Message: "unreadable initiate response"}
	}

	s.logger.Info("khalti payment session created",
		zap.String("pidx", parsed.Pidx),
		zap.String("order_id", req.OrderID))

	return &payment.InitiateResult{
		PaymentURL: parsed.PaymentURL,
		Pidx:       parsed.Pidx,
	}, nil
}

type lookupResponse struct {
	Pidx          string      `json:"pidx"`
	TotalAmount   json.Number `json:"total_amount"`
	Status        string      `json:"status"`
	TransactionID string      `json:"transaction_id"`
	Refunded      bool        `json:"refunded"`
}

// Lookup fetches a payment's authoritative state by pidx and maps it
// onto the shared outcome shape. Only "Completed" grants service.
func (s *Service) Lookup(ctx context.Context, pidx string) (*payment.Outcome, error) {
	if pidx == "" {
		return nil, fmt.Errorf("khalti: pidx is required")
	}

	resp, err := s.client.Post(ctx, s.baseURL+"/epayment/lookup/", map[string]string{"pidx": pidx})
	if err != nil {
		return nil, &payment.TransportError{Gateway: "khalti", Err: err}
	}
	if !resp.OK() {
		return nil, &payment.GatewayError{Gateway: "khalti", StatusCode: resp.StatusCode, Message: formatError(resp.Body)}
	}

	var parsed lookupResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, &payment.GatewayError{Gateway: "khalti", StatusCode: resp.StatusCode, Message: "unreadable lookup response"}
	}

	outcome := reconcile(parsed.Status)
	outcome.TransactionUUID = parsed.Pidx
	outcome.TotalAmount = parsed.TotalAmount.String()
	outcome.RefID = parsed.TransactionID
	outcome.TransactionCode = parsed.TransactionID

	s.logger.Info("khalti lookup",
		zap.String("pidx", pidx),
		zap.String("status", outcome.Status))

	return &outcome, nil
}

// reconcile maps Khalti's status strings onto the shared outcome. The
// set differs from eSewa's, but the policy is the same: anything that
// is not a confirmed completion denies service.
func reconcile(status string) payment.Outcome {
	out := payment.Outcome{Status: status}

	switch status {
	case "Completed":
		out.IsSuccess = true
		out.ShouldProvideService = true
		out.Message = "Payment completed successfully"
	case "Pending":
		out.Message = "Payment is pending. Please contact support if this persists."
	case "Initiated":
		out.Message = "Payment has been initiated but not completed."
	case "Expired":
		out.Message = "Payment link has expired. Please try again."
	case "User canceled":
		out.Message = "Payment was canceled by user."
	case "Refunded":
		out.Message = "Payment has been refunded."
	default:
		out.Message = "Unknown payment status. Please contact support."
	}

	return out
}

// formatError extracts a readable message from Khalti's error bodies,
// which are either {"detail": "..."} or per-field validation maps.
func formatError(body []byte) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed) == 0 {
		return ""
	}

	if detail, ok := parsed["detail"]; ok {
		return flatten(detail)
	}

	var parts []string
	for field, messages := range parsed {
		if field == "error_key" || field == "status_code" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ReplaceAll(field, "_", " "), flatten(messages)))
	}
	return strings.Join(parts, "; ")
}

func flatten(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, flatten(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}
