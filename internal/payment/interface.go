package payment

import "context"

// Trust describes how much a provider's callback channel can be trusted
// before any server-side work happens. Browser-relayed redirects are
// attacker-reachable and must carry their own proof of origin; direct
// API responses are a first-party channel.
type Trust int

const (
	// TrustSignedCallback means the redirect payload is HMAC-signed and
	// must be verified before its contents are believed.
	TrustSignedCallback Trust = iota

	// TrustServerLookup means the callback carries no signature and only
	// a server-to-server lookup is authoritative.
	TrustServerLookup
)

// InitiateRequest carries the fields needed to open a payment session.
type InitiateRequest struct {
	Amount                string `json:"amount"`
	TaxAmount             string `json:"tax_amount,omitempty"`
	ProductServiceCharge  string `json:"product_service_charge,omitempty"`
	ProductDeliveryCharge string `json:"product_delivery_charge,omitempty"`
	ProductName           string `json:"product_name"`
	OrderID               string `json:"order_id"`
	SuccessURL            string `json:"success_url"`
	FailureURL            string `json:"failure_url"`
}

// InitiateResult is what the storefront needs to redirect the customer.
type InitiateResult struct {
	PaymentURL      string            `json:"payment_url"`
	TransactionUUID string            `json:"transaction_uuid,omitempty"`
	Pidx            string            `json:"pidx,omitempty"`
	FormFields      map[string]string `json:"form_fields,omitempty"`
}

// Outcome is the reconciled result of a verification or status lookup.
// ShouldProvideService is the only field fulfillment code may consult;
// it is kept equal to IsSuccess on purpose (no status grants partial
// service) and must stay that way unless business rules change.
type Outcome struct {
	Status               string `json:"status"`
	TransactionCode      string `json:"transaction_code,omitempty"`
	TransactionUUID      string `json:"transaction_uuid,omitempty"`
	TotalAmount          string `json:"total_amount,omitempty"`
	ProductCode          string `json:"product_code,omitempty"`
	RefID                string `json:"ref_id,omitempty"`
	IsSuccess            bool   `json:"is_success"`
	ShouldProvideService bool   `json:"should_provide_service"`
	Message              string `json:"message"`
}

// Provider is implemented by each payment gateway integration.
type Provider interface {
	// Name returns the gateway identifier ("esewa", "khalti").
	Name() string

	// CallbackTrust reports how this provider's redirect callback must
	// be treated.
	CallbackTrust() Trust

	// InitiatePayment opens a new payment session with the gateway.
	InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
}
