package models

// InitiatePaymentRequest is the storefront's request to open a payment
// session.
type InitiatePaymentRequest struct {
	Method                string `json:"method"`
	Amount                string `json:"amount"`
	TaxAmount             string `json:"tax_amount"`
	ProductServiceCharge  string `json:"product_service_charge"`
	ProductDeliveryCharge string `json:"product_delivery_charge"`
	ProductName           string `json:"product_name"`
	OrderID               string `json:"order_id"`
	SuccessURL            string `json:"success_url"`
	FailureURL            string `json:"failure_url"`
}

// VerifyPaymentRequest carries the raw redirect parameters handed back
// by the browser. Data is eSewa's base64 payload; Pidx is Khalti's
// lookup handle.
type VerifyPaymentRequest struct {
	Method string `json:"method"`
	Data   string `json:"data"`
	Pidx   string `json:"pidx"`
}

// StatusCheckRequest asks for an out-of-band transaction status, used
// to resolve PENDING payments or lost redirects.
type StatusCheckRequest struct {
	ProductCode     string `json:"product_code"`
	TotalAmount     string `json:"total_amount"`
	TransactionUUID string `json:"transaction_uuid"`
}
