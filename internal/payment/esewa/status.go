package esewa

import "paygate/internal/payment"

// Status is the closed set of payment outcomes eSewa reports. Anything
// the gateway sends outside this set collapses to StatusAmbiguous so an
// unrecognized status can never be mistaken for a paid one.
type Status string

const (
	StatusComplete      Status = "COMPLETE"
	StatusPending       Status = "PENDING"
	StatusFullRefund    Status = "FULL_REFUND"
	StatusPartialRefund Status = "PARTIAL_REFUND"
	StatusAmbiguous     Status = "AMBIGUOUS"
	StatusNotFound      Status = "NOT_FOUND"
	StatusCanceled      Status = "CANCELED"
)

// ParseStatus maps a raw gateway status string onto the lattice. Total:
// every input yields exactly one Status.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusComplete:
		return StatusComplete
	case StatusPending:
		return StatusPending
	case StatusFullRefund:
		return StatusFullRefund
	case StatusPartialRefund:
		return StatusPartialRefund
	case StatusAmbiguous:
		return StatusAmbiguous
	case StatusNotFound:
		return StatusNotFound
	case StatusCanceled:
		return StatusCanceled
	default:
		return StatusAmbiguous
	}
}

// Reconcile attaches business consequences to a status. Only COMPLETE
// grants service; every other row is an explicit "no".
func Reconcile(status Status) payment.Outcome {
	out := payment.Outcome{Status: string(status)}

	switch status {
	case StatusComplete:
		out.IsSuccess = true
		out.ShouldProvideService = true
		out.Message = "Payment completed successfully"
	case StatusPending:
		out.Message = "Payment is pending. Please wait or contact support if this persists."
	case StatusFullRefund:
		out.Message = "Payment has been fully refunded."
	case StatusPartialRefund:
		out.Message = "Payment has been partially refunded."
	case StatusAmbiguous:
		out.Message = "Payment is in an ambiguous state. Please contact support."
	case StatusNotFound:
		out.Message = "Payment session expired or not found."
	case StatusCanceled:
		out.Message = "Payment has been canceled."
	default:
		out.Status = string(StatusAmbiguous)
		out.Message = "Payment is in an ambiguous state. Please contact support."
	}

	return out
}
