package esewa

import (
	"errors"
	"fmt"
)

// Decode errors. These mean the redirect payload itself was broken or
// tampered with in transit; none of them are retryable.
var (
	ErrEmptyCallback   = errors.New("esewa: empty callback payload")
	ErrMalformedBase64 = errors.New("esewa: callback payload is not valid base64")
	ErrInvalidJSON     = errors.New("esewa: callback payload is not valid JSON")
)

// MissingFieldError names the required callback field that was absent.
// The field name is for logs and support tooling only; handlers must
// not echo it back to end users.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("esewa: callback is missing required field %q", e.Field)
}

// SignatureMismatchError is the hard verification failure. Expected,
// Received and SignedPayload exist for server-side diagnostics; any
// user-facing message must stay generic so the error is not an oracle
// for forging signatures.
type SignatureMismatchError struct {
	Expected      string
	Received      string
	SignedPayload string
}

func (e *SignatureMismatchError) Error() string {
	return "esewa: signature mismatch, payment verification failed"
}
