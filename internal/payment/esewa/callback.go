package esewa

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
)

// Callback is the decoded redirect payload eSewa appends to the success
// URL. Field values are kept exactly as they appeared in the JSON
// (numbers keep their literal text) because the signature was computed
// over those raw representations.
type Callback struct {
	fields map[string]string
}

// DecodeCallback turns the base64 `data` query parameter into a
// validated Callback. Pure function: base64 decode, JSON parse, then
// cheap required-field checks before any signature work.
func DecodeCallback(raw string) (*Callback, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyCallback
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		// eSewa occasionally URL-encodes the padding away.
		decoded, err = base64.RawStdEncoding.DecodeString(raw)
		if err != nil {
			return nil, ErrMalformedBase64
		}
	}

	dec := json.NewDecoder(bytes.NewReader(decoded))
	dec.UseNumber()

	var parsed map[string]interface{}
	if err := dec.Decode(&parsed); err != nil {
		return nil, ErrInvalidJSON
	}

	fields := make(map[string]string, len(parsed))
	for k, v := range parsed {
		fields[k] = rawValue(v)
	}

	cb := &Callback{fields: fields}
	for _, required := range []string{"transaction_code", "status"} {
		if cb.fields[required] == "" {
			return nil, &MissingFieldError{Field: required}
		}
	}

	return cb, nil
}

// rawValue renders a decoded JSON value the way it appeared on the
// wire. json.Number preserves the literal, so "100.0" stays "100.0"
// and never becomes "100".
func rawValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Field returns the raw value of a callback field, "" when absent.
func (c *Callback) Field(name string) string {
	return c.fields[name]
}

func (c *Callback) TransactionCode() string { return c.fields["transaction_code"] }
func (c *Callback) RawStatus() string       { return c.fields["status"] }
func (c *Callback) TransactionUUID() string { return c.fields["transaction_uuid"] }
func (c *Callback) TotalAmount() string     { return c.fields["total_amount"] }
func (c *Callback) ProductCode() string     { return c.fields["product_code"] }
func (c *Callback) Signature() string       { return c.fields["signature"] }

// SignedFieldNames returns the gateway-supplied ordered list of fields
// covered by the signature. The gateway, not this code, owns the
// canonical ordering.
func (c *Callback) SignedFieldNames() []string {
	raw := c.fields["signed_field_names"]
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// SignedPayload builds the canonical "field=value,..." string in the
// exact order signed_field_names dictates.
func (c *Callback) SignedPayload() string {
	names := c.SignedFieldNames()
	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+c.fields[name])
	}
	return strings.Join(pairs, ",")
}
