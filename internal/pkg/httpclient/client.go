package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds every outbound gateway call. Timeouts surface
// as transport errors, not payment errors, and are safe to retry from
// the caller's side.
const DefaultTimeout = 10 * time.Second

// Client wraps resty for calls to payment gateways. No automatic
// retries: whether to re-poll a transaction is a caller decision.
type Client struct {
	r *resty.Client
}

// New creates a client with the default timeout.
func New() *Client {
	return &Client{r: resty.New().SetTimeout(DefaultTimeout)}
}

// WithTimeout sets a custom timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.r.SetTimeout(d)
	return c
}

// WithHeader sets a header on every request.
func (c *Client) WithHeader(key, value string) *Client {
	c.r.SetHeader(key, value)
	return c
}

// WithBaseURL sets a base URL for relative request paths.
func (c *Client) WithBaseURL(url string) *Client {
	c.r.SetBaseURL(url)
	return c
}

// Response carries the status code alongside the body so callers can
// classify non-2xx replies without losing the payload.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Get sends a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, url string, query map[string]string) (*Response, error) {
	req := c.r.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, url string, body interface{}) (*Response, error) {
	req := c.r.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(url)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}
