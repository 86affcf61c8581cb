// Package httpclient provides the fetch-style HTTP abstraction the product store talks through,
// and a default implementation on net/http guarded by a circuit breaker.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Request is a single JSON call against the products API.
// Path is relative to the client's base URL. A nil Body sends no payload.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   any
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body (status %d): %w", r.StatusCode, err)
	}
	return nil
}

// Fetcher performs requests. An error means the request/response cycle did not complete;
// any HTTP status, including 4xx and 5xx, is reported through the Response.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req Request) (*Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
