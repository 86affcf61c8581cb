// Package api is a typed client for the remote products resource.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	producterrors "github.com/abgdnv/storefront/internal/product/errors"
	"github.com/abgdnv/storefront/internal/product/model"
	"github.com/abgdnv/storefront/pkg/client/httpclient"
)

// ResourcePath is the root of the products resource.
const ResourcePath = "/api/products"

// Envelope is the body shape every products endpoint responds with.
// Success is nil when the server omitted the field.
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Succeeded reports whether the envelope carries success:true.
func (e *Envelope) Succeeded() bool {
	return e.Success != nil && *e.Success
}

// HasData reports whether data is present and not null.
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}

// Products decodes data as a product list. Absent or null data yields an empty list.
func (e *Envelope) Products() ([]model.Product, error) {
	if !e.HasData() {
		return []model.Product{}, nil
	}
	var products []model.Product
	if err := json.Unmarshal(e.Data, &products); err != nil {
		return nil, fmt.Errorf("%w: malformed product list: %w", producterrors.ErrTransport, err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// Product decodes data as a single product.
func (e *Envelope) Product() (model.Product, error) {
	if !e.HasData() {
		return model.Product{}, fmt.Errorf("%w: %w", producterrors.ErrTransport, producterrors.ErrMissingData)
	}
	var p model.Product
	if err := json.Unmarshal(e.Data, &p); err != nil {
		return model.Product{}, fmt.Errorf("%w: malformed product: %w", producterrors.ErrTransport, err)
	}
	return p, nil
}

// Reply is a decoded response together with its HTTP status.
type Reply struct {
	StatusCode int
	OK         bool
	Envelope
}

// Client builds products requests on top of a Fetcher.
type Client struct {
	fetcher httpclient.Fetcher
}

// NewClient creates a new Client that sends requests through fetcher.
func NewClient(fetcher httpclient.Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

// List requests the full collection.
func (c *Client) List(ctx context.Context) (*Reply, error) {
	return c.call(ctx, http.MethodGet, ResourcePath, nil)
}

// Create posts a new product.
func (c *Client) Create(ctx context.Context, p model.Product) (*Reply, error) {
	return c.call(ctx, http.MethodPost, ResourcePath, p)
}

// Update sends a full or partial product to the item path.
func (c *Client) Update(ctx context.Context, id string, payload any) (*Reply, error) {
	return c.call(ctx, http.MethodPut, ItemPath(id), payload)
}

// Delete removes the product with the given id.
func (c *Client) Delete(ctx context.Context, id string) (*Reply, error) {
	return c.call(ctx, http.MethodDelete, ItemPath(id), nil)
}

// ItemPath returns the path of a single product.
func ItemPath(id string) string {
	return ResourcePath + "/" + url.PathEscape(id)
}

// call returns an error only when no decodable response was received. The error wraps ErrTransport.
// A JSON body that is not an object, such as a bare string, yields an empty envelope. A null body is an error.
func (c *Client) call(ctx context.Context, method, path string, body any) (*Reply, error) {
	resp, err := c.fetcher.Fetch(ctx, httpclient.Request{Method: method, Path: path, Body: body})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", producterrors.ErrTransport, err)
	}
	var raw json.RawMessage
	if err := resp.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", producterrors.ErrTransport, method, path, err)
	}
	raw = bytes.TrimSpace(raw)
	if string(raw) == "null" {
		return nil, fmt.Errorf("%w: %s %s: null response body", producterrors.ErrTransport, method, path)
	}
	reply := &Reply{StatusCode: resp.StatusCode, OK: resp.OK()}
	if raw[0] != '{' {
		return reply, nil
	}
	if err := json.Unmarshal(raw, &reply.Envelope); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", producterrors.ErrTransport, method, path, err)
	}
	return reply, nil
}
