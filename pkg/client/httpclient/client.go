package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 10 << 20

// errServerStatus marks 5xx responses so the breaker counts them; it never leaves this package.
var errServerStatus = errors.New("server error status")

var _ Fetcher = (*Client)(nil)

// Client is the default Fetcher. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*Response]
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (tests use httptest.Server.Client()).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCircuitBreaker guards every call with a circuit breaker configured by cfg.
func WithCircuitBreaker(cfg config.CircuitBreakerConfig) Option {
	return func(c *Client) {
		c.breaker = NewCircuitBreaker(cfg, c.logger)
	}
}

// New creates a Client for the API at cfg.BaseURL.
func New(cfg config.APIClientConfig, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With("component", "httpclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewCircuitBreaker creates a breaker that trips on transport failures and 5xx responses.
// Client-side cancellation and 4xx responses are not counted as failures.
func NewCircuitBreaker(cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[*Response] {
	st := gobreaker.Settings{
		Name:        "products-api-cb",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[*Response](st)
}

// Fetch sends req and reads the whole response body.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	reqID, ok := web.GetRequestID(ctx)
	if !ok {
		reqID = uuid.NewString()
		ctx = web.WithRequestID(ctx, reqID)
	}

	if c.breaker == nil {
		return c.do(ctx, reqID, req)
	}
	resp, err := c.breaker.Execute(func() (*Response, error) {
		resp, err := c.do(ctx, reqID, req)
		if err == nil && resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, err
	})
	if errors.Is(err, errServerStatus) {
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, reqID string, req Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(web.RequestIDHeader, reqID)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	c.logger.DebugContext(ctx, "API request completed",
		"method", req.Method,
		"path", req.Path,
		"status", httpResp.StatusCode,
		"duration_ms", float64(time.Since(start).Nanoseconds())/1e6,
	)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}
