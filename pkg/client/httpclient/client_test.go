package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	cfg := config.APIClientConfig{BaseURL: srv.URL + "/", Timeout: time.Second}
	opts = append([]Option{WithHTTPClient(srv.Client())}, opts...)
	return New(cfg, discardLogger(), opts...)
}

func TestClient_Fetch_SendsJSON(t *testing.T) {
	// given
	var gotMethod, gotPath, gotContentType, gotReqID string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotReqID = r.Header.Get(web.RequestIDHeader)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"1"}}`))
	}))
	defer srv.Close()
	client := newTestClient(t, srv)

	// when
	resp, err := client.Fetch(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/products",
		Body:   map[string]any{"name": "Lamp"},
	})

	// then
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, resp.OK())
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/products", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, "Lamp", gotBody["name"])

	var envelope struct {
		Success bool `json:"success"`
	}
	require.NoError(t, resp.Decode(&envelope))
	assert.True(t, envelope.Success)
}

func TestClient_Fetch_PropagatesRequestID(t *testing.T) {
	var gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReqID = r.Header.Get(web.RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	client := newTestClient(t, srv)

	_, err := client.Fetch(web.WithRequestID(context.Background(), "req-7"), Request{Method: http.MethodGet, Path: "/api/products"})

	require.NoError(t, err)
	assert.Equal(t, "req-7", gotReqID)
}

func TestClient_Fetch_ErrorStatusIsNotAnError(t *testing.T) {
	testCases := []struct {
		name   string
		status int
	}{
		{name: "not found", status: http.StatusNotFound},
		{name: "server error", status: http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"success":false,"message":"boom"}`))
			}))
			defer srv.Close()
			cbCfg := config.CircuitBreakerConfig{ConsecutiveFailures: 5, ErrorRatePercent: 100, MaxRequests: 1, OpenTimeout: time.Minute}
			client := newTestClient(t, srv, WithCircuitBreaker(cbCfg))

			// when
			resp, err := client.Fetch(context.Background(), Request{Method: http.MethodGet, Path: "/api/products"})

			// then
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.False(t, resp.OK())
			assert.JSONEq(t, `{"success":false,"message":"boom"}`, string(resp.Body))
		})
	}
}

func TestClient_Fetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, srv)
	srv.Close()

	resp, err := client.Fetch(context.Background(), Request{Method: http.MethodGet, Path: "/api/products"})

	require.Error(t, err)
	assert.Nil(t, resp)
}

func TestClient_Fetch_CircuitBreakerOpens(t *testing.T) {
	// given
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	cbCfg := config.CircuitBreakerConfig{ConsecutiveFailures: 3, ErrorRatePercent: 100, MaxRequests: 1, OpenTimeout: time.Minute}
	client := newTestClient(t, srv, WithCircuitBreaker(cbCfg))

	// when: three 5xx responses trip the breaker
	for i := 0; i < 3; i++ {
		resp, err := client.Fetch(context.Background(), Request{Method: http.MethodGet, Path: "/api/products"})
		require.NoError(t, err)
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	}

	// then: the fourth call is rejected without reaching the server
	resp, err := client.Fetch(context.Background(), Request{Method: http.MethodGet, Path: "/api/products"})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Nil(t, resp)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Fetch_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	cbCfg := config.CircuitBreakerConfig{ConsecutiveFailures: 2, ErrorRatePercent: 50, MaxRequests: 1, OpenTimeout: time.Minute}
	client := newTestClient(t, srv, WithCircuitBreaker(cbCfg))

	for i := 0; i < 5; i++ {
		_, err := client.Fetch(context.Background(), Request{Method: http.MethodDelete, Path: "/api/products/x"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestResponse_Decode_Invalid(t *testing.T) {
	resp := &Response{StatusCode: http.StatusOK, Body: []byte("<html>")}
	var v map[string]any
	assert.Error(t, resp.Decode(&v))
}

func TestFetcherFunc(t *testing.T) {
	var got Request
	f := FetcherFunc(func(_ context.Context, req Request) (*Response, error) {
		got = req
		return &Response{StatusCode: http.StatusOK}, nil
	})

	resp, err := f.Fetch(context.Background(), Request{Method: http.MethodGet, Path: "/x"})

	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "/x", got.Path)
}
