package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/product/apitest"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		API: pkgconfig.APIClientConfig{BaseURL: baseURL, Timeout: 2 * time.Second},
		CircuitBreaker: pkgconfig.CircuitBreakerConfig{
			ConsecutiveFailures: 3,
			ErrorRatePercent:    50,
			MaxRequests:         1,
			OpenTimeout:         time.Second,
		},
		Log:      pkgconfig.LogConfig{Level: "error"},
		Shutdown: pkgconfig.ShutdownConfig{Timeout: time.Second},
	}
}

func TestSetupDependencies(t *testing.T) {
	// given
	srv := apitest.NewServer(t)
	srv.Seed(apitest.Document{"name": "Desk", "image": "desk.png", "price": 120})
	deps, err := SetupDependencies(testConfig(srv.URL), bootstrap.NewLoggerTo(io.Discard, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close(context.Background()) })

	// when
	result := deps.Store.FetchProducts(context.Background())

	// then
	require.True(t, result.Success, result.Message)
	assert.Len(t, deps.Store.Products(), 1)
	assert.Nil(t, deps.Bridge)
}

func TestSetupMetricsHandler(t *testing.T) {
	// given
	srv := apitest.NewServer(t)
	srv.Seed(
		apitest.Document{"name": "Desk", "image": "desk.png", "price": 120},
		apitest.Document{"name": "Lamp", "image": "lamp.png", "price": 30},
	)
	deps, err := SetupDependencies(testConfig(srv.URL), bootstrap.NewLoggerTo(io.Discard, "error"))
	require.NoError(t, err)
	require.True(t, deps.Store.FetchProducts(context.Background()).Success)
	handler := SetupMetricsHandler(deps)

	testCases := []struct {
		name     string
		path     string
		contains []string
	}{
		{name: "metrics", path: "/metrics", contains: []string{"storefront_products 2", `storefront_store_changes_total{op="fetch"} 1`}},
		{name: "healthz", path: "/healthz", contains: []string{`"status":"ok"`, `"products":2`}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))

			// then
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
			for _, s := range tc.contains {
				assert.Contains(t, rr.Body.String(), s)
			}
		})
	}
}

func TestSetupDependencies_NATSUnreachable(t *testing.T) {
	// given
	cfg := testConfig("http://localhost:5000")
	cfg.NATS = pkgconfig.NATSConfig{Enabled: true, Url: "nats://127.0.0.1:1", Timeout: 100 * time.Millisecond}

	// when
	deps, err := SetupDependencies(cfg, bootstrap.NewLoggerTo(io.Discard, "error"))

	// then
	assert.Error(t, err)
	assert.Nil(t, deps)
}
