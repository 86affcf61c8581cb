// Package app wires the storefront client together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/product/api"
	"github.com/abgdnv/storefront/internal/product/notify"
	"github.com/abgdnv/storefront/internal/product/store"
	"github.com/abgdnv/storefront/pkg/client/httpclient"
	"github.com/abgdnv/storefront/pkg/nats"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Dependencies struct {
	Store    *store.Store
	Metrics  *notify.Metrics
	Registry *prometheus.Registry
	Bridge   *notify.Bridge
	Logger   *slog.Logger

	closers []func(ctx context.Context) error
}

// SetupDependencies builds the store and subscribes the configured listeners.
// The NATS bridge is only connected when cfg.NATS.Enabled is set.
func SetupDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	fetcher := httpclient.New(cfg.API, logger, httpclient.WithCircuitBreaker(cfg.CircuitBreaker))
	productStore := store.New(api.NewClient(fetcher), logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := notify.NewMetrics(registry, func() int { return len(productStore.Products()) })

	deps := &Dependencies{
		Store:    productStore,
		Metrics:  metrics,
		Registry: registry,
		Logger:   logger,
	}
	productStore.Subscribe(notify.LogListener(logger))
	productStore.Subscribe(metrics.Handle)

	if cfg.NATS.Enabled {
		natsConn, err := nats.NewClient(cfg.NATS)
		if err != nil {
			return nil, fmt.Errorf("change bridge: %w", err)
		}
		js, err := nats.NewJetStreamContext(natsConn)
		if err != nil {
			return nil, fmt.Errorf("change bridge: %w", err)
		}
		bridge := notify.NewBridge(nats.NewPublisher(js), cfg.NATS.Subject, cfg.NATS.Timeout, logger)
		productStore.Subscribe(bridge.Handle)
		deps.Bridge = bridge
		deps.closers = append(deps.closers, bridge.Close, func(context.Context) error {
			return natsConn.Drain()
		})
		logger.Info("Publishing product changes to NATS", "url", cfg.NATS.Url)
	}
	return deps, nil
}

// Close releases resources in the order they were acquired.
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error
	for _, closeFn := range d.closers {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetupMetricsHandler exposes the registry on /metrics and a liveness probe on /healthz.
func SetupMetricsHandler(deps *Dependencies) http.Handler {
	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(deps.Logger))
	mux.Use(web.Recoverer(deps.Logger))

	mux.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		web.RespondJSON(w, deps.Logger, http.StatusOK, map[string]any{"status": "ok", "products": len(deps.Store.Products())})
	})
	return mux
}
