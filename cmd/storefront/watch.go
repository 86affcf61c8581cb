package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/abgdnv/storefront/internal/app"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func watchCmd(configFile *string) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the product list periodically until interrupted",
		Args:  cobra.NoArgs,
		RunE: withSession(configFile, func(ctx context.Context, cmd *cobra.Command, s *session, _ []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be greater than 0")
			}
			return watch(ctx, cmd, s, interval)
		}),
	}
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "time between refreshes")
	return cmd
}

// watch fetches products every interval and serves metrics when enabled. It returns when ctx is done.
func watch(ctx context.Context, cmd *cobra.Command, s *session, interval time.Duration) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			result := s.deps.Store.FetchProducts(gCtx)
			if gCtx.Err() != nil {
				return nil
			}
			if result.Success {
				s.logger.Info("Products refreshed", "count", len(s.deps.Store.Products()))
			} else {
				s.logger.Warn("Products refresh failed", "message", result.Message)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\t%d\t%s\n",
				time.Now().UTC().Format(time.RFC3339), result.Success, len(s.deps.Store.Products()), result.Message)

			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	if s.cfg.Metrics.Enabled {
		metricsServer := &http.Server{
			Addr:              s.cfg.Metrics.Addr,
			Handler:           app.SetupMetricsHandler(s.deps),
			ReadHeaderTimeout: 5 * time.Second,
		}
		// Start the metrics server
		g.Go(func() error {
			s.logger.Info("Metrics server listening", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown metrics server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			s.logger.Info("Shutting down metrics server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Shutdown.Timeout)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}
