package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/abgdnv/storefront/pkg/telemetry"
	"github.com/spf13/cobra"
)

// errUnsuccessful is returned after an unsuccessful result has been printed.
var errUnsuccessful = errors.New("operation was not successful")

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "Manage the product catalog through the products API",
		Long: `storefront keeps a local copy of the product catalog in sync with the
products API. Settings come from the config file, a .env file and
STOREFRONT_* environment variables, e.g. STOREFRONT_API_BASEURL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "path to the config file")

	rootCmd.AddCommand(
		listCmd(&configFile),
		createCmd(&configFile),
		updateCmd(&configFile),
		deleteCmd(&configFile),
		watchCmd(&configFile),
	)
	return rootCmd
}

// session holds everything a single command invocation needs.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   *app.Dependencies

	shutdownTelemetry telemetry.ShutdownFunc
}

// withSession loads configuration, builds the dependencies, runs fn and releases everything afterwards.
func withSession(configFile *string, fn func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx, cmd, *configFile)
		if err != nil {
			return err
		}
		runErr := fn(ctx, cmd, s, args)
		if err := s.close(); err != nil {
			s.logger.Error("Error during shutdown", "error", err)
		}
		return runErr
	}
}

func openSession(ctx context.Context, cmd *cobra.Command, configFile string) (*session, error) {
	cfg, err := configloader.LoadFile[*config.Config](serviceName, configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := bootstrap.NewLoggerTo(cmd.ErrOrStderr(), cfg.Log.Level)
	slog.SetDefault(logger)
	logger.Debug("Configuration loaded", "config", cfg.String())

	shutdownTelemetry, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	deps, err := app.SetupDependencies(cfg, logger)
	if err != nil {
		_ = shutdownTelemetry(ctx)
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, deps: deps, shutdownTelemetry: shutdownTelemetry}, nil
}

func (s *session) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Shutdown.Timeout)
	defer cancel()
	return errors.Join(s.deps.Close(ctx), s.shutdownTelemetry(ctx))
}
