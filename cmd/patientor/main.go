package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/patientor/patientor/internal/config"
	"github.com/patientor/patientor/internal/platform/telemetry"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "patientor",
		Short:         "Patient records API, web viewer and CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(uiCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(patientsCmd())
	rootCmd.AddCommand(entriesCmd())
	rootCmd.AddCommand(diagnosesCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes JSON to out, or human-readable lines in development.
func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	logger := zerolog.New(out)
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen})
	}
	return logger.Level(cfg.Level()).With().Timestamp().Logger()
}

// startTelemetry installs tracing for the named service. The returned
// function flushes spans on exit.
func startTelemetry(ctx context.Context, cfg *config.Config, service string, logger zerolog.Logger) (func(), error) {
	tel, err := telemetry.New(ctx, telemetry.Config{
		ServiceName:   service,
		Environment:   cfg.Env,
		Endpoint:      cfg.OTelEndpoint,
		Insecure:      cfg.OTelInsecure,
		SamplingRatio: cfg.OTelSamplingRatio,
	}, logger)
	if err != nil {
		return nil, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("flushing traces")
		}
	}, nil
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return e
}

// serveUntilSignal runs e on addr until SIGINT or SIGTERM, then shuts it
// down with a 10 second grace period.
func serveUntilSignal(e *echo.Echo, addr string, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("listening")
		errCh <- e.Start(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
