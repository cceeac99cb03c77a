package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/patientor/patientor/internal/client"
	"github.com/patientor/patientor/internal/config"
	"github.com/patientor/patientor/internal/platform/middleware"
	"github.com/patientor/patientor/internal/platform/telemetry"
	"github.com/patientor/patientor/internal/platform/websocket"
	"github.com/patientor/patientor/internal/state"
	"github.com/patientor/patientor/internal/validator"
	"github.com/patientor/patientor/internal/viewer"
)

func uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Start the web viewer against the records API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runUI(cmd, cfg)
		},
	}
}

func newAPIClient(cfg *config.Config) *client.Client {
	return client.New(client.Config{
		BaseURL:   cfg.APIURL,
		Token:     cfg.APIToken,
		Timeout:   cfg.APITimeout,
		Transport: telemetry.Transport(nil),
	})
}

func runUI(cmd *cobra.Command, cfg *config.Config) error {
	logger := newLogger(cfg, os.Stdout)

	stopTelemetry, err := startTelemetry(cmd.Context(), cfg, "patientor-ui", logger)
	if err != nil {
		return err
	}
	defer stopTelemetry()

	v := viewer.New(state.NewStore(state.Empty()), newAPIClient(cfg), validator.New(), logger)
	hub := websocket.NewHub(logger.With().Str("component", "live").Logger())
	v.PublishChanges(hub)
	if err := v.Bootstrap(cmd.Context()); err != nil {
		// The pages retry the list on every visit.
		logger.Warn().Err(err).Str("api_url", cfg.APIURL).Msg("initial load incomplete")
	}

	e := newEcho()
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(telemetry.Middleware("patientor-ui"))
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.SecurityHeaders(middleware.PageContentPolicy))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	viewer.NewHandler(v, cfg.PageSize, logger).RegisterRoutes(e)
	e.GET("/events", websocket.NewHandler(hub, logger).Connect)

	return serveUntilSignal(e, ":"+cfg.UIPort, logger)
}
