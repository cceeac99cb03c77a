package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/patientor/patientor/internal/config"
	"github.com/patientor/patientor/internal/domain/patient"
	"github.com/patientor/patientor/internal/platform/auth"
	"github.com/patientor/patientor/internal/platform/db"
	"github.com/patientor/patientor/internal/platform/middleware"
	"github.com/patientor/patientor/internal/platform/telemetry"
	"github.com/patientor/patientor/internal/validator"
	"github.com/patientor/patientor/migrations"
)

func serveCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the records API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "Apply pending migrations on start when DATABASE_URL is set")
	return cmd
}

// backend is the storage the records API runs on.
type backend struct {
	patients  patient.PatientRepository
	diagnoses patient.DiagnosisRepository
	pool      *pgxpool.Pool
	checks    []db.Check
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger, autoMigrate bool) (*backend, error) {
	b := &backend{close: func() {}}

	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL not set; records are kept in memory")
		b.patients = patient.NewMemPatientRepo()
		b.diagnoses = patient.NewMemDiagnosisRepo()
	} else {
		pool, err := db.NewPool(ctx, db.PoolConfig{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
			Logger:   logger.With().Str("component", "db").Logger(),
		})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		logger.Info().Msg("connected to database")
		b.pool = pool
		b.close = pool.Close

		if autoMigrate {
			n, err := db.NewMigrator(pool, migrations.FS).Up(ctx, "public")
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info().Int("applied", n).Msg("migrations up to date")
		}
		b.patients = patient.NewPatientRepo(pool)
		b.diagnoses = patient.NewDiagnosisRepo(pool)
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		closeDB := b.close
		b.close = func() {
			rdb.Close()
			closeDB()
		}
		b.diagnoses = patient.NewCachedDiagnosisRepo(b.diagnoses, rdb, cfg.DiagnosisCacheTTL, logger.With().Str("component", "cache").Logger())
		b.checks = append(b.checks, db.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
		logger.Info().Dur("ttl", cfg.DiagnosisCacheTTL).Msg("diagnosis cache enabled")
	}

	if cfg.SeedDemoData {
		seed := func(ctx context.Context) error { return patient.Seed(ctx, b.patients, b.diagnoses) }
		var err error
		if b.pool != nil {
			err = db.WithTx(ctx, b.pool, seed)
		} else {
			err = seed(ctx)
		}
		if err != nil {
			b.close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info().Msg("demo data seeded")
	}
	return b, nil
}

func runServer(ctx context.Context, cfg *config.Config, autoMigrate bool) error {
	logger := newLogger(cfg, os.Stdout)

	stopTelemetry, err := startTelemetry(ctx, cfg, "patientor-api", logger)
	if err != nil {
		return err
	}
	defer stopTelemetry()

	b, err := openBackend(ctx, cfg, logger, autoMigrate)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start")
		return err
	}
	defer b.close()

	e := newAPIServer(cfg, logger, b)
	return serveUntilSignal(e, ":"+cfg.Port, logger)
}

func newAPIServer(cfg *config.Config, logger zerolog.Logger, b *backend) *echo.Echo {
	e := newEcho()

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(telemetry.Middleware("patientor-api"))
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.SecurityHeaders(middleware.APIContentPolicy))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
	}))

	if cfg.UsesDevAuth() {
		logger.Warn().Msg("development auth is active: every request is treated as admin")
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
			Skipper:    auth.AuthSkipper,
		}))
	}
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(b.pool, b.checks...))

	rl := middleware.RateLimitConfig{RequestsPerSecond: cfg.RateLimitRPS, BurstSize: cfg.RateLimitBurst}
	if rl.RequestsPerSecond <= 0 {
		rl = middleware.DefaultRateLimitConfig()
	}
	api := e.Group("/api", middleware.RateLimit(rl), middleware.ETag(), middleware.RequestTimeout(cfg.RequestTimeout))

	svc := patient.NewService(b.patients, b.diagnoses, validator.New())
	patient.NewHandler(svc).RegisterRoutes(api)

	return e
}
