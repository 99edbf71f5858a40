package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"
	zlog "github.com/rs/zerolog/log"
	httpmiddleware "github.com/secunda/directory/internal/http"
	"github.com/secunda/directory/internal/logger"
	"github.com/secunda/directory/internal/server"
	"github.com/secunda/directory/internal/store"
	memorystore "github.com/secunda/directory/internal/store/memory"
	postgresstore "github.com/secunda/directory/internal/store/postgres"
	"github.com/secunda/directory/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type ServerCmd struct {
	// Server configuration
	Listen          string        `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"DIRECTORY_LISTEN"`
	ShutdownTimeout time.Duration `help:"grace period for in-flight requests on shutdown" default:"15s" env:"DIRECTORY_SHUTDOWN_TIMEOUT"`
	MetricsPath     string        `help:"path serving Prometheus metrics, empty disables" default:"/metrics" env:"DIRECTORY_METRICS_PATH"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"*" env:"DIRECTORY_CORS_ORIGINS"`

	// Development and operational modes
	Tracing     bool    `help:"enable tracing" default:"false" env:"DIRECTORY_TRACING"`
	SampleRatio float64 `help:"fraction of root traces recorded" default:"1" env:"DIRECTORY_TRACE_SAMPLE_RATIO"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"DIRECTORY_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
	Dataset       DatasetFlags       `embed:"" prefix:"dataset-"`
}

func (c *ServerCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	zlog.Logger = log

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	// Setup telemetry if enabled
	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
			ServiceName: "directory-server",
			Version:     globals.Version,
			SampleRatio: c.SampleRatio,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	var st store.DirectoryStore

	switch c.StoreType {
	case "postgres":
		pool, err := c.PostgresStore.connect(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		pgStore := postgresstore.NewDirectoryStore(pool, &postgresstore.StoreConfig{
			QueryTimeoutSeconds: c.PostgresStore.QueryTimeout,
		})
		if err := pgStore.Start(); err != nil {
			return err
		}
		defer func() {
			if err := pgStore.Stop(); err != nil {
				log.Error().Err(err).Msg("Failed to stop directory store")
			}
		}()
		st = pgStore

		log.Info().Msg("Using PostgreSQL directory store")

	default:
		ds, err := c.Dataset.load()
		if err != nil {
			return err
		}
		memStore := memorystore.NewDirectoryStore()
		if err := memStore.Load(ctx, ds); err != nil {
			return err
		}
		st = memStore

		log.Info().
			Int("buildings", len(ds.Buildings)).
			Int("activities", len(ds.Activities)).
			Int("organizations", len(ds.Organizations)).
			Msg("Using in-memory directory store")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/", server.NewServer(st, httpmiddleware.NewMetrics(reg)).Handler())
	if c.MetricsPath != "" {
		mux.Handle("GET "+c.MetricsPath, httpmiddleware.Handler(reg))
	}

	middlewares := []func(http.Handler) http.Handler{}
	if c.Tracing {
		middlewares = append(middlewares, func(h http.Handler) http.Handler {
			return otelhttp.NewHandler(h, "directory")
		})
	}
	middlewares = append(middlewares,
		httpmiddleware.ClientIPMiddleware(),
		logger.RequestLogger(log),
		withCORS(c.CORSOrigins),
		func(h http.Handler) http.Handler { return gzhttp.GzipHandler(h) },
	)
	handler := httpmiddleware.Chain(mux, middlewares...)

	srv := configureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Str("store", c.StoreType).Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown http server: %w", err)
		}
		return nil
	}
}

// withCORS allows read-only cross origin calls and exposes the ETag so
// browsers can revalidate.
func withCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
	})
	return middleware.Handler
}
