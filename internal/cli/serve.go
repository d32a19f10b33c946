package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-trademark-similarity/api"
	"github.com/gcbaptista/go-trademark-similarity/config"
	"github.com/gcbaptista/go-trademark-similarity/internal/audit"
	"github.com/gcbaptista/go-trademark-similarity/internal/engine"
	"github.com/gcbaptista/go-trademark-similarity/internal/logging"
	"github.com/gcbaptista/go-trademark-similarity/internal/metrics"
	"github.com/gcbaptista/go-trademark-similarity/internal/similarity"
	"github.com/gcbaptista/go-trademark-similarity/internal/tracing"
	"github.com/gcbaptista/go-trademark-similarity/services"
)

const (
	auditFile       = "audit.db"
	dataDirPerm     = 0755
	shutdownTimeout = 15 * time.Second
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the similarity HTTP API.

A weight table that does not sum to 1.0 is a configuration error: the
server refuses to start and the command exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logging.NewLogger(cfg.Env)
	cfg.LogSummary(logger)

	tp, err := tracing.NewProvider(tracing.Config{
		ServiceName:  cfg.Tracing.ServiceName,
		Enabled:      cfg.Tracing.Enabled,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SamplingRate: cfg.Tracing.SampleRate,
		InsecureMode: cfg.Tracing.Insecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics()
	if err := m.Register(registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	var recorder services.AuditRecorder
	if cfg.AuditEnabled {
		if err := os.MkdirAll(cfg.DataDir, dataDirPerm); err != nil {
			return fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
		}
		auditService, err := audit.NewService(filepath.Join(cfg.DataDir, auditFile), logger)
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
		defer func() {
			if err := auditService.Close(); err != nil {
				logger.Error("audit log close failed", "error", err)
			}
		}()
		recorder = auditService
	}

	eng, err := engine.NewEngine(cfg.Weights, engine.Options{
		Similarity: similarity.Options{ParallelThreshold: cfg.ParallelThreshold},
		MaxWorkers: cfg.MaxWorkers,
		Audit:      recorder,
		Metrics:    m,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	eng.Start()
	defer eng.Stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(eng, api.RouterConfig{
		MaxRequestBytes: cfg.MaxRequestBytes,
		Registry:        registry,
		Metrics:         m,
		Logger:          logger,
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           api.CompressionHandler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
