package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agenthands/healthrisk/internal/config"
	"github.com/agenthands/healthrisk/internal/monitoring"
	"github.com/agenthands/healthrisk/internal/rate"
	"github.com/agenthands/healthrisk/internal/server"
	"github.com/agenthands/healthrisk/internal/store"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func runCmd() *cobra.Command {
	var path string
	var logLevel int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(logLevel)
			c, err := loadConfig(path, logger.WithName("boot"))
			if err != nil {
				return err
			}
			return run(cmd.Context(), c, logger)
		},
	}
	cmd.Flags().StringVar(&path, "config", "", "Path to the config file (default $CONFIG_PATH or "+defaultConfigPath+")")
	cmd.Flags().IntVar(&logLevel, "v", 0, "Log level")
	return cmd
}

func run(ctx context.Context, c *config.Config, logger logr.Logger) error {
	log := logger.WithName("boot")
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetricsMonitor(reg)
	defer metrics.UnregisterAllCollectors()

	st, err := store.Open(ctx, c.Database.URL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Error(err, "Failed to close profile store")
		}
	}()

	predictor, closeLLM, err := newPredictor(ctx, c, st, metrics, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeLLM(); err != nil {
			log.Error(err, "Failed to close LLM client")
		}
	}()

	s := server.NewServer(predictor, rate.NewLimiter(c.RateLimit, logger), metrics, reg, c.Server.AllowedOrigins, logger)
	s.TrustedProxies = c.Server.TrustedProxies
	srv := &http.Server{
		Addr:         ":" + c.Server.Port,
		Handler:      s.Handler(),
		ReadTimeout:  c.Server.ReadTimeout.Duration,
		WriteTimeout: c.Server.WriteTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server...", "port", c.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
