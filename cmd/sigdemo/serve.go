package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/sigstore/internal/config"
	"github.com/vango-dev/sigstore/pkg/live"
	"github.com/vango-dev/sigstore/pkg/telemetry"
)

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		addr         string
		tick         time.Duration
		otlpEndpoint string
		dev          bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live demo",
		Long: `Serve the demo over HTTP and WebSockets until interrupted.

Examples:
  sigdemo serve
  sigdemo serve --addr=127.0.0.1:9000 --tick=500ms
  sigdemo serve --otlp-endpoint=localhost:4318`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if addr != "" {
				cfg.Addr = addr
			}
			if tick > 0 {
				cfg.TickInterval.Duration = tick
			}
			if otlpEndpoint != "" {
				cfg.Tracing.Enabled = true
				cfg.Tracing.Endpoint = otlpEndpoint
			}
			if dev {
				cfg.Dev = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().DurationVar(&tick, "tick", 0, "Clock tick interval (default from config)")
	cmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "Export traces to this OTLP/HTTP collector")
	cmd.Flags().BoolVar(&dev, "dev", false, "Log every render and patch")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(os.Stderr, cfg)

	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.SetupTracing(ctx, telemetry.ExportConfig{
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			ServiceName: cfg.Tracing.ServiceName,
		})
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				logger.Warn("trace flush failed", "error", err)
			}
		}()
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}

	opts := []live.Option{
		live.WithLogger(logger),
		live.WithTracer(telemetry.NewTracer()),
	}
	if cfg.MetricsPath != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, live.WithMetrics(telemetry.NewMetrics(telemetry.WithRegistry(reg))))
	}

	srv := live.New(live.Config{
		Addr:            cfg.Addr,
		TickInterval:    cfg.TickInterval.Duration,
		LogLimit:        cfg.LogBuffer,
		InitialName:     cfg.InitialName,
		MetricsPath:     cfg.MetricsPath,
		ShutdownTimeout: cfg.ShutdownTimeout.Duration,
		Dev:             cfg.Dev,
	}, opts...)

	return srv.Run(ctx)
}
