package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"qqmusicmcp/internal/domain"
	"qqmusicmcp/internal/infra/config"
	"qqmusicmcp/internal/infra/gateway"
	"qqmusicmcp/internal/infra/qqapi"
	"qqmusicmcp/internal/infra/telemetry"
)

type serverOptions struct {
	configPath       string
	transport        string
	httpAddr         string
	httpPath         string
	httpJSONResponse bool
	metricsEnabled   bool
	logger           *zap.Logger
}

func main() {
	opts := serverOptions{
		transport: "stdio",
		httpAddr:  "127.0.0.1:8090",
		httpPath:  "/mcp",
		logger:    zap.NewNop(),
	}

	root := &cobra.Command{
		Use:   "qqmusicmcp",
		Short: "MCP server exposing the QQ Music API as tools",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Production config logs to stderr, keeping stdout clean for
			// the stdio transport.
			cfg := zap.NewProductionConfig()
			log, err := cfg.Build()
			if err != nil {
				return err
			}
			opts.logger = log
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Optional .env next to the working directory, matching how
			// the hosting runtimes usually hand over the cookie.
			_ = godotenv.Load()

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd.Flags(), &cfg)
			if !cfg.HasCredential() {
				opts.logger.Info("no session cookie configured, VIP-tier qualities will be rejected")
			}

			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			var metrics domain.Metrics = domain.NopMetrics{}
			if opts.metricsEnabled {
				registry := prometheus.NewRegistry()
				metrics = telemetry.NewPrometheusMetrics(registry)
				go func() {
					if err := telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
						Addr:     cfg.MetricsListenAddress,
						Registry: registry,
					}, opts.logger); err != nil {
						opts.logger.Error("observability server failed", zap.Error(err))
					}
				}()
			}

			client := qqapi.NewClient(qqapi.Options{
				Cookie:  cfg.Cookie,
				Timeout: cfg.RequestTimeout,
				Logger:  opts.logger,
				Metrics: metrics,
			})
			gw := gateway.New(gateway.Options{
				Client:           client,
				BatchConcurrency: cfg.BatchConcurrency,
				Logger:           opts.logger,
				Metrics:          metrics,
			})

			switch opts.transport {
			case "stdio":
				err = gw.Run(ctx)
			case "streamable-http":
				err = gw.RunStreamableHTTP(ctx, gateway.HTTPOptions{
					Addr:         opts.httpAddr,
					Path:         opts.httpPath,
					JSONResponse: opts.httpJSONResponse,
				})
			default:
				return fmt.Errorf("unsupported transport: %s", opts.transport)
			}
			if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				return nil
			}
			return err
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "optional YAML config file")
	root.PersistentFlags().StringVar(&opts.transport, "transport", opts.transport, "server transport (stdio or streamable-http)")
	root.PersistentFlags().StringVar(&opts.httpAddr, "http-addr", opts.httpAddr, "streamable HTTP listen address")
	root.PersistentFlags().StringVar(&opts.httpPath, "http-path", opts.httpPath, "streamable HTTP endpoint path")
	root.PersistentFlags().BoolVar(&opts.httpJSONResponse, "http-json-response", false, "use application/json responses instead of SSE")
	root.PersistentFlags().BoolVar(&opts.metricsEnabled, "metrics", false, "serve Prometheus metrics and healthz")
	root.PersistentFlags().Int("timeout-seconds", domain.DefaultRequestTimeoutSeconds, "per-request upstream timeout in seconds")
	root.PersistentFlags().Int("batch-concurrency", domain.DefaultBatchConcurrency, "max concurrent sub-requests for batch URL resolution")

	if err := root.Execute(); err != nil {
		opts.logger.Fatal("command failed", zap.Error(err))
	}
}

// applyFlagOverrides lets explicitly-set flags win over file and env values.
func applyFlagOverrides(flags *pflag.FlagSet, cfg *config.Config) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "timeout-seconds":
			if seconds, err := flags.GetInt("timeout-seconds"); err == nil && seconds > 0 {
				cfg.RequestTimeout = time.Duration(seconds) * time.Second
			}
		case "batch-concurrency":
			if n, err := flags.GetInt("batch-concurrency"); err == nil && n > 0 {
				cfg.BatchConcurrency = n
			}
		}
	})
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
