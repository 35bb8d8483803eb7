package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/ctxbudget/budget"
	"github.com/randalmurphal/ctxbudget/config"
	"github.com/randalmurphal/ctxbudget/manifest"
	"github.com/randalmurphal/ctxbudget/metrics"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		manifestPath string
		outputPath   string
		metricsAddr  string
		vars         map[string]string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild a manifest whenever the config file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath == "" {
				return errors.New("watch requires --config")
			}
			logger := opts.logger

			m, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}
			sections, err := m.BudgetSections(nil, stringVars(vars))
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			collector := metrics.NewCollector(reg)

			rebuild := func(f *config.File) {
				if err := writeBuild(cmd, f, sections, collector, outputPath, logger); err != nil {
					logger.Error("rebuild failed", slog.Any("error", err))
				}
			}

			w, err := config.NewWatcher(opts.configPath, rebuild, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if metricsAddr != "" {
				srv := newMetricsServer(metricsAddr, reg)
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server stopped", slog.Any("error", err))
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				logger.Info("serving metrics", slog.String("addr", metricsAddr))
			}

			rebuild(w.Current())
			logger.Info("watching config", slog.String("path", opts.configPath))
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "prompt manifest (yaml, json or toml)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the context to this file instead of stdout")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address for the Prometheus /metrics endpoint (empty disables)")
	cmd.Flags().StringToStringVar(&vars, "var", nil, "template variable override (key=value, repeatable)")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}

// writeBuild allocates sections under f and writes the context to
// outputPath, or to the command's stdout when outputPath is empty.
func writeBuild(cmd *cobra.Command, f *config.File, sections []budget.Section, obs budget.Observer, outputPath string, logger *slog.Logger) error {
	alloc, err := f.NewAllocator(logger)
	if err != nil {
		return err
	}
	res, err := alloc.WithObserver(obs).Allocate(sections)
	if err != nil {
		return err
	}

	logger.Info("context rebuilt",
		slog.Int("ceiling", res.Ceiling),
		slog.Int("tokens", res.FinalTokens),
		slog.Int("truncated", len(res.Truncated())))

	if outputPath == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Text())
		return err
	}
	return os.WriteFile(outputPath, []byte(res.Text()), 0o644)
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
