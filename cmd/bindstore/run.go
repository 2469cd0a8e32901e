package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/bindstore/internal/config"
	reports "github.com/vango-dev/bindstore/internal/errors"
	"github.com/vango-dev/bindstore/internal/seed"
	"github.com/vango-dev/bindstore/pkg/inspect"
	"github.com/vango-dev/bindstore/pkg/storemetrics"
)

func runCmd(envFile *string) *cobra.Command {
	flags := config.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Serve the inspector over a seeded store",
		Long: `Create a store from the seed file, mount a dashboard bound to every
key, and serve the inspector until interrupted.

Examples:
  bindstore run --seed state.yaml
  bindstore run --seed state.yaml --watch --addr :7070
  BINDSTORE_SEED=state.yaml bindstore run --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile, cmd.Flags())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, cmd.ErrOrStderr())
		},
	}
	flags.BindFlags(cmd.Flags())

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	logger, err := cfg.Logger(logOut)
	if err != nil {
		return err
	}
	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	// Store writes and dashboard renders are serialized.
	var mu sync.Mutex
	dispatch := func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		fn()
	}

	var dash *dashboard
	dispatch(func() { dash, err = mountDashboard(s, logger) })
	if err != nil {
		return err
	}
	defer dispatch(dash.Close)

	srv := inspect.New(s,
		inspect.WithLogger(logger),
		inspect.WithDispatcher(dispatch),
		inspect.WithView(dash.WriteTo),
	)
	defer srv.Close()

	if cfg.MetricsPath != "" {
		reg := prometheus.NewRegistry()
		m := storemetrics.Instrument(s,
			storemetrics.WithRegistry(reg),
			storemetrics.WithConstLabels(prometheus.Labels{"store": s.ID()}),
		)
		defer m.Detach()
		srv.Router().Handle(cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	if cfg.Watch {
		go func() {
			err := seed.Watch(ctx, cfg.Seed, seed.DefaultDebounce, func(values map[string]any, err error) {
				if err != nil {
					logger.Warn("seed: reload skipped", "path", cfg.Seed, "error", reports.FromError(err, "C001").FormatCompact())
					return
				}
				dispatch(func() {
					if err := seed.Apply(s, values); err != nil {
						logger.Error("seed: apply failed", "error", err)
						return
					}
					logger.Info("seed: reloaded", "path", cfg.Seed, "keys", len(values))
				})
			})
			if err != nil {
				logger.Error("seed: watch stopped", "error", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	success("Inspector listening on http://%s", cfg.Addr)
	info("Store %s with %d keys", s.ID(), len(s.Keys()))
	if cfg.MetricsPath != "" {
		info("Metrics at http://%s%s", cfg.Addr, cfg.MetricsPath)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
