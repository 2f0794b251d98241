package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/drizzle/internal/config"
	"github.com/vango-dev/drizzle/internal/demo"
	"github.com/vango-dev/drizzle/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port        int
		host        string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo pages",
		Long: `Serve the demo islands as server-rendered pages.

Routes:
  /         Counter (?count=N sets the start value)
  /login    LoginForm (?email= prefills the address)
  /healthz  Liveness probe
  /metrics  Prometheus metrics (unless --metrics-addr moves them)

Examples:
  drizzle serve
  drizzle serve --port=8080
  drizzle serve --metrics-addr=:9100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, metricsAddr, cmd)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics on a separate address")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, metricsAddr string, cmd *cobra.Command) error {
	logger := cfg.NewLogger(cmd.ErrOrStderr())
	shutdown, err := cfg.ShutdownTimeout()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	srv := newPageServer(cfg, logger, registry, metricsAddr == "")

	out := cmd.OutOrStdout()
	printBanner(out)
	success(out, "Serving on %s", cfg.URL())
	if metricsAddr != "" {
		info(out, "Metrics on %s%s", metricsAddr, cfg.Metrics.Path)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if metricsAddr != "" && cfg.Metrics.Enabled {
		g.Go(func() error {
			return serveMetrics(gctx, metricsAddr, cfg.Metrics.Path, registry, shutdown, logger)
		})
	}
	return g.Wait()
}

// newPageServer builds the page server with the demo routes.
func newPageServer(cfg *config.Config, logger *slog.Logger, registry *prometheus.Registry, mountMetrics bool) *server.Server {
	shutdown, _ := cfg.ShutdownTimeout()
	sc := &server.ServerConfig{
		Address:         cfg.Address(),
		ShutdownTimeout: shutdown,
		Logger:          logger,
		Container:       cfg.Hydration.Container,
		RuntimeScript:   cfg.Hydration.RuntimeScript,
		Registry:        registry,
	}
	if mountMetrics && cfg.Metrics.Enabled {
		sc.MetricsPath = cfg.Metrics.Path
	}
	if dir := cfg.StaticPath(); dirExists(dir) {
		sc.StaticDir = dir
		sc.StaticPrefix = cfg.Static.Prefix
	}
	srv := server.New(sc)

	srv.Page("/", demo.Counter(), counterProps, server.WithTitle("Counter"))
	srv.Page("/login", demo.LoginForm(demo.LoginOptions{}), loginProps, server.WithTitle("Sign in"))
	return srv
}

// counterProps reads ?count=N. A malformed count starts at zero.
func counterProps(r *http.Request) (map[string]any, error) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	return map[string]any{"count": count}, nil
}

func loginProps(r *http.Request) (map[string]any, error) {
	props := map[string]any{}
	if email := r.URL.Query().Get("email"); email != "" {
		props["email"] = email
	}
	return props, nil
}

func serveMetrics(ctx context.Context, addr, path string, registry *prometheus.Registry, shutdown time.Duration, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server starting", slog.String("address", addr))
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdown)
		defer cancel()
		return hs.Shutdown(sctx)
	}
}

func dirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
