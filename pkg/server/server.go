package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/drizzle/internal/errors"
	"github.com/vango-dev/drizzle/pkg/middleware"
	"github.com/vango-dev/drizzle/pkg/render"
)

// Server serves server-rendered pages whose islands hydrate on the client.
type Server struct {
	config   *ServerConfig
	router   chi.Router
	renderer *render.Renderer
	metrics  *middleware.Metrics
	tracer   trace.Tracer
	logger   *slog.Logger

	httpServer *http.Server
}

// New creates a new Server with the given configuration. A nil config uses
// DefaultServerConfig.
func New(config *ServerConfig) *Server {
	config = config.withDefaults()
	s := &Server{
		config:  config,
		router:  chi.NewRouter(),
		metrics: middleware.NewMetrics(middleware.WithRegistry(config.Registry)),
		tracer:  otel.Tracer(config.TracerName),
		logger:  config.Logger,
	}
	s.renderer = render.NewRenderer(render.Config{
		Logger: s.logger,
		OnError: func(err error) {
			s.metrics.RenderFailed(errors.CodeOf(err))
		},
	})

	s.router.Use(
		middleware.RequestID,
		middleware.Logger(s.logger),
		chimw.Recoverer,
		s.metrics.Handler,
		middleware.Tracing(
			middleware.WithTracerName(config.TracerName),
			middleware.WithRequestFilter(s.traced),
		),
	)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	if config.MetricsPath != "" {
		s.router.Handle(config.MetricsPath, promhttp.HandlerFor(config.Registry, promhttp.HandlerOpts{}))
	}
	if config.StaticDir != "" {
		prefix := config.StaticPrefix
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(config.StaticDir)))
		s.router.Handle(prefix+"*", fs)
	}
	return s
}

// traced excludes probes and scrapes from tracing.
func (s *Server) traced(r *http.Request) bool {
	return r.URL.Path != "/healthz" && (s.config.MetricsPath == "" || r.URL.Path != s.config.MetricsPath)
}

// Router returns the chi router, for mounting extra handlers.
func (s *Server) Router() chi.Router {
	return s.router
}

// Renderer returns the renderer pages are rendered with.
func (s *Server) Renderer() *render.Renderer {
	return s.renderer
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *middleware.Metrics {
	return s.metrics
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully within
// ShutdownTimeout. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		if err := s.Shutdown(context.Background()); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", slog.Any("error", err))
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
