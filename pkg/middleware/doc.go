// Package middleware provides the net/http middleware drizzle's page server
// runs every request through.
//
// This package includes:
//
//   - OpenTelemetry tracing middleware
//   - Prometheus metrics middleware and page render counters
//   - Request ids and structured access logging
//
// # OpenTelemetry Middleware
//
// Tracing starts a server span for each request and names it after the
// matched chi route once routing has happened.
//
//	r := chi.NewRouter()
//	r.Use(middleware.Tracing(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in main() before starting the server.
//
// # Prometheus Metrics
//
// Metrics collected (namespace "drizzle" by default):
//
//   - drizzle_http_requests_total: requests by method, route and status
//   - drizzle_http_request_duration_seconds: request duration by route
//   - drizzle_http_requests_in_flight: requests being served
//   - drizzle_page_renders_total: rendered pages by component
//   - drizzle_page_render_duration_seconds: page render duration by component
//   - drizzle_render_failures_total: recovered render failures by error code
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Request IDs and Logging
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.Logger(logger))
//
// RequestID reuses an incoming X-Request-Id header or generates a UUID;
// Logger writes one slog record per request carrying it.
package middleware
