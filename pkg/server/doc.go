// Package server is the HTTP page boundary: it renders registered
// components to complete documents whose islands the directive runtime
// hydrates on the client.
//
// # Pages
//
//	s := server.New(&server.ServerConfig{MetricsPath: "/metrics"})
//	s.Page("/", demo.Counter(), func(r *http.Request) (map[string]any, error) {
//	    return map[string]any{"count": 0}, nil
//	}, server.WithTitle("Counter"))
//	err := s.Run(ctx)
//
// Each page request builds props with its PropsFunc, renders the component
// inside the island container, embeds the props as the hydration payload
// and emits the runtime script followed by the hydration call. Rendering
// never fails a request: a panicking subtree renders as "" and is counted
// in drizzle_render_failures_total.
//
// # Middleware
//
// Every request passes through request id assignment, access logging,
// panic recovery, Prometheus metrics and OpenTelemetry tracing (see
// package middleware). /healthz answers "ok".
package server
