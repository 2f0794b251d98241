package server

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServerConfig holds configuration for the page server.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:3000").
	// Default: "localhost:3000".
	Address string

	// Logger receives access logs, render failures and lifecycle records.
	// Default: slog.Default().
	Logger *slog.Logger

	// Pages

	// Container is the island container tag.
	// Default: render.DefaultContainer.
	Container string

	// RuntimeScript is the directive runtime path referenced by every page.
	// Default: render.DefaultRuntimeScript.
	RuntimeScript string

	// Lang is the html lang attribute. Default: "en".
	Lang string

	// CSP emits a per-request script nonce and a matching
	// Content-Security-Policy header.
	CSP bool

	// Static files

	// StaticDir is served under StaticPrefix when set.
	StaticDir string

	// StaticPrefix is the URL prefix for static files. Default: "/static/".
	StaticPrefix string

	// Observability

	// MetricsPath exposes Prometheus metrics when set (e.g., "/metrics").
	MetricsPath string

	// Registry receives the server's collectors and backs MetricsPath.
	// Default: a fresh registry per server.
	Registry *prometheus.Registry

	// TracerName names the OpenTelemetry tracer. Default: "drizzle".
	TracerName string

	// Server lifecycle

	// ReadHeaderTimeout bounds reading request headers. Default: 10 seconds.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           "localhost:3000",
		StaticPrefix:      "/static/",
		TracerName:        "drizzle",
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// withDefaults returns a copy of c with unset fields defaulted.
func (c *ServerConfig) withDefaults() *ServerConfig {
	defaults := DefaultServerConfig()
	if c == nil {
		c = defaults
	}
	clone := *c
	if clone.Address == "" {
		clone.Address = defaults.Address
	}
	if clone.StaticPrefix == "" {
		clone.StaticPrefix = defaults.StaticPrefix
	}
	if clone.TracerName == "" {
		clone.TracerName = defaults.TracerName
	}
	if clone.ReadHeaderTimeout <= 0 {
		clone.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if clone.ShutdownTimeout <= 0 {
		clone.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if clone.Logger == nil {
		clone.Logger = slog.Default()
	}
	if clone.Registry == nil {
		clone.Registry = prometheus.NewRegistry()
	}
	return &clone
}
