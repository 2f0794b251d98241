package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/drizzle/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "drizzle.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "drizzle.yaml"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultContainer is the default island container selector.
	DefaultContainer = "main"

	// DefaultRuntimeScript is the default directive runtime path.
	DefaultRuntimeScript = "/_drizzle/runtime.js"

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = "10s"
)

// configFiles are tried in order by Load.
var configFiles = []string{ConfigFileName, YAMLConfigFileName, "drizzle.yml"}

// Config represents a drizzle.json or drizzle.yaml file.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Server contains HTTP server settings.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// Hydration contains page hydration settings.
	Hydration HydrationConfig `json:"hydration,omitempty" yaml:"hydration,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty" yaml:"static,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Dev enables development behaviour: debug logging and markup
	// verification on hydration.
	Dev bool `json:"dev,omitempty" yaml:"dev,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// ShutdownTimeout is how long in-flight requests get on shutdown
	// (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
}

// HydrationConfig contains page hydration settings.
type HydrationConfig struct {
	// Container is the island container tag/selector.
	Container string `json:"container,omitempty" yaml:"container,omitempty"`

	// RuntimeScript is the path of the directive runtime script.
	RuntimeScript string `json:"runtimeScript,omitempty" yaml:"runtimeScript,omitempty"`

	// Verify re-renders islands during headless hydration and reports
	// markup mismatches.
	Verify bool `json:"verify,omitempty" yaml:"verify,omitempty"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/static/").
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the metrics endpoint path.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{
		Metrics: MetricsConfig{Enabled: true},
	}
	c.applyDefaults()
	return c
}

// Load reads configuration from dir. It looks for drizzle.json, then
// drizzle.yaml, then drizzle.yml.
func Load(dir string) (*Config, error) {
	for _, name := range configFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E121").
		WithDetail("No drizzle.json or drizzle.yaml found in " + dir).
		WithSuggestion("Create drizzle.json, or run without a config to use the defaults")
}

// LoadFile reads configuration from path. The format follows the file
// extension: .yaml and .yml are YAML, anything else is JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path in the format its extension
// names.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.Hydration.Container == "" {
		c.Hydration.Container = DefaultContainer
	}
	if c.Hydration.RuntimeScript == "" {
		c.Hydration.RuntimeScript = DefaultRuntimeScript
	}

	if c.Static.Dir == "" {
		c.Static.Dir = "public"
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/static/"
	}
	if !strings.HasSuffix(c.Static.Prefix, "/") {
		c.Static.Prefix += "/"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
		if c.Dev {
			c.Log.Level = "debug"
		}
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail(fmt.Sprintf("Port must be between 0 and 65535, got %d", c.Server.Port))
	}
	if _, err := c.ShutdownTimeout(); err != nil {
		return errors.New("E120").
			WithDetail(fmt.Sprintf("Invalid server.shutdownTimeout %q", c.Server.ShutdownTimeout)).
			Wrap(err)
	}
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.New("E123").WithDetail(fmt.Sprintf("Unknown log level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("E123").WithDetail(fmt.Sprintf("Unknown log format %q", c.Log.Format))
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// URL returns the server URL.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// ShutdownTimeout parses Server.ShutdownTimeout.
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.ShutdownTimeout)
}

// StaticPath returns the absolute path to the static directory.
func (c *Config) StaticPath() string {
	if filepath.IsAbs(c.Static.Dir) {
		return c.Static.Dir
	}
	return filepath.Join(c.Dir(), c.Static.Dir)
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LogLevel returns the configured slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	if l, ok := levels[strings.ToLower(c.Log.Level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// NewLogger builds the logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if strings.ToLower(c.Log.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range configFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E121").
				WithDetail("No drizzle.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadOrDefault loads the configuration found from dir upwards, or the
// defaults when there is none. Other load errors are returned.
func LoadOrDefault(dir string) (*Config, error) {
	root, err := FindProjectRoot(dir)
	if err != nil {
		if errors.CodeOf(err) == "E121" {
			return New(), nil
		}
		return nil, err
	}
	return Load(root)
}
