package config

import (
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/facturacom/webrouter/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "webrouter.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultRouteSource loads the route table compiled into the binary.
	DefaultRouteSource = "builtin"

	// DefaultMetricsPath is where Prometheus metrics are exposed.
	DefaultMetricsPath = "/metrics"

	// DefaultNamespace is the Prometheus namespace.
	DefaultNamespace = "webrouter"
)

// Environment variables that override file values.
const (
	EnvAddr     = "WEBROUTER_ADDR"
	EnvRoutes   = "WEBROUTER_ROUTES"
	EnvLogLevel = "WEBROUTER_LOG_LEVEL"
)

// Config represents the complete webrouter.json configuration.
type Config struct {
	// Name is the deployment name.
	Name string `json:"name,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Routes contains route table source configuration.
	Routes RoutesConfig `json:"routes,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty"`

	// Shell contains SPA shell rendering configuration.
	Shell ShellConfig `json:"shell,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// S3 contains settings for s3:// route sources.
	S3 S3Config `json:"s3,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// ReadTimeout bounds reading a request (e.g., "10s").
	ReadTimeout string `json:"readTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "15s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`
}

// RoutesConfig selects the route table document.
type RoutesConfig struct {
	// Source is a file path, an s3://bucket/key URL, or "builtin".
	Source string `json:"source,omitempty"`

	// Watch reloads the table when a file source changes.
	Watch bool `json:"watch,omitempty"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `json:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/assets").
	Prefix string `json:"prefix,omitempty"`
}

// ShellConfig configures the HTML shell served for client routes.
type ShellConfig struct {
	// AppName is the id of the mount element's application.
	AppName string `json:"appName,omitempty"`

	// Script is the URL of the client bundle.
	Script string `json:"script,omitempty"`

	// Stylesheet is the URL of the client stylesheet.
	Stylesheet string `json:"stylesheet,omitempty"`

	// Lang is the document language.
	Lang string `json:"lang,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes metrics and records navigations.
	Enabled bool `json:"enabled,omitempty"`

	// Path is the metrics endpoint path.
	Path string `json:"path,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled wraps navigations and requests in spans.
	Enabled bool `json:"enabled,omitempty"`

	// TracerName is the tracer name (default: "webrouter").
	TracerName string `json:"tracerName,omitempty"`
}

// S3Config contains settings for reading route documents from S3.
type S3Config struct {
	// Region is the AWS region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint (e.g., a MinIO URL).
	Endpoint string `json:"endpoint,omitempty"`

	// UsePathStyle forces path-style addressing.
	UsePathStyle bool `json:"usePathStyle,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Name: "webrouter",
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     "10s",
			ShutdownTimeout: "15s",
		},
		Routes: RoutesConfig{
			Source: DefaultRouteSource,
		},
		Static: StaticConfig{
			Dir:    "public",
			Prefix: "/assets",
		},
		Shell: ShellConfig{
			AppName: "app",
			Script:  "/assets/app.js",
			Lang:    "es",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      DefaultMetricsPath,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: "webrouter",
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for webrouter.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Pass --config or run without one to use the builtin route table")
		}
		return nil, errors.New("E140").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E140").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E140").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E140").Wrap(err)
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
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "15s"
	}
	if c.Routes.Source == "" {
		c.Routes.Source = DefaultRouteSource
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/assets"
	}
	if c.Shell.AppName == "" {
		c.Shell.AppName = "app"
	}
	if c.Shell.Lang == "" {
		c.Shell.Lang = "es"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "webrouter"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// ApplyEnv overrides values from WEBROUTER_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvAddr); v != "" {
		host, port, err := net.SplitHostPort(v)
		if err != nil {
			return errors.New("E140").WithDetail(EnvAddr + " must be host:port").Wrap(err)
		}
		n, err := strconv.Atoi(port)
		if err != nil {
			return errors.New("E140").WithDetail(EnvAddr + " has a non-numeric port").Wrap(err)
		}
		c.Server.Host = host
		c.Server.Port = n
	}
	if v := os.Getenv(EnvRoutes); v != "" {
		c.Routes.Source = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E140").
			WithDetail("Port must be between 0 and 65535")
	}
	if _, err := time.ParseDuration(c.Server.ReadTimeout); err != nil {
		return errors.New("E140").
			WithDetail("server.readTimeout is not a duration: " + c.Server.ReadTimeout)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return errors.New("E140").
			WithDetail("server.shutdownTimeout is not a duration: " + c.Server.ShutdownTimeout)
	}
	if !strings.HasPrefix(c.Static.Prefix, "/") {
		return errors.New("E140").
			WithDetail("static.prefix must start with /")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E140").
			WithDetail("metrics.path must start with /")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E140").
			WithDetail("log.format must be text or json, got " + c.Log.Format)
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ReadTimeout returns the parsed read timeout.
func (c *Config) ReadTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ReadTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// ShutdownTimeout returns the parsed shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// RouteSource returns the route source, resolving relative file paths
// against the config directory.
func (c *Config) RouteSource() string {
	src := c.Routes.Source
	if src == "" || src == DefaultRouteSource || strings.Contains(src, "://") || filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(c.Dir(), src)
}

// StaticPath returns the static directory, resolved against the config directory.
func (c *Config) StaticPath() string {
	if c.Static.Dir == "" || filepath.IsAbs(c.Static.Dir) {
		return c.Static.Dir
	}
	return filepath.Join(c.Dir(), c.Static.Dir)
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, errors.New("E140").
			WithDetail("log.level must be debug, info, warn or error, got " + level)
	}
	return l, nil
}

// NewLogger builds the slog logger described by the log section.
func (c *Config) NewLogger() *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler).With("service", c.Name)
}
