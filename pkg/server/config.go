package server

import (
	"net/http"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., "localhost:8080").
	Address string

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 5 seconds.
	ReadHeaderTimeout time.Duration

	// ReadTimeout bounds reading a whole request.
	// Default: 10 seconds.
	ReadTimeout time.Duration

	// IdleTimeout closes idle keep-alive connections.
	// Default: 60 seconds.
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 15 seconds.
	ShutdownTimeout time.Duration

	// StaticDir is the directory served under StaticPrefix. Empty disables
	// static serving.
	StaticDir string

	// StaticPrefix is the URL prefix for static files.
	// Default: "/assets".
	StaticPrefix string

	// MetricsPath exposes Prometheus metrics. Empty disables the endpoint.
	MetricsPath string

	// Shell configures the HTML document served for client routes.
	Shell ShellConfig

	// MaxMessageSize caps incoming navigation socket messages.
	// Default: 64KB.
	MaxMessageSize int64

	// WriteTimeout bounds each socket write.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// CheckOrigin validates the Origin header of socket upgrades.
	// Default: same-origin only.
	CheckOrigin func(r *http.Request) bool
}

// ShellConfig configures the HTML shell.
type ShellConfig struct {
	// Lang is the document language. Default: "es".
	Lang string

	// AppName is the id of the element the client application mounts on.
	// Default: "app".
	AppName string

	// Script is the client bundle URL.
	Script string

	// Stylesheet is the client stylesheet URL.
	Stylesheet string
}

// DefaultConfig returns a Config with defaults filled in.
func DefaultConfig() *Config {
	return &Config{
		Address:           "localhost:8080",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   15 * time.Second,
		StaticPrefix:      "/assets",
		MetricsPath:       "/metrics",
		MaxMessageSize:    64 * 1024,
		WriteTimeout:      10 * time.Second,
		Shell: ShellConfig{
			Lang:    "es",
			AppName: "app",
		},
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = d.IdleTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.StaticPrefix == "" {
		out.StaticPrefix = d.StaticPrefix
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = d.MaxMessageSize
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.Shell.Lang == "" {
		out.Shell.Lang = d.Shell.Lang
	}
	if out.Shell.AppName == "" {
		out.Shell.AppName = d.Shell.AppName
	}
	return &out
}
