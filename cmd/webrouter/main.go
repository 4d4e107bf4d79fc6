package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/facturacom/webrouter/internal/config"
	"github.com/facturacom/webrouter/internal/errors"
	"github.com/facturacom/webrouter/pkg/router"
	"github.com/facturacom/webrouter/pkg/routesource"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	routes     string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "webrouter",
		Short: "Route table resolver and shell server for the Factura.com client",
		Long: `webrouter resolves client paths against an ordered route table.

The table maps paths such as /show/:uuid to named views, rewrites / to
Home, and sets the document title from route metadata, falling back to
"Factura.com". Tables are versioned documents (YAML, TOML or JSON) read
from disk, from S3, or from the copy built into the binary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to "+config.ConfigFileName+" (default: ./"+config.ConfigFileName+" when present)")
	rootCmd.PersistentFlags().StringVarP(&flags.routes, "routes", "r", "", `Route source: file path, s3://bucket/key or "builtin"`)
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		serveCmd(flags),
		resolveCmd(flags),
		routesCmd(flags),
		urlCmd(flags),
		validateCmd(flags),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig reads the configuration named by --config, or webrouter.json in
// the working directory when present, and applies environment overrides.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load(".")
		if errors.Code(err) == "E141" {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// source returns --routes when set, otherwise the configured source.
func (f *globalFlags) source(cfg *config.Config) string {
	if f.routes != "" {
		return f.routes
	}
	return cfg.RouteSource()
}

func newLoader(cfg *config.Config, source string) *routesource.Loader {
	var s3 routesource.ObjectGetter
	if routesource.KindOf(source) == routesource.KindS3 {
		s3 = routesource.NewS3Client(routesource.S3Options{
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
	}
	return routesource.NewLoader(s3, cfg.NewLogger())
}

// loadTable loads the route table selected by the flags and configuration.
func (f *globalFlags) loadTable(ctx context.Context) (*router.Table, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	// Keep one-shot commands quiet unless asked otherwise.
	if f.logLevel == "" && os.Getenv(config.EnvLogLevel) == "" && cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	source := f.source(cfg)
	return newLoader(cfg, source).Load(ctx, source)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
