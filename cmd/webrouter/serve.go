package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/facturacom/webrouter/internal/config"
	"github.com/facturacom/webrouter/pkg/middleware"
	"github.com/facturacom/webrouter/pkg/router"
	"github.com/facturacom/webrouter/pkg/routesource"
	"github.com/facturacom/webrouter/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the client shell and navigation API",
		Long: `Serve the HTML shell for client routes, the JSON resolve API and the
WebSocket navigation channel.

With --watch a file route source is reloaded when it changes; clients
connected to the navigation channel are told about the new version.

Examples:
  webrouter serve
  webrouter serve --addr 0.0.0.0:8080 --routes configs/routes.yaml --watch
  WEBROUTER_ROUTES=s3://factura-config/web/routes.yaml webrouter serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				if err := setAddress(cfg, addr); err != nil {
					return err
				}
			}
			if watch {
				cfg.Routes.Watch = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, flags.source(cfg))
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address host:port (default from config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the route table when the file changes")

	return cmd
}

func setAddress(cfg *config.Config, addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid --addr %q: %w", addr, err)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid --addr port %q: %w", port, err)
	}
	cfg.Server.Host = host
	cfg.Server.Port = n
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, source string) error {
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	live, err := routesource.NewLive(ctx, newLoader(cfg, source), source)
	if err != nil {
		return err
	}

	var (
		guards []router.Guard
		opts   []server.Option
	)
	opts = append(opts,
		server.WithLogger(logger),
		server.WithMiddleware(middleware.RequestID, middleware.AccessLog(logger)),
	)

	if cfg.Tracing.Enabled {
		guards = append(guards, middleware.OpenTelemetry(middleware.WithTracerName(cfg.Tracing.TracerName)))
		opts = append(opts, server.WithMiddleware(middleware.Tracing(middleware.WithTracerName(cfg.Tracing.TracerName))))
	}
	if cfg.Metrics.Enabled {
		ns := middleware.WithNamespace(cfg.Metrics.Namespace)
		guards = append(guards, middleware.Prometheus(ns))
		opts = append(opts,
			server.WithMiddleware(middleware.HTTPMetrics(ns)),
			server.WithMetricsHandler(promhttp.Handler()),
		)
	}
	opts = append(opts, server.WithGuards(guards...))

	srvConfig := &server.Config{
		Address:         cfg.Address(),
		ReadTimeout:     cfg.ReadTimeout(),
		ShutdownTimeout: cfg.ShutdownTimeout(),
		StaticDir:       cfg.StaticPath(),
		StaticPrefix:    cfg.Static.Prefix,
		Shell: server.ShellConfig{
			Lang:       cfg.Shell.Lang,
			AppName:    cfg.Shell.AppName,
			Script:     cfg.Shell.Script,
			Stylesheet: cfg.Shell.Stylesheet,
		},
	}
	if cfg.Metrics.Enabled {
		srvConfig.MetricsPath = cfg.Metrics.Path
	}

	srv := server.New(live, srvConfig, opts...)

	live.OnReload(func(table *router.Table, err error) {
		if err != nil {
			middleware.RecordReload("error")
			return
		}
		middleware.RecordReload("success")
		srv.NotifyReload(table)
	})

	if cfg.Routes.Watch {
		if routesource.KindOf(source) != routesource.KindFile {
			logger.Warn("route watching needs a file source; ignoring watch", "source", source)
		} else {
			go func() {
				if err := live.Watch(ctx); err != nil {
					logger.Error("route watcher stopped", "error", err)
				}
			}()
		}
	}

	out := os.Stdout
	success(out, "Serving route table %s (%d routes) on http://%s", live.Table().Version(), live.Table().Len(), cfg.Address())
	if cfg.Metrics.Enabled {
		info(out, "Metrics at %s", cfg.Metrics.Path)
	}

	if err := srv.Run(ctx); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
