package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/facturacom/webrouter/pkg/router"
)

// Server serves the client routes of a route table over HTTP.
//
// Requests for client routes receive the HTML shell with the navigation's
// document title. JSON endpoints expose resolution, and a WebSocket channel
// lets a running client navigate without reloading the page.
type Server struct {
	config *Config
	source router.TableSource
	guards []router.Guard
	logger *slog.Logger

	middleware     []func(http.Handler) http.Handler
	metricsHandler http.Handler

	navigator *router.Navigator
	hub       *hub
	upgrader  websocket.Upgrader
	handler   http.Handler

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGuards adds navigation guards used by every navigation the server runs.
func WithGuards(guards ...router.Guard) Option {
	return func(s *Server) {
		s.guards = append(s.guards, guards...)
	}
}

// WithMiddleware adds HTTP middleware, applied in order.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.middleware = append(s.middleware, mw...)
	}
}

// WithMetricsHandler sets the handler mounted at Config.MetricsPath.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

// New creates a server over a table source.
func New(source router.TableSource, config *Config, opts ...Option) *Server {
	s := &Server{
		config: config.withDefaults(),
		source: source,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "server")

	s.navigator = s.newNavigator(nil)
	s.hub = newHub(s.logger)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.config.CheckOrigin,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) newNavigator(sink router.TitleSink) *router.Navigator {
	opts := []router.NavigatorOption{
		router.WithGuards(s.guards...),
		router.WithLogger(s.logger),
	}
	if sink != nil {
		opts = append(opts, router.WithTitleSink(sink))
	}
	return router.NewNavigator(s.source, opts...)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	for _, mw := range s.middleware {
		r.Use(mw)
	}

	r.Get("/healthz", s.handleHealth)
	if s.config.MetricsPath != "" && s.metricsHandler != nil {
		r.Handle(s.config.MetricsPath, s.metricsHandler)
	}

	r.Get("/_routes", s.handleRoutes)
	r.Get("/_resolve", s.handleResolve)
	r.Get("/_url", s.handleURL)
	r.Get("/_navigate", s.handleSocket)

	if s.config.StaticDir != "" {
		static := newStaticHandler(s.config.StaticDir, s.config.StaticPrefix)
		r.Method(http.MethodGet, s.config.StaticPrefix+"/*", static)
		r.Method(http.MethodHead, s.config.StaticPrefix+"/*", static)
	}

	r.Get("/*", s.handleShell)
	r.Head("/*", s.handleShell)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Table returns the active route table.
func (s *Server) Table() *router.Table {
	return s.source.Table()
}

// Config returns the server configuration with defaults applied.
func (s *Server) Config() *Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SocketCount returns the number of open navigation sockets.
func (s *Server) SocketCount() int {
	return s.hub.count()
}

// NotifyReload tells connected clients that a new table version is active.
func (s *Server) NotifyReload(table *router.Table) {
	s.hub.broadcast(socketMessage{
		Type:    messageReloaded,
		Version: table.Version(),
	})
}

// Run listens on Config.Address and serves until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			"address", ln.Addr().String(),
			"routes", s.Table().Len(),
			"version", s.Table().Version(),
		)
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes navigation sockets and gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.hub.close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
