package router

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// TableSource supplies the table used for a navigation.
// *Table implements it; live sources can swap tables between navigations.
type TableSource interface {
	Table() *Table
}

// NavigateOptions configures a single navigation.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Query are query parameters to add to the URL.
	Query url.Values
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithQuery adds query parameters to the navigation URL.
func WithQuery(query url.Values) NavigateOption {
	return func(o *NavigateOptions) {
		o.Query = query
	}
}

// NavigationRequest represents a pending navigation as seen by guards.
type NavigationRequest struct {
	// Path is the requested path, including any added query
	Path string

	// Options are the navigation options
	Options NavigateOptions

	// Table is the table the navigation resolves against
	Table *Table
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithGuards appends guards to the navigator.
func WithGuards(guards ...Guard) NavigatorOption {
	return func(n *Navigator) {
		n.guards = append(n.guards, guards...)
	}
}

// WithTitleSink sets where titles are written after each navigation.
func WithTitleSink(sink TitleSink) NavigatorOption {
	return func(n *Navigator) {
		n.sink = sink
	}
}

// WithLogger sets the navigator logger.
func WithLogger(logger *slog.Logger) NavigatorOption {
	return func(n *Navigator) {
		n.logger = logger
	}
}

// Navigator resolves paths, runs guards, and produces the document title.
// Each navigation runs to completion before Navigate returns.
type Navigator struct {
	source TableSource
	guards []Guard
	sink   TitleSink
	logger *slog.Logger
}

// NewNavigator creates a navigator over a table source.
func NewNavigator(source TableSource, opts ...NavigatorOption) *Navigator {
	n := &Navigator{source: source}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	return n
}

// Navigate resolves path and completes the navigation.
// On success the title is written to the sink exactly once and returned.
func (n *Navigator) Navigate(ctx context.Context, path string, opts ...NavigateOption) (*Navigation, error) {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}

	return n.navigate(ctx, n.source.Table(), path, options)
}

func (n *Navigator) navigate(ctx context.Context, table *Table, path string, options NavigateOptions) (*Navigation, error) {
	req := &NavigationRequest{
		Path:    withQuery(path, options.Query),
		Options: options,
		Table:   table,
	}

	nav, err := ComposeGuards(ctx, req, n.guards, func(ctx context.Context) (*Navigation, error) {
		m, err := req.Table.Resolve(req.Path)
		if err != nil {
			return nil, err
		}
		ev := m.Event()
		return &Navigation{
			Event:   ev,
			Title:   req.Table.Title(ev),
			Replace: req.Options.Replace,
			Table:   req.Table,
		}, nil
	})
	if err != nil {
		n.logger.Debug("navigation failed", "path", path, "error", err)
		return nil, err
	}

	if n.sink != nil {
		n.sink.SetTitle(nav.Title)
	}
	if nav.Event.Route != nil {
		n.logger.Debug("navigated",
			"path", path,
			"route", nav.Event.Route.Name(),
			"title", nav.Title,
		)
	}
	return nav, nil
}

// NavigateTo navigates to a named route.
func (n *Navigator) NavigateTo(ctx context.Context, name string, params map[string]string, opts ...NavigateOption) (*Navigation, error) {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}

	table := n.source.Table()
	path, err := table.URL(name, params)
	if err != nil {
		return nil, err
	}
	return n.navigate(ctx, table, path, options)
}

// withQuery appends query values to a path that may already carry a query.
func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + query.Encode()
}
