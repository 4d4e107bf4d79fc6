package router

import (
	"fmt"

	"github.com/facturacom/webrouter/pkg/routepath"
)

// DefaultTitle is the document title used when a route has no title metadata.
const DefaultTitle = "Factura.com"

// maxRedirects bounds how many redirect rules a single resolution follows.
const maxRedirects = 8

// Table is an ordered, immutable route table.
// It is safe for concurrent use once built.
type Table struct {
	routes       []*RouteDefinition
	byName       map[string]*RouteDefinition
	redirects    []Redirect
	redirectTo   map[string]string
	defaultTitle string
	version      string
}

// TableOption configures table construction.
type TableOption func(*tableOptions)

type tableOptions struct {
	defaultTitle string
	version      string
}

// WithDefaultTitle sets the title used for routes without title metadata.
func WithDefaultTitle(title string) TableOption {
	return func(o *tableOptions) {
		o.defaultTitle = title
	}
}

// WithVersion labels the table with a configuration version.
func WithVersion(version string) TableOption {
	return func(o *tableOptions) {
		o.version = version
	}
}

// NewTable compiles routes and redirects into a table.
// Routes keep their declaration order; names must be unique.
func NewTable(routes []Route, redirects []Redirect, opts ...TableOption) (*Table, error) {
	options := tableOptions{defaultTitle: DefaultTitle}
	for _, opt := range opts {
		opt(&options)
	}

	t := &Table{
		byName:       make(map[string]*RouteDefinition),
		redirectTo:   make(map[string]string),
		defaultTitle: options.defaultTitle,
		version:      options.version,
	}

	for i, r := range routes {
		p, err := compilePattern(r.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRoute, err)
		}

		def := &RouteDefinition{
			path:    r.Path,
			name:    r.Name,
			view:    r.View,
			meta:    make(map[string]string, len(r.Meta)),
			pattern: p,
			index:   i,
		}
		for k, v := range r.Meta {
			def.meta[k] = v
		}

		if def.name != "" {
			if _, dup := t.byName[def.name]; dup {
				return nil, fmt.Errorf("%w: duplicate route name %q", ErrInvalidRoute, def.name)
			}
			t.byName[def.name] = def
		}
		t.routes = append(t.routes, def)
	}

	for _, rd := range redirects {
		if err := t.addRedirect(rd); err != nil {
			return nil, err
		}
	}

	if err := t.checkRedirectLoops(); err != nil {
		return nil, err
	}

	return t, nil
}

// addRedirect validates and records one redirect rule.
func (t *Table) addRedirect(rd Redirect) error {
	from, err := routepath.CanonicalizePath(rd.From)
	if err != nil {
		return fmt.Errorf("%w: redirect from %q: %v", ErrInvalidRoute, rd.From, err)
	}
	if _, dup := t.redirectTo[from.Path]; dup {
		return fmt.Errorf("%w: duplicate redirect from %q", ErrInvalidRoute, from.Path)
	}

	var target string
	switch {
	case rd.To != "" && rd.ToName != "":
		return fmt.Errorf("%w: redirect from %q sets both to and toName", ErrInvalidRoute, rd.From)

	case rd.ToName != "":
		def, ok := t.byName[rd.ToName]
		if !ok {
			return fmt.Errorf("%w: redirect from %q targets unknown route %q", ErrInvalidRoute, rd.From, rd.ToName)
		}
		if !def.IsStatic() {
			return fmt.Errorf("%w: redirect from %q targets dynamic route %q", ErrInvalidRoute, rd.From, rd.ToName)
		}
		target, _ = def.pattern.build(nil)

	case rd.To != "":
		to, err := routepath.CanonicalizePath(rd.To)
		if err != nil {
			return fmt.Errorf("%w: redirect to %q: %v", ErrInvalidRoute, rd.To, err)
		}
		target = to.Path

	default:
		return fmt.Errorf("%w: redirect from %q has no target", ErrInvalidRoute, rd.From)
	}

	if target == from.Path {
		return fmt.Errorf("%w: redirect from %q targets itself", ErrInvalidRoute, from.Path)
	}

	t.redirectTo[from.Path] = target
	t.redirects = append(t.redirects, Redirect{From: from.Path, To: rd.To, ToName: rd.ToName})
	return nil
}

// checkRedirectLoops rejects redirect chains that cycle or run too long.
func (t *Table) checkRedirectLoops() error {
	for start := range t.redirectTo {
		current := start
		for hops := 0; ; hops++ {
			next, ok := t.redirectTo[current]
			if !ok {
				break
			}
			if hops >= maxRedirects || next == start {
				return fmt.Errorf("%w: redirect loop starting at %q", ErrInvalidRoute, start)
			}
			current = next
		}
	}
	return nil
}

// Resolve maps a request path to the first matching route definition.
//
// The path is canonicalized, redirect rules are applied, and definitions are
// scanned in declaration order. A path that no definition matches yields a
// *NoMatchError. Resolve has no side effects.
func (t *Table) Resolve(path string) (*Match, error) {
	canonical, err := routepath.CanonicalizePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}

	current := canonical.Path
	var redirectedFrom string
	for hops := 0; hops < maxRedirects; hops++ {
		next, ok := t.redirectTo[current]
		if !ok {
			break
		}
		if redirectedFrom == "" {
			redirectedFrom = current
		}
		current = next
	}

	parts := routepath.Segments(current)
	for _, def := range t.routes {
		params, ok := def.pattern.match(parts)
		if !ok {
			continue
		}
		return &Match{
			Route:          def,
			Params:         params,
			Path:           path,
			FullPath:       current,
			Query:          canonical.Query,
			RedirectedFrom: redirectedFrom,
		}, nil
	}

	return nil, &NoMatchError{Path: current}
}

// Route returns the definition with the given name.
func (t *Table) Route(name string) (*RouteDefinition, bool) {
	def, ok := t.byName[name]
	return def, ok
}

// Routes returns the definitions in declaration order.
func (t *Table) Routes() []*RouteDefinition {
	out := make([]*RouteDefinition, len(t.routes))
	copy(out, t.routes)
	return out
}

// Redirects returns the redirect rules with canonical sources.
func (t *Table) Redirects() []Redirect {
	out := make([]Redirect, len(t.redirects))
	copy(out, t.redirects)
	return out
}

// RedirectTarget returns the path a canonical path is redirected to.
func (t *Table) RedirectTarget(path string) (string, bool) {
	target, ok := t.redirectTo[path]
	return target, ok
}

// DefaultTitle returns the fallback document title.
func (t *Table) DefaultTitle() string {
	return t.defaultTitle
}

// Version returns the configuration version label.
func (t *Table) Version() string {
	return t.version
}

// Len returns the number of route definitions.
func (t *Table) Len() int {
	return len(t.routes)
}

// Title returns the document title for a navigation using the table default.
func (t *Table) Title(ev NavigationEvent) string {
	return AfterNavigate(ev, t.defaultTitle)
}

// Table implements TableSource.
func (t *Table) Table() *Table {
	return t
}
