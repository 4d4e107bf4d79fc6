package router

import "maps"

// RouteOption configures a route added through a Builder.
type RouteOption func(*Route)

// WithTitle sets the route's title metadata.
func WithTitle(title string) RouteOption {
	return WithMeta(MetaTitle, title)
}

// WithMeta sets a metadata entry on the route.
func WithMeta(key, value string) RouteOption {
	return func(r *Route) {
		if r.Meta == nil {
			r.Meta = make(map[string]string)
		}
		r.Meta[key] = value
	}
}

// Builder assembles a Table with chained calls.
//
// Example:
//
//	table, err := router.NewBuilder().
//	    RedirectToName("/", "Home").
//	    Route("/home", "Home", "Home", router.WithTitle("Home - Factura.com")).
//	    Build()
type Builder struct {
	routes    []Route
	redirects []Redirect
	opts      []TableOption
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Route appends a route definition.
func (b *Builder) Route(path, name, view string, opts ...RouteOption) *Builder {
	r := Route{Path: path, Name: name, View: view}
	for _, opt := range opts {
		opt(&r)
	}
	b.routes = append(b.routes, r)
	return b
}

// Add appends an already described route.
func (b *Builder) Add(r Route) *Builder {
	r.Meta = maps.Clone(r.Meta)
	b.routes = append(b.routes, r)
	return b
}

// Redirect rewrites from to the path to.
func (b *Builder) Redirect(from, to string) *Builder {
	b.redirects = append(b.redirects, Redirect{From: from, To: to})
	return b
}

// RedirectToName rewrites from to the path of the named route.
func (b *Builder) RedirectToName(from, name string) *Builder {
	b.redirects = append(b.redirects, Redirect{From: from, ToName: name})
	return b
}

// DefaultTitle sets the fallback document title.
func (b *Builder) DefaultTitle(title string) *Builder {
	b.opts = append(b.opts, WithDefaultTitle(title))
	return b
}

// Version labels the table.
func (b *Builder) Version(version string) *Builder {
	b.opts = append(b.opts, WithVersion(version))
	return b
}

// Build compiles the table.
func (b *Builder) Build() (*Table, error) {
	return NewTable(b.routes, b.redirects, b.opts...)
}

// MustBuild is like Build but panics on error.
// Use it for tables declared in code at start-up.
func (b *Builder) MustBuild() *Table {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
