package router

import "maps"

// MetaTitle is the metadata key holding a route's document title.
const MetaTitle = "title"

// Route describes a route to be added to a table.
type Route struct {
	// Path is the URL pattern (e.g., "/show/:uuid")
	Path string `json:"path" yaml:"path" toml:"path"`

	// Name is the logical identifier used for programmatic navigation
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`

	// View is an opaque reference to the renderable unit bound to the route
	View string `json:"view,omitempty" yaml:"view,omitempty" toml:"view,omitempty"`

	// Meta holds string metadata such as "title"
	Meta map[string]string `json:"meta,omitempty" yaml:"meta,omitempty" toml:"meta,omitempty"`
}

// Redirect rewrites one path to another before matching.
// Exactly one of To or ToName must be set.
type Redirect struct {
	// From is the path being rewritten
	From string `json:"from" yaml:"from" toml:"from"`

	// To is the target path
	To string `json:"to,omitempty" yaml:"to,omitempty" toml:"to,omitempty"`

	// ToName names the target route; its pattern must be static
	ToName string `json:"toName,omitempty" yaml:"toName,omitempty" toml:"toName,omitempty"`
}

// ParamDef defines a route parameter.
type ParamDef struct {
	// Name is the parameter name (e.g., "uuid")
	Name string

	// Type is the parameter type (e.g., "string", "int", "uuid")
	Type string

	// CatchAll indicates the parameter captures the rest of the path
	CatchAll bool
}

// RouteDefinition is a compiled, immutable route held by a Table.
type RouteDefinition struct {
	path    string
	name    string
	view    string
	meta    map[string]string
	pattern *pattern
	index   int
}

// Path returns the route pattern.
func (d *RouteDefinition) Path() string { return d.path }

// Name returns the route name; unnamed routes return "".
func (d *RouteDefinition) Name() string { return d.name }

// View returns the view reference bound to the route.
func (d *RouteDefinition) View() string { return d.view }

// Index returns the declaration position of the route within its table.
func (d *RouteDefinition) Index() int { return d.index }

// Meta returns a copy of the route metadata.
func (d *RouteDefinition) Meta() map[string]string {
	return maps.Clone(d.meta)
}

// MetaValue returns a single metadata value.
func (d *RouteDefinition) MetaValue(key string) (string, bool) {
	v, ok := d.meta[key]
	return v, ok
}

// Title returns the route's title metadata, if set and non-empty.
func (d *RouteDefinition) Title() (string, bool) {
	v, ok := d.meta[MetaTitle]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Params returns the dynamic segments of the pattern in order.
func (d *RouteDefinition) Params() []ParamDef {
	return d.pattern.params()
}

// IsStatic reports whether the pattern has no dynamic segments.
func (d *RouteDefinition) IsStatic() bool {
	return len(d.pattern.params()) == 0
}

// Spec returns the route as a Route value, suitable for serialization.
func (d *RouteDefinition) Spec() Route {
	return Route{
		Path: d.path,
		Name: d.name,
		View: d.view,
		Meta: d.Meta(),
	}
}

// Match contains the result of resolving a path against a table.
type Match struct {
	// Route is the matched route definition
	Route *RouteDefinition

	// Params are the captured dynamic segment values
	Params map[string]string

	// Path is the path as requested
	Path string

	// FullPath is the canonical path that matched, after redirects
	FullPath string

	// Query is the query string (without leading "?")
	Query string

	// RedirectedFrom is the canonical path that was redirected, if any
	RedirectedFrom string
}

// Event returns the navigation event for the match.
func (m *Match) Event() NavigationEvent {
	return NavigationEvent{
		Route:          m.Route,
		Params:         maps.Clone(m.Params),
		Path:           m.Path,
		FullPath:       m.FullPath,
		Query:          m.Query,
		RedirectedFrom: m.RedirectedFrom,
	}
}

// NavigationEvent is produced by each successful resolution and consumed
// once by the after-navigate step.
type NavigationEvent struct {
	Route          *RouteDefinition
	Params         map[string]string
	Path           string
	FullPath       string
	Query          string
	RedirectedFrom string
}

// Redirected reports whether a redirect rule was applied.
func (e NavigationEvent) Redirected() bool {
	return e.RedirectedFrom != ""
}

// Navigation is the outcome of a completed navigation.
type Navigation struct {
	// Event is the resolved navigation event
	Event NavigationEvent

	// Title is the document title to display
	Title string

	// Replace asks the display owner to replace the current history entry
	Replace bool

	// Table is the route table that resolved the navigation
	Table *Table
}
