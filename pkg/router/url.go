package router

import (
	"fmt"
	"net/url"
)

// URL builds the path for a named route.
// Every dynamic segment of the route must have a non-empty value in params;
// typed segments are validated. Extra params are ignored.
//
//	path, err := table.URL("Show", map[string]string{"uuid": "9f3c"})
//	// path == "/show/9f3c"
func (t *Table) URL(name string, params map[string]string) (string, error) {
	def, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
	path, err := def.pattern.build(params)
	if err != nil {
		return "", fmt.Errorf("route %q: %w", name, err)
	}
	return path, nil
}

// URLWithQuery builds the path for a named route and appends a query string.
func (t *Table) URLWithQuery(name string, params map[string]string, query url.Values) (string, error) {
	path, err := t.URL(name, params)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return path, nil
}
