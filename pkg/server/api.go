package server

import (
	"encoding/json"
	"net/http"

	"github.com/facturacom/webrouter/internal/errors"
	"github.com/facturacom/webrouter/pkg/router"
)

// NavigationResult is the JSON form of a completed navigation.
type NavigationResult struct {
	Route          string            `json:"route"`
	View           string            `json:"view,omitempty"`
	Pattern        string            `json:"pattern"`
	Path           string            `json:"path"`
	FullPath       string            `json:"fullPath"`
	Params         map[string]string `json:"params,omitempty"`
	Query          string            `json:"query,omitempty"`
	RedirectedFrom string            `json:"redirectedFrom,omitempty"`
	Title          string            `json:"title"`
	Replace        bool              `json:"replace,omitempty"`
	TableVersion   string            `json:"tableVersion,omitempty"`
}

// NewNavigationResult converts a navigation to its JSON form. The table
// version is taken from the table that resolved the navigation.
func NewNavigationResult(nav *router.Navigation) NavigationResult {
	ev := nav.Event
	res := NavigationResult{
		Path:           ev.Path,
		FullPath:       ev.FullPath,
		Params:         ev.Params,
		Query:          ev.Query,
		RedirectedFrom: ev.RedirectedFrom,
		Title:          nav.Title,
		Replace:        nav.Replace,
	}
	if ev.Route != nil {
		res.Route = ev.Route.Name()
		res.View = ev.Route.View()
		res.Pattern = ev.Route.Path()
	}
	if nav.Table != nil {
		res.TableVersion = nav.Table.Version()
	}
	return res
}

// RouteInfo is the JSON form of a route definition.
type RouteInfo struct {
	Name   string            `json:"name,omitempty"`
	Path   string            `json:"path"`
	View   string            `json:"view,omitempty"`
	Meta   map[string]string `json:"meta,omitempty"`
	Params []ParamInfo       `json:"params,omitempty"`
}

// ParamInfo is the JSON form of a route parameter.
type ParamInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	CatchAll bool   `json:"catchAll,omitempty"`
}

// TableInfo is the JSON listing of a route table.
type TableInfo struct {
	Version      string            `json:"version"`
	DefaultTitle string            `json:"defaultTitle"`
	Redirects    []router.Redirect `json:"redirects"`
	Routes       []RouteInfo       `json:"routes"`
}

// DescribeTable builds the JSON listing of a table.
func DescribeTable(t *router.Table) TableInfo {
	info := TableInfo{
		Version:      t.Version(),
		DefaultTitle: t.DefaultTitle(),
		Redirects:    t.Redirects(),
		Routes:       make([]RouteInfo, 0, t.Len()),
	}
	for _, def := range t.Routes() {
		ri := RouteInfo{
			Name: def.Name(),
			Path: def.Path(),
			View: def.View(),
			Meta: def.Meta(),
		}
		for _, p := range def.Params() {
			ri.Params = append(ri.Params, ParamInfo{Name: p.Name, Type: p.Type, CatchAll: p.CatchAll})
		}
		info.Routes = append(info.Routes, ri)
	}
	return info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DescribeTable(s.Table()))
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.writeError(w, r, errors.New("E203").WithDetail("The path query parameter is required"))
		return
	}

	nav, err := s.navigator.Navigate(r.Context(), path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewNavigationResult(nav))
}

func (s *Server) handleURL(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	name := query.Get("name")
	if name == "" {
		s.writeError(w, r, errors.New("E202").WithDetail("The name query parameter is required"))
		return
	}

	params := make(map[string]string, len(query))
	for key := range query {
		if key != "name" {
			params[key] = query.Get(key)
		}
	}

	path, err := s.Table().URL(name, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	coded := errors.Classify(err)
	if coded.Status() >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, coded.Status(), coded.Body())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
