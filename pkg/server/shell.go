package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"html/template"
	"net/http"

	"github.com/facturacom/webrouter/internal/errors"
	"github.com/facturacom/webrouter/pkg/routepath"
	"github.com/facturacom/webrouter/pkg/router"
)

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{- if .Stylesheet}}
<link rel="stylesheet" href="{{.Stylesheet}}">
{{- end}}
</head>
<body>
<div id="{{.AppName}}" data-route="{{.Route}}" data-view="{{.View}}" data-params="{{.Params}}" data-table-version="{{.Version}}"{{if .Code}} data-error="{{.Code}}"{{end}}></div>
{{- if .Script}}
<script type="module" src="{{.Script}}"></script>
{{- end}}
</body>
</html>
`))

type shellData struct {
	Lang       string
	AppName    string
	Script     string
	Stylesheet string
	Title      string
	Route      string
	View       string
	Params     string
	Version    string
	Code       string
}

func (s *Server) shellData(table *router.Table, title string) shellData {
	shell := s.config.Shell
	return shellData{
		Lang:       shell.Lang,
		AppName:    shell.AppName,
		Script:     shell.Script,
		Stylesheet: shell.Stylesheet,
		Title:      title,
		Params:     "{}",
		Version:    table.Version(),
	}
}

// handleShell serves the HTML document for a client route.
//
// Redirect rules and non-canonical paths are answered with HTTP redirects so
// the browser URL matches the resolved route. Unmatched paths get the shell
// with the default title and status 404.
func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	table := s.Table()

	canonical, err := routepath.CanonicalizePath(r.URL.EscapedPath())
	if err != nil {
		s.renderShell(w, r, http.StatusBadRequest, s.errorShell(table, errors.Classify(err)))
		return
	}

	if target, ok := table.RedirectTarget(canonical.Path); ok {
		http.Redirect(w, r, withRawQuery(target, r.URL.RawQuery), http.StatusFound)
		return
	}
	if canonical.Changed {
		http.Redirect(w, r, withRawQuery(canonical.Path, r.URL.RawQuery), http.StatusMovedPermanently)
		return
	}

	nav, err := s.navigator.Navigate(r.Context(), withRawQuery(canonical.Path, r.URL.RawQuery))
	if err != nil {
		coded := errors.Classify(err)
		status := coded.Status()
		if stderrors.Is(err, router.ErrNoMatchingRoute) {
			status = http.StatusNotFound
		}
		s.renderShell(w, r, status, s.errorShell(table, coded))
		return
	}

	data := s.shellData(nav.Table, nav.Title)
	if def := nav.Event.Route; def != nil {
		data.Route = def.Name()
		data.View = def.View()
	}
	if len(nav.Event.Params) > 0 {
		if raw, err := json.Marshal(nav.Event.Params); err == nil {
			data.Params = string(raw)
		}
	}
	s.renderShell(w, r, http.StatusOK, data)
}

func (s *Server) errorShell(table *router.Table, coded *errors.Error) shellData {
	data := s.shellData(table, table.DefaultTitle())
	data.Code = coded.Code
	return data
}

func (s *Server) renderShell(w http.ResponseWriter, r *http.Request, status int, data shellData) {
	var buf bytes.Buffer
	if err := shellTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("shell render failed", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(buf.Bytes())
	}
}

func withRawQuery(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}
