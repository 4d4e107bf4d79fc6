// Package server serves the client routes of a route table over HTTP.
//
// Endpoints:
//
//	GET /healthz         liveness probe
//	GET /metrics         Prometheus metrics, when a handler is configured
//	GET /_routes         JSON listing of the active table
//	GET /_resolve?path=  JSON result of navigating to path
//	GET /_url?name=      JSON path built for a named route
//	GET /_navigate       WebSocket navigation channel
//	GET /assets/*        static files, when a directory is configured
//	GET /*               HTML shell for client routes
//
// The shell carries the navigation's document title in <title>, so the first
// paint already shows the right title. Paths with a redirect rule answer
// 302 to the target; unmatched paths answer 404 with the default title.
//
// Over the navigation socket a client sends {"path": "/show/..."} or
// {"name": "Show", "params": {"uuid": "..."}} and receives a "navigated"
// message with the route, params and title, or an "error" message with a
// coded error. Each connection tracks its own current title.
package server
