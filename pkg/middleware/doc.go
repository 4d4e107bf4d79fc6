// Package middleware provides navigation guards and HTTP middleware for
// observability.
//
// # Navigation Guards
//
// Prometheus and OpenTelemetry return router.Guard values that wrap every
// navigation:
//
//	nav := router.NewNavigator(live,
//	    router.WithGuards(
//	        middleware.OpenTelemetry(),
//	        middleware.Prometheus(),
//	    ),
//	)
//
// The Prometheus guard counts navigations by route and outcome, times them,
// and counts redirects and title updates by source. The OpenTelemetry guard
// opens a span per navigation carrying the requested path, the matched
// route and view, and the resolved title.
//
// # HTTP Middleware
//
// RequestID, AccessLog, Tracing and HTTPMetrics are plain
// func(http.Handler) http.Handler values for use with chi:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID, middleware.AccessLog(logger))
//	r.Use(middleware.Tracing(), middleware.HTTPMetrics())
//
// Expose the collected metrics with promhttp:
//
//	r.Handle("/metrics", promhttp.Handler())
package middleware
