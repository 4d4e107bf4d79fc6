package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/facturacom/webrouter/pkg/router"
)

const defaultTracerName = "webrouter"

// OTelConfig configures the OpenTelemetry guard and HTTP middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "webrouter").
	TracerName string

	// IncludeTitle records the resolved document title on navigation spans.
	// Enabled by default.
	IncludeTitle bool

	// Filter determines which navigations to trace.
	// If nil, all navigations are traced.
	Filter func(req *router.NavigationRequest) bool

	// AttributeExtractor adds custom attributes to navigation spans.
	AttributeExtractor func(req *router.NavigationRequest) []attribute.KeyValue

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider
}

// OTelOption configures the OpenTelemetry guard.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeTitle enables/disables recording titles on spans.
func WithIncludeTitle(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeTitle = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(req *router.NavigationRequest) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(req *router.NavigationRequest) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:   defaultTracerName,
		IncludeTitle: true,
	}
}

func (c OTelConfig) tracer() trace.Tracer {
	if c.TracerProvider != nil {
		return c.TracerProvider.Tracer(c.TracerName)
	}
	return otel.Tracer(c.TracerName)
}

// Span attribute keys.
const (
	AttrPath           = attribute.Key("webrouter.path")
	AttrRoute          = attribute.Key("webrouter.route")
	AttrView           = attribute.Key("webrouter.view")
	AttrFullPath       = attribute.Key("webrouter.full_path")
	AttrRedirectedFrom = attribute.Key("webrouter.redirected_from")
	AttrTitle          = attribute.Key("webrouter.title")
	AttrTableVersion   = attribute.Key("webrouter.table_version")
)

// OpenTelemetry creates a guard that traces every navigation.
//
// The span starts before resolution and carries the requested path. When the
// navigation completes the matched route, view and title are added. Errors
// are recorded on the span and returned unchanged. Guards after this one
// receive the span in their context.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given.
func OpenTelemetry(opts ...OTelOption) router.Guard {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	tracer := config.tracer()

	return router.GuardFunc(func(ctx context.Context, req *router.NavigationRequest, next router.NextFunc) (*router.Navigation, error) {
		if config.Filter != nil && !config.Filter(req) {
			return next(ctx)
		}

		attrs := []attribute.KeyValue{AttrPath.String(req.Path)}
		if req.Table != nil {
			attrs = append(attrs, AttrTableVersion.String(req.Table.Version()))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(req)...)
		}

		ctx, span := tracer.Start(ctx, "navigate "+req.Path,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		nav, err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		if ev := nav.Event; ev.Route != nil {
			span.SetAttributes(
				AttrRoute.String(ev.Route.Name()),
				AttrView.String(ev.Route.View()),
				AttrFullPath.String(ev.FullPath),
			)
			span.SetName("navigate " + ev.Route.Path())
			if ev.Redirected() {
				span.SetAttributes(AttrRedirectedFrom.String(ev.RedirectedFrom))
			}
		}
		if config.IncludeTitle {
			span.SetAttributes(AttrTitle.String(nav.Title))
		}
		span.SetStatus(codes.Ok, "")
		return nav, nil
	})
}

// Tracing creates HTTP middleware that starts a server span per request and
// stores it in the request context.
func Tracing(opts ...OTelOption) func(http.Handler) http.Handler {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	tracer := config.tracer()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), fmt.Sprintf("HTTP %s", r.Method),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				),
			)
			defer span.End()

			if id := RequestIDFromContext(r.Context()); id != "" {
				span.SetAttributes(attribute.String("http.request_id", id))
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			span.SetAttributes(attribute.Int("http.status_code", status))
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					span.SetName(fmt.Sprintf("HTTP %s %s", r.Method, pattern))
				}
			}
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		})
	}
}

// SpanFromContext returns the current span, or nil if ctx carries none.
func SpanFromContext(ctx context.Context) trace.Span {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() && !span.IsRecording() {
		return nil
	}
	return span
}
