package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/facturacom/webrouter/pkg/router"
)

// recorder is a minimal TracerProvider that keeps every span it starts.
type recorder struct {
	embedded.TracerProvider

	mu    sync.Mutex
	spans []*recordedSpan
}

func (r *recorder) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return recordingTracer{r: r}
}

func (r *recorder) all() []*recordedSpan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*recordedSpan(nil), r.spans...)
}

type recordingTracer struct {
	embedded.Tracer
	r *recorder
}

func (t recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	span := &recordedSpan{
		name:  name,
		attrs: map[attribute.Key]attribute.Value{},
		sc: trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: trace.TraceID{1},
			SpanID:  trace.SpanID{byte(len(t.r.spans) + 1)},
		}),
	}
	span.SetAttributes(cfg.Attributes()...)

	t.r.mu.Lock()
	t.r.spans = append(t.r.spans, span)
	t.r.mu.Unlock()
	return trace.ContextWithSpan(ctx, span), span
}

type recordedSpan struct {
	noop.Span

	mu     sync.Mutex
	name   string
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	errs   []error
	ended  bool
	sc     trace.SpanContext
}

func (s *recordedSpan) SpanContext() trace.SpanContext { return s.sc }
func (s *recordedSpan) IsRecording() bool              { return !s.ended }
func (s *recordedSpan) End(...trace.SpanEndOption)     { s.ended = true }
func (s *recordedSpan) SetName(name string)            { s.name = name }
func (s *recordedSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}
func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }
func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) attr(key attribute.Key) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.attrs[key]
	if !ok {
		return ""
	}
	return v.Emit()
}

func TestOpenTelemetryGuard(t *testing.T) {
	rec := &recorder{}
	var inner trace.Span
	capture := router.GuardFunc(func(ctx context.Context, req *router.NavigationRequest, next router.NextFunc) (*router.Navigation, error) {
		inner = SpanFromContext(ctx)
		return next(ctx)
	})

	nav := router.NewNavigator(facturaTable(t),
		router.WithGuards(OpenTelemetry(WithTracerProvider(rec)), capture),
	)

	got, err := nav.Navigate(context.Background(), "/show/8f14e45f-ceea-467f-a0e6-3b2f6c6b1a2d")
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	spans := rec.all()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	span := spans[0]

	if inner != trace.Span(span) {
		t.Error("later guards should receive the navigation span in ctx")
	}
	if span.name != "navigate /show/:uuid" {
		t.Errorf("span name = %q", span.name)
	}
	if span.attr(AttrPath) != "/show/8f14e45f-ceea-467f-a0e6-3b2f6c6b1a2d" {
		t.Errorf("path attr = %q", span.attr(AttrPath))
	}
	if span.attr(AttrRoute) != "Show" || span.attr(AttrView) != "Show" {
		t.Errorf("route attrs = %q/%q", span.attr(AttrRoute), span.attr(AttrView))
	}
	if span.attr(AttrTitle) != got.Title {
		t.Errorf("title attr = %q, want %q", span.attr(AttrTitle), got.Title)
	}
	if span.attr(AttrTableVersion) != "4" {
		t.Errorf("table version attr = %q", span.attr(AttrTableVersion))
	}
	if span.status != codes.Ok || !span.ended {
		t.Errorf("status = %v ended = %v", span.status, span.ended)
	}
}

func TestOpenTelemetryGuardRedirectAndError(t *testing.T) {
	rec := &recorder{}
	nav := router.NewNavigator(facturaTable(t),
		router.WithGuards(OpenTelemetry(WithTracerProvider(rec), WithIncludeTitle(false))),
	)

	if _, err := nav.Navigate(context.Background(), "/"); err != nil {
		t.Fatalf("Navigate(/): %v", err)
	}
	if _, err := nav.Navigate(context.Background(), "/missing"); err == nil {
		t.Fatal("Navigate(/missing) should fail")
	}

	spans := rec.all()
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}
	if spans[0].attr(AttrRedirectedFrom) != "/" {
		t.Errorf("redirected_from = %q, want /", spans[0].attr(AttrRedirectedFrom))
	}
	if spans[0].attr(AttrTitle) != "" {
		t.Error("title attr should be omitted when disabled")
	}
	if spans[1].status != codes.Error || len(spans[1].errs) != 1 {
		t.Errorf("error span status = %v errs = %v", spans[1].status, spans[1].errs)
	}
}

func TestOpenTelemetryGuardFilter(t *testing.T) {
	rec := &recorder{}
	nav := router.NewNavigator(facturaTable(t),
		router.WithGuards(OpenTelemetry(
			WithTracerProvider(rec),
			WithNavigationFilter(func(req *router.NavigationRequest) bool { return req.Path != "/home" }),
			WithAttributeExtractor(func(req *router.NavigationRequest) []attribute.KeyValue {
				return []attribute.KeyValue{attribute.String("test.attr", "ok")}
			}),
		)),
	)

	_, _ = nav.Navigate(context.Background(), "/home")
	_, _ = nav.Navigate(context.Background(), "/create")

	spans := rec.all()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].attr("test.attr") != "ok" {
		t.Error("custom attribute missing")
	}
}

func TestTracingMiddleware(t *testing.T) {
	rec := &recorder{}
	var inner trace.Span
	h := RequestID(Tracing(WithTracerProvider(rec))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = SpanFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	spans := rec.all()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if inner != trace.Span(spans[0]) {
		t.Error("handler should see the request span")
	}
	if spans[0].attr("http.status_code") != "418" {
		t.Errorf("status attr = %q", spans[0].attr("http.status_code"))
	}
	if spans[0].attr("http.request_id") != "req-1" {
		t.Errorf("request id attr = %q", spans[0].attr("http.request_id"))
	}
}

func TestSpanFromContextEmpty(t *testing.T) {
	if SpanFromContext(context.Background()) != nil {
		t.Error("SpanFromContext on a bare context should be nil")
	}
}
