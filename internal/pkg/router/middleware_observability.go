package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/otclogin/internal/pkg/config"
	"github.com/shandysiswandi/otclogin/internal/pkg/goerror"
	"github.com/shandysiswandi/otclogin/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// maxLoggedBodyBytes caps how much of each body is captured for logs.
const maxLoggedBodyBytes = 32 * 1024

// capturedBody keeps the first maxLoggedBodyBytes written to it.
type capturedBody struct {
	buf       bytes.Buffer
	truncated bool
}

func (c *capturedBody) keep(p []byte) {
	room := maxLoggedBodyBytes - c.buf.Len()
	if len(p) > room {
		p = p[:max(room, 0)]
		c.truncated = true
	}
	c.buf.Write(p)
}

// render returns the body as the "body" log attribute. JSON is decoded so the
// redaction handler and instrument.Mask see its keys.
func (c *capturedBody) render(keys map[string]struct{}) any {
	raw := c.buf.Bytes()

	var out any
	switch {
	case len(raw) == 0:
		return nil
	case json.Unmarshal(raw, &out) == nil:
		out = instrument.Mask(out, keys)
	case utf8.Valid(raw):
		out = string(raw)
	default:
		out = "<binary body omitted>"
	}

	if c.truncated {
		return map[string]any{"body": out, "truncated": true}
	}
	return out
}

// responseRecorder records what the handler sent back.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   capturedBody
	err    error
}

func (w *responseRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.body.keep(p)

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// SetError lets the endpoint adapter attach the handler error to the span.
func (w *responseRecorder) SetError(err error) { w.err = err }

func (w *responseRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *responseRecorder) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// captureRequestBody copies up to maxLoggedBodyBytes of the request body and
// puts the bytes back so the handler still reads the full stream.
func captureRequestBody(r *http.Request) *capturedBody {
	c := &capturedBody{}
	if r.Body == nil || r.Body == http.NoBody {
		return c
	}

	//nolint:errcheck // logging only
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes+1))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), r.Body))
	c.keep(head)
	return c
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

func maskHeaders(headers http.Header, keys map[string]struct{}) http.Header {
	out := headers.Clone()
	for key := range out {
		if instrument.IsMasked(keys, key) {
			out.Set(key, instrument.Masked)
		}
	}
	return out
}

// getMaskKeys always includes instrument.DefaultMaskFields.
func getMaskKeys(cfg config.Config) map[string]struct{} {
	if cfg == nil {
		return instrument.MaskKeys(nil)
	}
	return instrument.MaskKeys(cfg.GetArray("instrument.log_mask_fields"))
}

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newHTTPMetrics(meter metric.Meter) httpMetrics {
	var m httpMetrics
	var err error

	m.requests, err = meter.Int64Counter("http.server.requests", metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	m.duration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration in milliseconds"), metric.WithUnit("ms"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return m
}

func (m httpMetrics) record(ctx context.Context, elapsed time.Duration, attrs []attribute.KeyValue) {
	opt := metric.WithAttributes(attrs...)
	if m.requests != nil {
		m.requests.Add(ctx, 1, opt)
	}
	if m.duration != nil {
		m.duration.Record(ctx, float64(elapsed.Milliseconds()), opt)
	}
}

// middlewareObservability opens a server span per request, records request
// metrics and logs both bodies with configured and default fields masked.
func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	keys := getMaskKeys(cfg)
	tracer := ins.Tracer("http.server")
	metrics := newHTTPMetrics(ins.Meter("http.server"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := matchedRoutePath(r)

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
				),
			)
			defer span.End()

			reqBody := captureRequestBody(r)
			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"uri", r.RequestURI,
				"client_ip", r.RemoteAddr,
				"headers", maskHeaders(r.Header, keys),
				"body", reqBody.render(keys),
			)

			rec := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.statusCode()
			elapsed := time.Since(start)

			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}
			if rec.err != nil {
				span.RecordError(rec.err)
				attrs = append(attrs, attribute.String("error.kind", goerror.CodeOf(rec.err).String()))
			}

			switch {
			case status < http.StatusInternalServerError:
				span.SetStatus(codes.Ok, "")
			case rec.err != nil:
				span.SetStatus(codes.Error, rec.err.Error())
			default:
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			span.SetAttributes(attrs...)
			span.SetAttributes(
				semconv.NetworkProtocolVersionKey.String(r.Proto),
				semconv.ServerAddressKey.String(r.Host),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.Int("http.response_content_length", rec.bytes),
			)
			metrics.record(ctx, elapsed, attrs)

			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", rec.bytes,
				"latency_ms", elapsed.Milliseconds(),
				"body", rec.body.render(keys),
			)
		})
	}
}
