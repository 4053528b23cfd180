package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/crewplan/pkg/constants"
	"github.com/iota-uz/crewplan/pkg/httpapi"
	"github.com/iota-uz/crewplan/pkg/routing"
)

type LoggerOptions struct {
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodyLength   int

	RequestIDHeader string
	RealIPHeader    string
	Classifier      *routing.Classifier
	Repanic         bool
}

func NewLoggerOptions(logRequestBody bool, logResponseBody bool, maxBodyLength int) LoggerOptions {
	return LoggerOptions{
		LogRequestBody:  logRequestBody,
		LogResponseBody: logResponseBody,
		MaxBodyLength:   maxBodyLength,
	}
}

// DefaultLoggerOptions skips response bodies: booking payloads are large.
func DefaultLoggerOptions() LoggerOptions {
	opts := NewLoggerOptions(true, false, 512)
	opts.RequestIDHeader = "X-Request-ID"
	opts.RealIPHeader = "X-Real-IP"
	return opts
}

type responseCaptureWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
	body          *bytes.Buffer
	maxBody       int
}

func (w *responseCaptureWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

// Status returns the HTTP status code
func (w *responseCaptureWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *responseCaptureWriter) Write(b []byte) (int, error) {
	w.statusWritten = true
	if w.body != nil && w.body.Len() < w.maxBody {
		w.body.Write(b[:min(len(b), w.maxBody-w.body.Len())])
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseCaptureWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *responseCaptureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}

func wrapResponseWriter(w http.ResponseWriter, opts LoggerOptions) *responseCaptureWriter {
	cw := &responseCaptureWriter{ResponseWriter: w, maxBody: opts.MaxBodyLength}
	if opts.LogResponseBody {
		cw.body = &bytes.Buffer{}
	}
	return cw
}

func getRealIP(r *http.Request, header string) string {
	if ip, ok := realIP(r, header); ok {
		return ip
	}
	return r.RemoteAddr
}

func getRequestID(r *http.Request, header string) string {
	if header != "" {
		if id := strings.TrimSpace(r.Header.Get(header)); id != "" {
			return id
		}
	}
	return uuid.New().String()
}

var tracer = otel.Tracer("crewplan-middleware")

func TracedMiddleware(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(
				r.Context(),
				"middleware."+name,
				trace.WithAttributes(
					attribute.String("middleware.name", name),
					attribute.String("http.method", r.Method),
					attribute.String("http.url", r.URL.String()),
				),
			)
			defer span.End()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func truncate(s string, n int) string {
	if n > 0 && len(s) > n {
		return s[:n] + "..."
	}
	return s
}

// WithLogger logs every request with a request id, opens the root span, and turns
// handler panics into 500 responses (a JSON envelope on API routes).
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	classifier := opts.Classifier
	if classifier == nil {
		classifier = routing.NewClassifier(routing.DefaultRules())
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				requestID := getRequestID(r, opts.RequestIDHeader)
				ip := getRealIP(r, opts.RealIPHeader)

				fieldsLogger := logger.WithFields(logrus.Fields{
					"request-id": requestID,
					"path":       r.URL.Path,
					"method":     r.Method,
				})
				fieldsLogger.WithFields(logrus.Fields{
					"query":      r.URL.RawQuery,
					"ip":         ip,
					"user-agent": r.UserAgent(),
				}).Info("request started")

				if opts.LogRequestBody && r.Body != nil && r.Method != http.MethodGet &&
					strings.Contains(r.Header.Get("Content-Type"), "application/json") {
					bodyBuf := new(bytes.Buffer)
					if _, err := io.Copy(bodyBuf, r.Body); err != nil {
						fieldsLogger.WithError(err).Error("failed to read request-body")
						_ = httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeInvalidQuery, "failed to read request-body", nil)
						return
					}
					r.Body = io.NopCloser(bytes.NewReader(bodyBuf.Bytes()))
					fieldsLogger.WithField("request-body", truncate(bodyBuf.String(), opts.MaxBodyLength)).Info("request-body captured")
				}

				propagator := propagation.TraceContext{}
				ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
				ctx, span := tracer.Start(
					ctx,
					"http.request",
					trace.WithAttributes(
						attribute.String("http.method", r.Method),
						attribute.String("http.route", r.URL.Path),
						attribute.String("http.request_id", requestID),
						attribute.String("net.peer.ip", ip),
					),
				)
				defer span.End()

				if spanContext := span.SpanContext(); spanContext.HasTraceID() {
					traceID := spanContext.TraceID().String()
					w.Header().Set("X-Trace-Id", traceID)
					fieldsLogger = fieldsLogger.WithField("trace-id", traceID)
				}
				w.Header().Set("X-Request-Id", requestID)

				ctx = context.WithValue(ctx, constants.LoggerKey, fieldsLogger)
				ctx = context.WithValue(ctx, constants.RequestIDKey, requestID)
				ctx = context.WithValue(ctx, constants.RequestStart, start)
				r = r.WithContext(ctx)

				wrappedWriter := wrapResponseWriter(w, opts)

				defer func() {
					recovered := recover()
					if recovered == nil {
						return
					}
					fieldsLogger.WithFields(logrus.Fields{
						"panic":    recovered,
						"stack":    string(debug.Stack()),
						"status":   http.StatusInternalServerError,
						"duration": time.Since(start),
					}).Error("panic recovered in request handler")

					if !wrappedWriter.statusWritten {
						if classifier.IsAPI(r.URL.Path) {
							_ = httpapi.WriteRequestError(wrappedWriter, r, http.StatusInternalServerError,
								httpapi.CodeInternal, "internal server error")
						} else {
							http.Error(wrappedWriter, "Internal Server Error", http.StatusInternalServerError)
						}
					}
					if opts.Repanic {
						panic(recovered)
					}
				}()

				next.ServeHTTP(wrappedWriter, r)

				statusCode := wrappedWriter.Status()
				duration := time.Since(start)
				completed := fieldsLogger.WithFields(logrus.Fields{
					"duration":     duration,
					"status-code":  statusCode,
					"status-class": statusCode / 100,
				})
				if wrappedWriter.body != nil && wrappedWriter.body.Len() > 0 {
					body := wrappedWriter.body.Bytes()
					if json.Valid(body) {
						completed = completed.WithField("response-body", json.RawMessage(body))
					} else {
						completed = completed.WithField("response-body", string(body))
					}
				}
				completed.Info("request completed")

				span.SetAttributes(
					attribute.Int64("http.request_duration_ms", duration.Milliseconds()),
					attribute.Int("http.status_code", statusCode),
				)
			},
		)
	}
}
