package composables

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/form"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/crewplan/pkg/constants"
)

// UseLogger returns the request-scoped logger set by the logging middleware, or the
// standard logger outside a request.
func UseLogger(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry); ok && logger != nil {
		return logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// UseRequestID returns the request id assigned by the logging middleware.
func UseRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(constants.RequestIDKey).(string)
	return id, ok && id != ""
}

// UseRequestStart returns when the logging middleware first saw the request.
func UseRequestStart(ctx context.Context) (time.Time, bool) {
	start, ok := ctx.Value(constants.RequestStart).(time.Time)
	return start, ok
}

var decoder = form.NewDecoder()

// UseQuery decodes the URL query into v using its `form` tags.
func UseQuery[T any](v T, r *http.Request) (T, error) {
	return v, decoder.Decode(v, r.URL.Query())
}

// GetLastQueryParam returns the last occurrence of a query parameter.
//
// Example:
//
//	URL: /api/bookings?crewIds=1&crewIds=2
//	GetLastQueryParam(r, "crewIds") returns "2"
func GetLastQueryParam(r *http.Request, key string) string {
	values := r.URL.Query()[key]
	if len(values) > 0 {
		return values[len(values)-1]
	}
	return ""
}

// GetLastQueryParams returns the last occurrence of multiple query parameters.
func GetLastQueryParams(r *http.Request, keys ...string) map[string]string {
	result := make(map[string]string, len(keys))
	query := r.URL.Query()
	for _, key := range keys {
		if values := query[key]; len(values) > 0 {
			result[key] = values[len(values)-1]
		}
	}
	return result
}
