package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/iota-uz/crewplan/pkg/composables"
)

const (
	CodeInvalidQuery     = "INVALID_QUERY"
	CodeUpstream         = "UPSTREAM_ERROR"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeRateLimited      = "RATE_LIMITED"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteRequestError writes an error envelope carrying the request id and path.
func WriteRequestError(w http.ResponseWriter, r *http.Request, status int, code, message string) error {
	meta := map[string]string{"path": r.URL.Path}
	if id, ok := composables.UseRequestID(r.Context()); ok {
		meta["request_id"] = id
	}
	return WriteError(w, status, code, message, meta)
}

func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WriteRequestError(w, r, http.StatusNotFound, CodeNotFound, "route not found")
	})
}

func MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WriteRequestError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})
}
