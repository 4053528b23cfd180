package rentman

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// UpstreamError is a non-2xx answer from the API.
type UpstreamError struct {
	Status  int
	Message string
	URL     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("rentman: HTTP %d on %s: %s", e.Status, e.URL, e.Message)
}

// TransportError covers network failures and timeouts.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rentman: request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is a 2xx answer whose body is not the expected JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rentman: invalid JSON from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsUpstreamFailure reports whether err came from talking to the API. Such failures
// degrade a single lookup and never abort a whole batch.
func IsUpstreamFailure(err error) bool {
	var (
		upstream  *UpstreamError
		transport *TransportError
		decode    *DecodeError
	)
	return errors.As(err, &upstream) || errors.As(err, &transport) || errors.As(err, &decode)
}

func IsNotFound(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream) && upstream.Status == http.StatusNotFound
}

func retryable(err error) bool {
	var transport *TransportError
	if errors.As(err, &transport) {
		return true
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Status {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

// errorMessage picks message, error or detail from a JSON body, then the raw body.
func errorMessage(status int, body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, name := range []string{"message", "error", "detail"} {
			raw, ok := fields[name]
			if !ok || string(raw) == "null" {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				if s = strings.TrimSpace(s); s != "" {
					return s
				}
				continue
			}
			return string(raw)
		}
	}
	if raw := strings.TrimSpace(string(body)); raw != "" {
		return raw
	}
	return fmt.Sprintf("HTTP error %d", status)
}
