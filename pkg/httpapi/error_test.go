package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/crewplan/pkg/constants"
)

func TestWriteRequestError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req = req.WithContext(context.WithValue(req.Context(), constants.RequestIDKey, "req-1"))
	rec := httptest.NewRecorder()

	require.NoError(t, WriteRequestError(rec, req, http.StatusBadRequest, CodeInvalidQuery, "startDate is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var env ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, CodeInvalidQuery, env.Code)
	assert.Equal(t, "startDate is required", env.Message)
	assert.Equal(t, map[string]string{"path": "/api/bookings", "request_id": "req-1"}, env.Meta)
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NotFound().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), CodeNotFound)
}
