package controllers

import (
	"errors"
	"net/http"

	"github.com/iota-uz/crewplan/modules/planning/infrastructure/rentman"
	"github.com/iota-uz/crewplan/modules/planning/services"
	"github.com/iota-uz/crewplan/pkg/composables"
	"github.com/iota-uz/crewplan/pkg/httpapi"
)

func writeJSON(w http.ResponseWriter, payload any) {
	_ = httpapi.WriteJSON(w, http.StatusOK, payload)
}

// writeValidationErrors answers 400 with the failing query parameters in meta.
func writeValidationErrors(w http.ResponseWriter, r *http.Request, errs map[string]string) {
	meta := make(map[string]string, len(errs)+2)
	for field, msg := range errs {
		meta[field] = msg
	}
	meta["path"] = r.URL.Path
	if id, ok := composables.UseRequestID(r.Context()); ok {
		meta["request_id"] = id
	}
	_ = httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeInvalidQuery, "invalid query parameters", meta)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := composables.UseLogger(r.Context())
	switch {
	case errors.Is(err, services.ErrInvalidQuery):
		_ = httpapi.WriteRequestError(w, r, http.StatusBadRequest, httpapi.CodeInvalidQuery, err.Error())
	case rentman.IsUpstreamFailure(err):
		logger.WithError(err).Warn("upstream request failed")
		_ = httpapi.WriteRequestError(w, r, http.StatusBadGateway, httpapi.CodeUpstream, err.Error())
	default:
		logger.WithError(err).Error("request failed")
		_ = httpapi.WriteRequestError(w, r, http.StatusInternalServerError, httpapi.CodeInternal, "internal server error")
	}
}
