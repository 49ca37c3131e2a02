// Package handlers exposes the JSON HTTP surface. Handlers validate input,
// call the layer below and render the result; every error is recovered here
// and converted to a response, none are silently swallowed.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"library-loan-tracker/internal/apperr"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError maps the domain taxonomy onto HTTP statuses. Unknown errors
// are logged and masked behind a generic retry-suggesting message.
func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	var de *apperr.Error
	if !errors.As(err, &de) {
		log.Error("unexpected error", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorBody{
			Error: "internal error, please try again",
			Code:  apperr.CodeUnavailable,
		})
		return
	}

	status := http.StatusInternalServerError
	switch de.Code {
	case apperr.CodeValidation:
		status = http.StatusBadRequest
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodePermissionDenied:
		status = http.StatusForbidden
	case apperr.CodeInvalidTransition:
		status = http.StatusConflict
	case apperr.CodeUnauthenticated, apperr.CodeAuth:
		status = http.StatusUnauthorized
	case apperr.CodeUnavailable:
		status = http.StatusServiceUnavailable
		log.Warn("dependency unavailable", zap.Error(err))
	}

	respondJSON(w, status, errorBody{Error: de.Message, Code: de.Code})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.NewValidation("invalid request body")
	}
	return nil
}
