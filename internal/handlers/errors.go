package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"queridodiario/internal/service"
	"queridodiario/internal/validation"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, logger *zap.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		logger.Error(logMsg, zap.Int("status", status), zap.Error(err))
	}

	respondJSON(w, status, errorBody{Error: userMsg})
}

// respondServiceError maps a service error to its HTTP status. Unknown errors are
// logged and reported as a generic 500.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var ve validation.ValidationError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrEmailTaken):
		respondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		respondWithError(w, logger, http.StatusInternalServerError, ErrInternalServerError, "Request failed", err)
	}
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields and trailing data
func decodeJSON(r *http.Request, w http.ResponseWriter, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return validation.ValidationError{Field: "body", Message: fmt.Sprintf("%s: %v", ErrInvalidJSON, err)}
	}
	if dec.More() {
		return validation.ValidationError{Field: "body", Message: ErrInvalidJSON}
	}
	return nil
}

func isUnauthorized(err error) bool {
	return errors.Is(err, service.ErrUnauthorized)
}
