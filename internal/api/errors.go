package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"jobtrack/internal/services/auth"
	"jobtrack/internal/storage"
)

// Error is the structured error response body.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

const (
	ErrCodeValidation   = "validation_error"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConflict     = "conflict"
	ErrCodeUnavailable  = "unavailable"
	ErrCodeInternal     = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // best-effort write; the connection may be gone
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

// writeValidationError answers 400 with the offending field named.
func writeValidationError(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusBadRequest, Error{
		Status:  http.StatusBadRequest,
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials or token")
}

func writeForbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, "not a member of the requested tenant")
}

func writeInternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}

// writeServiceError maps auth service and storage failures to status codes
// one to one. Unauthorized sub-causes share one message on purpose.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, "email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeUnauthorized(w)
	case errors.Is(err, storage.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "service temporarily unavailable")
	default:
		writeInternalError(w)
	}
}
