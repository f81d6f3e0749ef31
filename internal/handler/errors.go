package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/pkordes/vereda-tours/internal/domain"
)

// errorBody is the JSON error envelope: {"error":{"code","message","fields"}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string, fields map[string]string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message, Fields: fields}})
}

// badRequest reports input rejected before reaching the service layer,
// e.g. a malformed body or path parameter.
func badRequest(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusBadRequest, "bad_request", message, nil)
}

// writeError maps a service error onto the HTTP status table. resource names
// the thing that was looked up, for 404 messages.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var fe domain.FieldErrors
	switch {
	case errors.As(err, &fe):
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", "validation failed", fe)
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err), nil)
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, "not_found", resource+" not found", nil)
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorBody(w, http.StatusUnauthorized, "unauthorized", unwrapMessage(err), nil)
	case errors.Is(err, domain.ErrForbidden):
		writeErrorBody(w, http.StatusForbidden, "forbidden", "not allowed to access this "+resource, nil)
	case errors.Is(err, domain.ErrInvalidState):
		writeErrorBody(w, http.StatusConflict, "invalid_state", unwrapMessage(err), nil)
	case errors.Is(err, domain.ErrConflict):
		writeErrorBody(w, http.StatusConflict, "conflict", unwrapMessage(err), nil)
	default:
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeErrorBody(w, http.StatusInternalServerError, "server_error", "internal server error", nil)
	}
}

// callerPrefix matches the "pkg.Type.Method: " prefixes added while wrapping.
var callerPrefix = regexp.MustCompile(`^([a-z]+\.[A-Za-z]+\.[A-Za-z]+: )+`)

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.ReservationService.Update: invalid state: reservation is cancelled"
// → "invalid state: reservation is cancelled"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	return callerPrefix.ReplaceAllString(err.Error(), "")
}
