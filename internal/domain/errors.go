package domain

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. name too short, occupancy out of range).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when credentials or the bearer token are
// missing, malformed, or expired. Handlers map it to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when an authenticated caller lacks the role or
// ownership required for an operation. Handlers map it to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState is returned when a lifecycle transition is not allowed,
// e.g. editing a cancelled reservation. Handlers map it to HTTP 409.
var ErrInvalidState = errors.New("invalid state")

// ErrConflict is returned when a uniqueness rule is violated (duplicate email).
var ErrConflict = errors.New("conflict")

// FieldErrors collects per-field validation messages keyed by field path.
// It unwraps to ErrValidation so errors.Is(err, ErrValidation) holds.
type FieldErrors map[string]string

// Add records msg for field, keeping the first message when a field fails twice.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

// Err returns fe as an error, or nil when no field failed.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error { return ErrValidation }
