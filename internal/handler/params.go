package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/middleware"
)

// pathID binds the {name} path parameter as a UUID the way generated
// oapi-codegen servers do. On failure it writes 400 and returns false.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badRequest(w, fmt.Sprintf("invalid %s: must be a UUID", name))
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads a JSON body into dst. On failure it writes 400 and
// returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeErrorBody(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", nil)
		case errors.Is(err, io.EOF):
			badRequest(w, "request body is required")
		default:
			badRequest(w, "malformed JSON body: "+err.Error())
		}
		return false
	}
	return true
}

// expandParam reads ?expand=true.
func expandParam(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("expand"))
	return v
}

// principal returns the authenticated caller. Routes needing one are behind
// middleware.Authenticate, so absence is a wiring bug reported as 401.
func (s *Server) principal(w http.ResponseWriter, r *http.Request) (p domain.Principal, ok bool) {
	p, ok = middleware.PrincipalFrom(r.Context())
	if !ok {
		writeErrorBody(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
	}
	return p, ok
}
