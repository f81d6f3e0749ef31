package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/vereda-tours/internal/middleware"
)

type selectionRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
}

// sessionID reads the anonymous browsing session from the request header.
func sessionID(r *http.Request) string {
	return r.Header.Get(middleware.SessionHeader)
}

// SelectPlan handles PUT /selection. It remembers the plan the visitor
// picked before signing in.
func (s *Server) SelectPlan(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		badRequest(w, middleware.SessionHeader+" header is required")
		return
	}
	var req selectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.Selection.Select(r.Context(), sid, req.PlanID)
	if err != nil {
		s.writeError(w, r, err, "plan")
		return
	}
	writeJSON(w, http.StatusOK, s.planToResponse(p))
}

// GetSelection handles GET /selection. An empty selection answers 204.
func (s *Server) GetSelection(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	p, ok, err := s.Selection.Current(r.Context(), sid)
	if err != nil {
		s.writeError(w, r, err, "selection")
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, s.planToResponse(p))
}

// ClearSelection handles DELETE /selection.
func (s *Server) ClearSelection(w http.ResponseWriter, r *http.Request) {
	if sid := sessionID(r); sid != "" {
		if err := s.Selection.Clear(r.Context(), sid); err != nil {
			s.writeError(w, r, err, "selection")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
