package handler

import (
	"net/http"
	"time"

	"github.com/pkordes/vereda-tours/internal/domain"
)

type guideRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func (req guideRequest) patch() domain.GuidePatch {
	return domain.GuidePatch{Name: req.Name, Email: req.Email, Phone: req.Phone}
}

type guideResponse struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Email     string                   `json:"email"`
	Phone     string                   `json:"phone"`
	Status    string                   `json:"status"`
	Schedule  []domain.DayAvailability `json:"schedule"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

func guideToResponse(g domain.Guide) guideResponse {
	schedule := g.Schedule
	if schedule == nil {
		schedule = []domain.DayAvailability{}
	}
	return guideResponse{
		ID:        g.ID.String(),
		Name:      g.Name,
		Email:     g.Email,
		Phone:     g.Phone,
		Status:    string(g.Status),
		Schedule:  schedule,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// availabilityBody carries the seven-day editable schedule both ways.
type availabilityBody struct {
	Schedule []domain.EditDay `json:"schedule"`
}

// ListGuides handles GET /guides.
func (s *Server) ListGuides(w http.ResponseWriter, r *http.Request) {
	guides, err := s.Guides.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "guide")
		return
	}
	out := make([]guideResponse, len(guides))
	for i, g := range guides {
		out[i] = guideToResponse(g)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetGuide handles GET /guides/{id}.
func (s *Server) GetGuide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	g, err := s.Guides.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "guide")
		return
	}
	writeJSON(w, http.StatusOK, guideToResponse(g))
}

// CreateGuide handles POST /guides.
func (s *Server) CreateGuide(w http.ResponseWriter, r *http.Request) {
	var req guideRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := s.Guides.Create(r.Context(), req.patch().Apply(domain.Guide{}))
	if err != nil {
		s.writeError(w, r, err, "guide")
		return
	}
	writeJSON(w, http.StatusCreated, guideToResponse(g))
}

// UpdateGuide handles PUT /guides/{id}.
func (s *Server) UpdateGuide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req guideRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := s.Guides.Update(r.Context(), id, req.patch())
	if err != nil {
		s.writeError(w, r, err, "guide")
		return
	}
	writeJSON(w, http.StatusOK, guideToResponse(g))
}

// DeleteGuide handles DELETE /guides/{id}.
func (s *Server) DeleteGuide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Guides.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "guide")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGuideAvailability handles GET /guides/{id}/availability.
// The response always lists all seven weekdays in order.
func (s *Server) GetGuideAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	days, err := s.Guides.GetAvailability(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "guide")
		return
	}
	writeJSON(w, http.StatusOK, availabilityBody{Schedule: days})
}

// UpdateGuideAvailability handles PUT /guides/{id}/availability and returns
// the guide with its collapsed schedule and derived status.
func (s *Server) UpdateGuideAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body availabilityBody
	if !decodeJSON(w, r, &body) {
		return
	}
	g, err := s.Guides.UpdateAvailability(r.Context(), id, body.Schedule)
	if err != nil {
		s.writeError(w, r, err, "guide")
		return
	}
	writeJSON(w, http.StatusOK, guideToResponse(g))
}
