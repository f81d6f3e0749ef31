package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/vereda-tours/internal/domain"
)

// multipartMemory is the in-memory budget for parsed multipart forms;
// larger parts spill to temporary files.
const multipartMemory = 8 << 20

type moneyJSON struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type dateRangeJSON struct {
	From openapi_types.Date `json:"from"`
	To   openapi_types.Date `json:"to"`
}

// planRequest is the body of create and update. Absent fields stay nil so
// an update touches only what the client sent.
type planRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *moneyJSON       `json:"price"`
	DurationHours  *int             `json:"duration_hours"`
	MaxOccupancy   *int             `json:"max_occupancy"`
	AvailableDates *[]dateRangeJSON `json:"available_dates"`
	Status         *string          `json:"status"`
}

func (req planRequest) patch() domain.PlanPatch {
	p := domain.PlanPatch{
		Name:          req.Name,
		Description:   req.Description,
		DurationHours: req.DurationHours,
		MaxOccupancy:  req.MaxOccupancy,
	}
	if req.Price != nil {
		p.Price = &domain.Money{Amount: req.Price.Amount, Currency: req.Price.Currency}
	}
	if req.AvailableDates != nil {
		ranges := make([]domain.DateRange, len(*req.AvailableDates))
		for i, r := range *req.AvailableDates {
			ranges[i] = domain.DateRange{From: r.From.Time, To: r.To.Time}
		}
		p.AvailableDates = &ranges
	}
	if req.Status != nil {
		st := domain.PlanStatus(*req.Status)
		p.Status = &st
	}
	return p
}

type planResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          moneyJSON       `json:"price"`
	DurationHours  int             `json:"duration_hours"`
	MaxOccupancy   int             `json:"max_occupancy"`
	Images         []string        `json:"images"`
	Thumbnails     []string        `json:"thumbnails"`
	AvailableDates []dateRangeJSON `json:"available_dates"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (s *Server) planToResponse(p domain.Plan) planResponse {
	out := planResponse{
		ID:             p.ID.String(),
		Name:           p.Name,
		Description:    p.Description,
		Price:          moneyJSON{Amount: p.Price.Amount, Currency: p.Price.Currency},
		DurationHours:  p.DurationHours,
		MaxOccupancy:   p.MaxOccupancy,
		Images:         make([]string, len(p.Images)),
		Thumbnails:     make([]string, len(p.Images)),
		AvailableDates: make([]dateRangeJSON, len(p.AvailableDates)),
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for i, img := range p.Images {
		out.Images[i] = s.Images.URL(img)
		out.Thumbnails[i] = s.Images.ThumbURL(img)
	}
	for i, r := range p.AvailableDates {
		out.AvailableDates[i] = dateRangeJSON{
			From: openapi_types.Date{Time: r.From},
			To:   openapi_types.Date{Time: r.To},
		}
	}
	return out
}

// readPlanRequest accepts either a JSON body or a multipart form with a
// "plan" JSON part and up to domain.PlanImagesMax "images" files. images is
// nil when the request carried no image field at all.
func readPlanRequest(w http.ResponseWriter, r *http.Request) (req planRequest, images [][]byte, ok bool) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "multipart/form-data" {
		return req, nil, decodeJSON(w, r, &req)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorBody(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", nil)
			return req, nil, false
		}
		badRequest(w, "malformed multipart form: "+err.Error())
		return req, nil, false
	}
	defer r.MultipartForm.RemoveAll()

	if raw := r.MultipartForm.Value["plan"]; len(raw) > 0 {
		if err := json.Unmarshal([]byte(raw[0]), &req); err != nil {
			badRequest(w, "malformed plan part: "+err.Error())
			return req, nil, false
		}
	}
	files, present := r.MultipartForm.File["images"]
	if !present {
		return req, nil, true
	}
	if len(files) > domain.PlanImagesMax {
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", "validation failed",
			map[string]string{"images": fmt.Sprintf("at most %d images are allowed", domain.PlanImagesMax)})
		return req, nil, false
	}
	images = make([][]byte, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			badRequest(w, "unreadable image: "+fh.Filename)
			return req, nil, false
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			badRequest(w, "unreadable image: "+fh.Filename)
			return req, nil, false
		}
		images = append(images, data)
	}
	return req, images, true
}

// ListPlans handles GET /plans.
func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.Plans.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "plan")
		return
	}
	out := make([]planResponse, len(plans))
	for i, p := range plans {
		out[i] = s.planToResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPlan handles GET /plans/{id}.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := s.Plans.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "plan")
		return
	}
	writeJSON(w, http.StatusOK, s.planToResponse(p))
}

// CreatePlan handles POST /plans.
func (s *Server) CreatePlan(w http.ResponseWriter, r *http.Request) {
	req, images, ok := readPlanRequest(w, r)
	if !ok {
		return
	}
	p, err := s.Plans.Create(r.Context(), req.patch().Apply(domain.Plan{}), images)
	if err != nil {
		s.writeError(w, r, err, "plan")
		return
	}
	writeJSON(w, http.StatusCreated, s.planToResponse(p))
}

// UpdatePlan handles PUT /plans/{id}.
func (s *Server) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, images, ok := readPlanRequest(w, r)
	if !ok {
		return
	}
	p, err := s.Plans.Update(r.Context(), id, req.patch(), images)
	if err != nil {
		s.writeError(w, r, err, "plan")
		return
	}
	writeJSON(w, http.StatusOK, s.planToResponse(p))
}

// DeletePlan handles DELETE /plans/{id}.
func (s *Server) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Plans.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "plan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
