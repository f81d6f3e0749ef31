package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/service"
)

type quoteRequest struct {
	PlanID       uuid.UUID `json:"plan_id"`
	Participants int       `json:"participants"`
	Meal         string    `json:"meal"`
}

type quoteResponse struct {
	Participants int    `json:"participants"`
	PlanPrice    int64  `json:"plan_price"`
	PlanSubtotal int64  `json:"plan_subtotal"`
	KitSubtotal  int64  `json:"kit_subtotal"`
	MealSubtotal int64  `json:"meal_subtotal"`
	Total        int64  `json:"total"`
	Currency     string `json:"currency"`
}

type createReservationRequest struct {
	GuideID      uuid.UUID `json:"guide_id"`
	PlanID       uuid.UUID `json:"plan_id"`
	Participants int       `json:"participants"`
	Meal         string    `json:"meal"`
	DateTime     string    `json:"date_time"`
}

type updateReservationRequest struct {
	Meal     *string `json:"meal"`
	DateTime *string `json:"date_time"`
}

type paymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// reservationResponse renders user, guide and plan either as a bare id
// string or, with ?expand=true, as the full nested object.
type reservationResponse struct {
	ID            string    `json:"id"`
	User          any       `json:"user"`
	Guide         any       `json:"guide"`
	Plan          any       `json:"plan"`
	Participants  int       `json:"participants"`
	Meal          string    `json:"meal"`
	DateTime      string    `json:"date_time"`
	TotalPrice    moneyJSON `json:"total_price"`
	State         string    `json:"state"`
	PaymentMethod *string   `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func refJSON[T domain.Referable, R any](ref domain.Ref[T], render func(T) R) any {
	if v, ok := ref.Value(); ok {
		return render(v)
	}
	return ref.ID().String()
}

func (s *Server) reservationToResponse(res domain.Reservation) reservationResponse {
	out := reservationResponse{
		ID:           res.ID.String(),
		User:         refJSON(res.User, userToResponse),
		Guide:        refJSON(res.Guide, guideToResponse),
		Plan:         refJSON(res.Plan, s.planToResponse),
		Participants: res.Participants,
		Meal:         string(res.Meal),
		DateTime:     domain.FormatDateTime(res.DateTime),
		TotalPrice:   moneyJSON{Amount: res.TotalPrice.Amount, Currency: res.TotalPrice.Currency},
		State:        string(res.State),
		CreatedAt:    res.CreatedAt,
		UpdatedAt:    res.UpdatedAt,
	}
	if res.PaymentMethod != "" {
		m := string(res.PaymentMethod)
		out.PaymentMethod = &m
	}
	return out
}

func (s *Server) writeReservations(w http.ResponseWriter, list []domain.Reservation) {
	out := make([]reservationResponse, len(list))
	for i, res := range list {
		out[i] = s.reservationToResponse(res)
	}
	writeJSON(w, http.StatusOK, out)
}

// parseDateTime reads a canonical date-time field, writing 422 on failure.
func (s *Server) parseDateTime(w http.ResponseWriter, v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, true
	}
	t, err := domain.ParseDateTime(v, s.loc)
	if err != nil {
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", "validation failed",
			map[string]string{"date_time": fmt.Sprintf("must look like %s", domain.CanonicalDateTime)})
		return time.Time{}, false
	}
	return t, true
}

// QuoteReservation handles POST /reservations/quote.
func (s *Server) QuoteReservation(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q, err := s.Reservations.Quote(r.Context(), req.PlanID, req.Participants, domain.Meal(req.Meal))
	if err != nil {
		s.writeError(w, r, err, "plan")
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		Participants: q.Participants,
		PlanPrice:    q.PlanPrice,
		PlanSubtotal: q.PlanSubtotal,
		KitSubtotal:  q.KitSubtotal,
		MealSubtotal: q.MealSubtotal,
		Total:        q.Total,
		Currency:     q.Currency,
	})
}

// ListReservations handles GET /reservations (administrators only).
func (s *Server) ListReservations(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	list, err := s.Reservations.List(r.Context(), p, expandParam(r))
	if err != nil {
		s.writeError(w, r, err, "reservation")
		return
	}
	s.writeReservations(w, list)
}

// ListMyReservations handles GET /reservations/mine.
func (s *Server) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	list, err := s.Reservations.ListMine(r.Context(), p, expandParam(r))
	if err != nil {
		s.writeError(w, r, err, "reservation")
		return
	}
	s.writeReservations(w, list)
}

// CreateReservation handles POST /reservations.
func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	var req createReservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	at, ok := s.parseDateTime(w, req.DateTime)
	if !ok {
		return
	}
	res, err := s.Reservations.Create(r.Context(), p, service.NewReservation{
		GuideID:      req.GuideID,
		PlanID:       req.PlanID,
		Participants: req.Participants,
		Meal:         domain.Meal(req.Meal),
		DateTime:     at,
	})
	if err != nil {
		s.writeError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusCreated, s.reservationToResponse(res))
}

// GetReservation handles GET /reservations/{id}.
func (s *Server) GetReservation(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, err := s.Reservations.GetByID(r.Context(), p, id, expandParam(r))
	if err != nil {
		s.writeError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusOK, s.reservationToResponse(res))
}

// UpdateReservation handles PUT /reservations/{id}. Only meal and date_time
// may change; participants and the locked price are kept.
func (s *Server) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateReservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var patch domain.ReservationPatch
	if req.Meal != nil {
		m := domain.Meal(*req.Meal)
		patch.Meal = &m
	}
	if req.DateTime != nil {
		at, ok := s.parseDateTime(w, *req.DateTime)
		if !ok {
			return
		}
		patch.DateTime = &at
	}
	res, err := s.Reservations.Update(r.Context(), p, id, patch)
	if err != nil {
		s.writeError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusOK, s.reservationToResponse(res))
}

// CancelReservation handles POST /reservations/{id}/cancel and
// DELETE /reservations/{id}. The row is kept with state CANCELLED.
func (s *Server) CancelReservation(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, err := s.Reservations.Cancel(r.Context(), p, id)
	if err != nil {
		s.writeError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusOK, s.reservationToResponse(res))
}

// SelectPaymentMethod handles PUT /reservations/{id}/payment.
func (s *Server) SelectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req paymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.Reservations.SelectPaymentMethod(r.Context(), p, id, domain.PaymentMethod(req.PaymentMethod))
	if err != nil {
		s.writeError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusOK, s.reservationToResponse(res))
}

// GetReservationReceipt handles GET /reservations/{id}/receipt.
func (s *Server) GetReservationReceipt(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	pdf, err := s.Reservations.Receipt(r.Context(), p, id)
	if err != nil {
		s.writeError(w, r, err, "reservation")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="reservation-%s.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
