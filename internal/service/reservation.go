package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/repo"
)

// ReceiptRenderer turns a reservation with expanded references into a document.
type ReceiptRenderer interface {
	Render(res domain.Reservation) ([]byte, error)
}

// NewReservation is the booking form submitted when leaving the draft step.
type NewReservation struct {
	GuideID      uuid.UUID
	PlanID       uuid.UUID
	Participants int
	Meal         domain.Meal
	DateTime     time.Time
}

// ReservationService implements the reservation workflow: quoting, booking,
// editing, payment selection and cancellation.
type ReservationService struct {
	reservations repo.ReservationRepo
	plans        repo.PlanRepo
	guides       repo.GuideRepo
	users        repo.UserRepo
	receipts     ReceiptRenderer
	log          *slog.Logger
}

// NewReservationService constructs a ReservationService.
func NewReservationService(
	reservations repo.ReservationRepo,
	plans repo.PlanRepo,
	guides repo.GuideRepo,
	users repo.UserRepo,
	receipts ReceiptRenderer,
	log *slog.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		plans:        plans,
		guides:       guides,
		users:        users,
		receipts:     receipts,
		log:          log,
	}
}

// Quote prices a prospective booking without persisting anything. When the
// plan cannot be loaded the default plan price is used and participants are
// bounded by the largest occupancy any plan may have.
func (s *ReservationService) Quote(ctx context.Context, planID uuid.UUID, participants int, meal domain.Meal) (domain.PriceBreakdown, error) {
	var price int64
	var currency string
	maxOccupancy := domain.PlanOccupancyMax
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		s.log.WarnContext(ctx, "quote falls back to default plan price", "plan_id", planID, "error", err)
	} else {
		price, currency = plan.Price.Amount, plan.Price.Currency
		if plan.MaxOccupancy > 0 {
			maxOccupancy = plan.MaxOccupancy
		}
	}

	fe := domain.FieldErrors{}
	if participants < 1 {
		fe.Add("participants", "must be at least 1")
	} else if participants > maxOccupancy {
		fe.Add("participants", fmt.Sprintf("must not exceed the plan occupancy of %d", maxOccupancy))
	}
	if !meal.Valid() {
		fe.Add("meal", "must be DESAYUNO, ALMUERZO, MERIENDA or CENA")
	}
	if err := fe.Err(); err != nil {
		return domain.PriceBreakdown{}, fmt.Errorf("service.ReservationService.Quote: %w", err)
	}
	return domain.Quote(participants, price, meal, currency), nil
}

// Create books a reservation for the caller. The total is computed once
// here and never recomputed.
func (s *ReservationService) Create(ctx context.Context, p domain.Principal, in NewReservation) (domain.Reservation, error) {
	res := domain.Reservation{
		User:         domain.RefTo[domain.User](p.UserID),
		Guide:        domain.RefTo[domain.Guide](in.GuideID),
		Plan:         domain.RefTo[domain.Plan](in.PlanID),
		Participants: in.Participants,
		Meal:         in.Meal,
		DateTime:     in.DateTime.UTC(),
		State:        domain.InitialReservationState,
	}

	var plan domain.Plan
	if in.PlanID != uuid.Nil {
		var err error
		plan, err = s.plans.GetByID(ctx, in.PlanID)
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.FieldErrors{"plan_id": "plan does not exist"}
		}
		if err != nil {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
		}
	}
	if err := domain.ValidateNewReservation(res, plan.MaxOccupancy); err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}
	if _, err := s.guides.GetByID(ctx, in.GuideID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.FieldErrors{"guide_id": "guide does not exist"}
		}
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}

	q := domain.Quote(res.Participants, plan.Price.Amount, res.Meal, plan.Price.Currency)
	res.TotalPrice = domain.Money{Amount: q.Total, Currency: q.Currency}

	created, err := s.reservations.Create(ctx, res)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}
	s.log.InfoContext(ctx, "reservation created",
		"reservation_id", created.ID, "user_id", p.UserID, "state", created.State, "total", created.TotalPrice.Amount)
	return created, nil
}

// GetByID returns a reservation the caller owns, or any when admin.
func (s *ReservationService) GetByID(ctx context.Context, p domain.Principal, id uuid.UUID, expand bool) (domain.Reservation, error) {
	res, err := s.owned(ctx, p, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.GetByID: %w", err)
	}
	if expand {
		out, err := s.expand(ctx, []domain.Reservation{res})
		if err != nil {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.GetByID: %w", err)
		}
		res = out[0]
	}
	return res, nil
}

// List returns every reservation. Administrators only.
func (s *ReservationService) List(ctx context.Context, p domain.Principal, expand bool) ([]domain.Reservation, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("service.ReservationService.List: %w", domain.ErrForbidden)
	}
	all, err := s.reservations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.List: %w", err)
	}
	if expand {
		if all, err = s.expand(ctx, all); err != nil {
			return nil, fmt.Errorf("service.ReservationService.List: %w", err)
		}
	}
	return all, nil
}

// ListMine returns the caller's reservations.
func (s *ReservationService) ListMine(ctx context.Context, p domain.Principal, expand bool) ([]domain.Reservation, error) {
	mine, err := s.reservations.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.ListMine: %w", err)
	}
	if expand {
		if mine, err = s.expand(ctx, mine); err != nil {
			return nil, fmt.Errorf("service.ReservationService.ListMine: %w", err)
		}
	}
	return mine, nil
}

// Update changes meal and/or date-time. Cancelled reservations are rejected
// with ErrInvalidState and left untouched, including one cancelled after it
// was loaded here; the total price stays as booked.
func (s *ReservationService) Update(ctx context.Context, p domain.Principal, id uuid.UUID, patch domain.ReservationPatch) (domain.Reservation, error) {
	current, err := s.owned(ctx, p, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w", err)
	}
	if patch.DateTime != nil {
		t := patch.DateTime.UTC()
		patch.DateTime = &t
	}
	next, err := patch.Apply(current)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w", err)
	}
	updated, err := s.reservations.Update(ctx, next)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w", err)
	}
	return updated, nil
}

// Cancel moves the reservation to CANCELLED. Cancelling twice is a no-op.
func (s *ReservationService) Cancel(ctx context.Context, p domain.Principal, id uuid.UUID) (domain.Reservation, error) {
	current, err := s.owned(ctx, p, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Cancel: %w", err)
	}
	if current.State == domain.StateCancelled {
		return current, nil
	}
	updated, err := s.reservations.Cancel(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Cancel: %w", err)
	}
	s.log.InfoContext(ctx, "reservation cancelled", "reservation_id", id, "by", p.UserID)
	return updated, nil
}

// SelectPaymentMethod records the mock payment choice.
func (s *ReservationService) SelectPaymentMethod(ctx context.Context, p domain.Principal, id uuid.UUID, method domain.PaymentMethod) (domain.Reservation, error) {
	if !method.Valid() {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.SelectPaymentMethod: %w",
			domain.FieldErrors{"payment_method": "must be CARD, CASH or TRANSFER"})
	}
	current, err := s.owned(ctx, p, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.SelectPaymentMethod: %w", err)
	}
	if !current.Editable() {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.SelectPaymentMethod: %w: reservation is cancelled", domain.ErrInvalidState)
	}
	current.PaymentMethod = method
	updated, err := s.reservations.Update(ctx, current)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.SelectPaymentMethod: %w", err)
	}
	return updated, nil
}

// Receipt renders the PDF receipt of a reservation.
func (s *ReservationService) Receipt(ctx context.Context, p domain.Principal, id uuid.UUID) ([]byte, error) {
	res, err := s.GetByID(ctx, p, id, true)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.Receipt: %w", err)
	}
	pdf, err := s.receipts.Render(res)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.Receipt: %w", err)
	}
	return pdf, nil
}

// owned loads a reservation and checks the caller may act on it.
// Missing records are ErrNotFound; records of another user are ErrForbidden.
func (s *ReservationService) owned(ctx context.Context, p domain.Principal, id uuid.UUID) (domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if !p.CanAccess(res.User.ID()) {
		return domain.Reservation{}, domain.ErrForbidden
	}
	return res, nil
}

// expand resolves the user, guide and plan references of every reservation.
// References that no longer resolve stay bare.
func (s *ReservationService) expand(ctx context.Context, list []domain.Reservation) ([]domain.Reservation, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	guides, err := s.guides.List(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, err
	}
	byUser, byGuide, byPlan := index(users), index(guides), index(plans)

	out := make([]domain.Reservation, len(list))
	for i, res := range list {
		res.User = res.User.Resolve(byUser)
		res.Guide = res.Guide.Resolve(byGuide)
		res.Plan = res.Plan.Resolve(byPlan)
		out[i] = res
	}
	return out, nil
}

func index[T domain.Referable](items []T) map[uuid.UUID]T {
	m := make(map[uuid.UUID]T, len(items))
	for _, v := range items {
		m[v.RefID()] = v
	}
	return m
}
