// Package handler implements the HTTP handlers for the tour booking API.
// All handlers are methods on Server. Methods are split into resource files
// (plan.go, guide.go, reservation.go, ...) but share the same Server struct
// so they can access its dependencies. Routing lives in router.go.
package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/service"
)

// PlanServicer defines the plan operations the handlers depend on.
// Interfaces are declared here, in the consumer package, so handler tests
// can inject mocks without touching a database.
type PlanServicer interface {
	Create(ctx context.Context, plan domain.Plan, images [][]byte) (domain.Plan, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error)
	List(ctx context.Context) ([]domain.Plan, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.PlanPatch, images [][]byte) (domain.Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// GuideServicer defines the guide operations the handlers depend on.
type GuideServicer interface {
	Create(ctx context.Context, g domain.Guide) (domain.Guide, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Guide, error)
	List(ctx context.Context) ([]domain.Guide, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.GuidePatch) (domain.Guide, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetAvailability(ctx context.Context, id uuid.UUID) ([]domain.EditDay, error)
	UpdateAvailability(ctx context.Context, id uuid.UUID, days []domain.EditDay) (domain.Guide, error)
}

// UserServicer defines the user directory and profile operations.
type UserServicer interface {
	Create(ctx context.Context, u domain.User, password string) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Profile(ctx context.Context, p domain.Principal) (domain.User, error)
	UpdateProfile(ctx context.Context, p domain.Principal, patch domain.UserPatch) (domain.User, error)
}

// AuthServicer defines registration and login.
type AuthServicer interface {
	Register(ctx context.Context, reg service.Registration) (domain.User, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
}

// ReservationServicer defines the reservation workflow.
type ReservationServicer interface {
	Quote(ctx context.Context, planID uuid.UUID, participants int, meal domain.Meal) (domain.PriceBreakdown, error)
	Create(ctx context.Context, p domain.Principal, in service.NewReservation) (domain.Reservation, error)
	GetByID(ctx context.Context, p domain.Principal, id uuid.UUID, expand bool) (domain.Reservation, error)
	List(ctx context.Context, p domain.Principal, expand bool) ([]domain.Reservation, error)
	ListMine(ctx context.Context, p domain.Principal, expand bool) ([]domain.Reservation, error)
	Update(ctx context.Context, p domain.Principal, id uuid.UUID, patch domain.ReservationPatch) (domain.Reservation, error)
	Cancel(ctx context.Context, p domain.Principal, id uuid.UUID) (domain.Reservation, error)
	SelectPaymentMethod(ctx context.Context, p domain.Principal, id uuid.UUID, method domain.PaymentMethod) (domain.Reservation, error)
	Receipt(ctx context.Context, p domain.Principal, id uuid.UUID) ([]byte, error)
	Export(ctx context.Context, p domain.Principal) ([]domain.ExportRow, error)
}

// SelectionServicer defines the session-scoped booking selection.
type SelectionServicer interface {
	Select(ctx context.Context, sessionID string, planID uuid.UUID) (domain.Plan, error)
	Current(ctx context.Context, sessionID string) (domain.Plan, bool, error)
	Clear(ctx context.Context, sessionID string) error
}

// ImageResolver turns stored image paths into public URLs.
type ImageResolver interface {
	URL(stored string) string
	ThumbURL(stored string) string
}

// Services bundles the dependencies of Server. Nil services leave their
// routes unregistered.
type Services struct {
	Plans        PlanServicer
	Guides       GuideServicer
	Users        UserServicer
	Auth         AuthServicer
	Reservations ReservationServicer
	Selection    SelectionServicer
	Images       ImageResolver
}

// Server holds the handler dependencies.
type Server struct {
	Services
	log *slog.Logger
	// loc interprets zone-less reservation date-times.
	loc *time.Location
}

// NewServer constructs the Server. A nil log uses slog.Default and a nil
// loc means UTC.
func NewServer(svc Services, log *slog.Logger, loc *time.Location) *Server {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	if svc.Images == nil {
		svc.Images = identityImages{}
	}
	return &Server{Services: svc, log: log, loc: loc}
}

type identityImages struct{}

func (identityImages) URL(s string) string      { return s }
func (identityImages) ThumbURL(s string) string { return s }
