package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/vereda-tours/internal/domain"
)

// ReservationRepo defines the persistence operations for Reservations.
// User, guide and plan are stored as identifiers and always read back as
// bare references; expansion happens in the service layer.
type ReservationRepo interface {
	// Create inserts a reservation with its computed total and initial state.
	Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error)

	// GetByID returns domain.ErrNotFound if no reservation with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error)

	// List returns all reservations ordered by date_time.
	List(ctx context.Context) ([]domain.Reservation, error)

	// ListByUser returns the reservations owned by userID ordered by date_time.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Reservation, error)

	// Update overwrites meal, date_time and payment_method of a reservation
	// that is not cancelled. State, participants and the total price are
	// never written here. Returns domain.ErrInvalidState when the stored
	// reservation is cancelled and domain.ErrNotFound when it does not exist.
	Update(ctx context.Context, res domain.Reservation) (domain.Reservation, error)

	// Cancel moves the reservation to CANCELLED. It is the only write that
	// changes state. Returns domain.ErrNotFound if it does not exist.
	Cancel(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
}

type pgReservationRepo struct {
	db db
}

// NewReservationRepo constructs a ReservationRepo backed by the provided db connection.
func NewReservationRepo(db db) ReservationRepo {
	return &pgReservationRepo{db: db}
}

const reservationColumns = `id, user_id, guide_id, plan_id, participants, meal, date_time,
		       total_amount, total_currency, state, payment_method, created_at, updated_at`

func (r *pgReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	q := `
		INSERT INTO reservations (user_id, guide_id, plan_id, participants, meal, date_time,
		                          total_amount, total_currency, state, payment_method)
		VALUES (@user_id, @guide_id, @plan_id, @participants, @meal, @date_time,
		        @total_amount, @total_currency, @state, @payment_method)
		RETURNING ` + reservationColumns

	args := pgx.NamedArgs{
		"user_id":        res.User.ID(),
		"guide_id":       res.Guide.ID(),
		"plan_id":        res.Plan.ID(),
		"participants":   res.Participants,
		"meal":           string(res.Meal),
		"date_time":      res.DateTime,
		"total_amount":   res.TotalPrice.Amount,
		"total_currency": res.TotalPrice.Currency,
		"state":          string(res.State),
		"payment_method": string(res.PaymentMethod),
	}
	result, err := scanReservation(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = @id`

	result, err := scanReservation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", translate(err))
	}
	return result, nil
}

func (r *pgReservationRepo) List(ctx context.Context) ([]domain.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY date_time, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.List: %w", err)
	}
	out, err := collect(rows, scanReservation)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.List: %w", err)
	}
	return out, nil
}

func (r *pgReservationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = @user_id ORDER BY date_time, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListByUser: %w", err)
	}
	out, err := collect(rows, scanReservation)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListByUser: %w", err)
	}
	return out, nil
}

func (r *pgReservationRepo) Update(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	q := `
		UPDATE reservations
		SET meal           = @meal,
		    date_time      = @date_time,
		    payment_method = @payment_method,
		    updated_at     = now()
		WHERE id = @id AND state <> @cancelled
		RETURNING ` + reservationColumns

	args := pgx.NamedArgs{
		"id":             res.ID,
		"meal":           string(res.Meal),
		"date_time":      res.DateTime,
		"payment_method": string(res.PaymentMethod),
		"cancelled":      string(domain.StateCancelled),
	}
	result, err := scanReservation(r.db.QueryRow(ctx, q, args))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either missing or cancelled; the lookup tells which.
		if _, err := r.GetByID(ctx, res.ID); err != nil {
			return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Update: %w", errors.Unwrap(err))
		}
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Update: %w: reservation is cancelled", domain.ErrInvalidState)
	}
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Update: %w", translate(err))
	}
	return result, nil
}

func (r *pgReservationRepo) Cancel(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	q := `
		UPDATE reservations
		SET state      = @cancelled,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + reservationColumns

	args := pgx.NamedArgs{"id": id, "cancelled": string(domain.StateCancelled)}
	result, err := scanReservation(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Cancel: %w", translate(err))
	}
	return result, nil
}

// scanReservation maps a single database row into a domain.Reservation.
func scanReservation(s scanner) (domain.Reservation, error) {
	var (
		res                     domain.Reservation
		userID, guideID, planID uuid.UUID
		meal, state, payment    string
		dateTime                time.Time
	)
	err := s.Scan(&res.ID, &userID, &guideID, &planID, &res.Participants, &meal, &dateTime,
		&res.TotalPrice.Amount, &res.TotalPrice.Currency, &state, &payment, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return domain.Reservation{}, err
	}
	res.User = domain.RefTo[domain.User](userID)
	res.Guide = domain.RefTo[domain.Guide](guideID)
	res.Plan = domain.RefTo[domain.Plan](planID)
	res.Meal = domain.Meal(meal)
	res.State = domain.ReservationState(state)
	res.PaymentMethod = domain.PaymentMethod(payment)
	res.DateTime = dateTime.UTC()
	return res, nil
}
