package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/vereda-tours/internal/domain"
)

// PlanRepo defines the persistence operations for Plans.
// The service layer depends on this interface, not the concrete implementation.
type PlanRepo interface {
	// Create inserts a plan and returns it with id and timestamps populated.
	Create(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// GetByID returns domain.ErrNotFound if no plan with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error)

	// List returns all plans, oldest first.
	List(ctx context.Context) ([]domain.Plan, error)

	// Update overwrites the mutable fields of a plan.
	// Returns domain.ErrNotFound if no plan with that ID exists.
	Update(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// Delete returns domain.ErrNotFound if the plan does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgPlanRepo struct {
	db db
}

// NewPlanRepo constructs a PlanRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx or a pgxmock pool.
func NewPlanRepo(db db) PlanRepo {
	return &pgPlanRepo{db: db}
}

const planColumns = `id, name, description, price_amount, price_currency, duration_hours,
		       max_occupancy, images, available_dates, status, created_at, updated_at`

func (r *pgPlanRepo) Create(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	q := `
		INSERT INTO plans (name, description, price_amount, price_currency, duration_hours,
		                   max_occupancy, images, available_dates, status)
		VALUES (@name, @description, @price_amount, @price_currency, @duration_hours,
		        @max_occupancy, @images, @available_dates, @status)
		RETURNING ` + planColumns

	args, err := planArgs(plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: %w", err)
	}
	result, err := scanPlan(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	q := `SELECT ` + planColumns + ` FROM plans WHERE id = @id`

	result, err := scanPlan(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.GetByID: %w", translate(err))
	}
	return result, nil
}

func (r *pgPlanRepo) List(ctx context.Context) ([]domain.Plan, error) {
	q := `SELECT ` + planColumns + ` FROM plans ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.List: %w", err)
	}
	plans, err := collect(rows, scanPlan)
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.List: %w", err)
	}
	return plans, nil
}

func (r *pgPlanRepo) Update(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	q := `
		UPDATE plans
		SET name            = @name,
		    description     = @description,
		    price_amount    = @price_amount,
		    price_currency  = @price_currency,
		    duration_hours  = @duration_hours,
		    max_occupancy   = @max_occupancy,
		    images          = @images,
		    available_dates = @available_dates,
		    status          = @status,
		    updated_at      = now()
		WHERE id = @id
		RETURNING ` + planColumns

	args, err := planArgs(plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Update: %w", err)
	}
	args["id"] = plan.ID
	result, err := scanPlan(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Update: %w", translate(err))
	}
	return result, nil
}

func (r *pgPlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := execAffecting(ctx, r.db, `DELETE FROM plans WHERE id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.PlanRepo.Delete: %w", err)
	}
	return nil
}

// dateRangeRow is the JSONB element shape of plans.available_dates.
type dateRangeRow struct {
	From string `json:"from"`
	To   string `json:"to"`
}

const dateLayout = "2006-01-02"

func planArgs(p domain.Plan) (pgx.NamedArgs, error) {
	ranges := make([]dateRangeRow, 0, len(p.AvailableDates))
	for _, d := range p.AvailableDates {
		ranges = append(ranges, dateRangeRow{From: d.From.Format(dateLayout), To: d.To.Format(dateLayout)})
	}
	dates, err := json.Marshal(ranges)
	if err != nil {
		return nil, fmt.Errorf("encode available_dates: %w", err)
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return pgx.NamedArgs{
		"name":            p.Name,
		"description":     p.Description,
		"price_amount":    p.Price.Amount,
		"price_currency":  p.Price.Currency,
		"duration_hours":  p.DurationHours,
		"max_occupancy":   p.MaxOccupancy,
		"images":          images,
		"available_dates": dates,
		"status":          string(p.Status),
	}, nil
}

// scanPlan maps a single database row into a domain.Plan.
func scanPlan(s scanner) (domain.Plan, error) {
	var (
		p      domain.Plan
		status string
		dates  []byte
	)
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price.Amount, &p.Price.Currency,
		&p.DurationHours, &p.MaxOccupancy, &p.Images, &dates, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Plan{}, err
	}
	p.Status = domain.PlanStatus(status)

	var rows []dateRangeRow
	if len(dates) > 0 {
		if err := json.Unmarshal(dates, &rows); err != nil {
			return domain.Plan{}, fmt.Errorf("decode available_dates: %w", err)
		}
	}
	p.AvailableDates = make([]domain.DateRange, 0, len(rows))
	for _, row := range rows {
		from, _ := time.Parse(dateLayout, row.From)
		to, _ := time.Parse(dateLayout, row.To)
		p.AvailableDates = append(p.AvailableDates, domain.DateRange{From: from, To: to})
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p, nil
}
