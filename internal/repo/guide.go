package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/vereda-tours/internal/domain"
)

// GuideRepo defines the persistence operations for Guides.
type GuideRepo interface {
	// Create inserts a guide, including its initial schedule and status.
	Create(ctx context.Context, guide domain.Guide) (domain.Guide, error)

	// GetByID returns domain.ErrNotFound if no guide with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Guide, error)

	// List returns all guides, oldest first.
	List(ctx context.Context) ([]domain.Guide, error)

	// Update overwrites name, email and phone. The schedule is untouched.
	Update(ctx context.Context, guide domain.Guide) (domain.Guide, error)

	// UpdateSchedule replaces the schedule and status in one write.
	UpdateSchedule(ctx context.Context, id uuid.UUID, schedule []domain.DayAvailability, status domain.GuideStatus) (domain.Guide, error)

	// Delete returns domain.ErrNotFound if the guide does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgGuideRepo struct {
	db db
}

// NewGuideRepo constructs a GuideRepo backed by the provided db connection.
func NewGuideRepo(db db) GuideRepo {
	return &pgGuideRepo{db: db}
}

const guideColumns = `id, name, email, phone, status, schedule, created_at, updated_at`

func (r *pgGuideRepo) Create(ctx context.Context, guide domain.Guide) (domain.Guide, error) {
	q := `
		INSERT INTO guides (name, email, phone, status, schedule)
		VALUES (@name, @email, @phone, @status, @schedule)
		RETURNING ` + guideColumns

	schedule, err := encodeSchedule(guide.Schedule)
	if err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.Create: %w", err)
	}
	args := pgx.NamedArgs{
		"name":     guide.Name,
		"email":    guide.Email,
		"phone":    guide.Phone,
		"status":   string(guide.Status),
		"schedule": schedule,
	}
	result, err := scanGuide(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgGuideRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Guide, error) {
	q := `SELECT ` + guideColumns + ` FROM guides WHERE id = @id`

	result, err := scanGuide(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.GetByID: %w", translate(err))
	}
	return result, nil
}

func (r *pgGuideRepo) List(ctx context.Context) ([]domain.Guide, error) {
	q := `SELECT ` + guideColumns + ` FROM guides ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.GuideRepo.List: %w", err)
	}
	guides, err := collect(rows, scanGuide)
	if err != nil {
		return nil, fmt.Errorf("repo.GuideRepo.List: %w", err)
	}
	return guides, nil
}

func (r *pgGuideRepo) Update(ctx context.Context, guide domain.Guide) (domain.Guide, error) {
	q := `
		UPDATE guides
		SET name       = @name,
		    email      = @email,
		    phone      = @phone,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + guideColumns

	args := pgx.NamedArgs{
		"id":    guide.ID,
		"name":  guide.Name,
		"email": guide.Email,
		"phone": guide.Phone,
	}
	result, err := scanGuide(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.Update: %w", translate(err))
	}
	return result, nil
}

func (r *pgGuideRepo) UpdateSchedule(ctx context.Context, id uuid.UUID, schedule []domain.DayAvailability, status domain.GuideStatus) (domain.Guide, error) {
	q := `
		UPDATE guides
		SET schedule   = @schedule,
		    status     = @status,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + guideColumns

	encoded, err := encodeSchedule(schedule)
	if err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.UpdateSchedule: %w", err)
	}
	args := pgx.NamedArgs{"id": id, "schedule": encoded, "status": string(status)}
	result, err := scanGuide(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.UpdateSchedule: %w", translate(err))
	}
	return result, nil
}

func (r *pgGuideRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := execAffecting(ctx, r.db, `DELETE FROM guides WHERE id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.GuideRepo.Delete: %w", err)
	}
	return nil
}

func encodeSchedule(schedule []domain.DayAvailability) ([]byte, error) {
	if schedule == nil {
		schedule = []domain.DayAvailability{}
	}
	b, err := json.Marshal(schedule)
	if err != nil {
		return nil, fmt.Errorf("encode schedule: %w", err)
	}
	return b, nil
}

// scanGuide maps a single database row into a domain.Guide.
func scanGuide(s scanner) (domain.Guide, error) {
	var (
		g        domain.Guide
		status   string
		schedule []byte
	)
	if err := s.Scan(&g.ID, &g.Name, &g.Email, &g.Phone, &status, &schedule, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return domain.Guide{}, err
	}
	g.Status = domain.GuideStatus(status)
	g.Schedule = []domain.DayAvailability{}
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &g.Schedule); err != nil {
			return domain.Guide{}, fmt.Errorf("decode schedule: %w", err)
		}
	}
	return g, nil
}
