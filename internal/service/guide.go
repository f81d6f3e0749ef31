package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/repo"
)

// GuideService implements business logic for Guide operations, including
// the weekly availability update.
type GuideService struct {
	repo repo.GuideRepo
	log  *slog.Logger
}

// NewGuideService constructs a GuideService.
func NewGuideService(r repo.GuideRepo, log *slog.Logger) *GuideService {
	return &GuideService{repo: r, log: log}
}

// Create validates and persists a guide. New guides have no schedule and
// are therefore INACTIVE.
func (s *GuideService) Create(ctx context.Context, g domain.Guide) (domain.Guide, error) {
	if err := domain.ValidateGuide(g); err != nil {
		return domain.Guide{}, fmt.Errorf("service.GuideService.Create: %w", err)
	}
	g.Schedule = []domain.DayAvailability{}
	g.Status = domain.DeriveStatus(g.Schedule)

	created, err := s.repo.Create(ctx, g)
	if err != nil {
		return domain.Guide{}, fmt.Errorf("service.GuideService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single guide by ID.
func (s *GuideService) GetByID(ctx context.Context, id uuid.UUID) (domain.Guide, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Guide{}, fmt.Errorf("service.GuideService.GetByID: %w", err)
	}
	return g, nil
}

// List returns all guides.
func (s *GuideService) List(ctx context.Context) ([]domain.Guide, error) {
	guides, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.GuideService.List: %w", err)
	}
	return guides, nil
}

// Update applies patch to the guide's contact fields.
func (s *GuideService) Update(ctx context.Context, id uuid.UUID, patch domain.GuidePatch) (domain.Guide, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Guide{}, fmt.Errorf("service.GuideService.Update: %w", err)
	}
	next := patch.Apply(current)
	if err := domain.ValidateGuide(next); err != nil {
		return domain.Guide{}, fmt.Errorf("service.GuideService.Update: %w", err)
	}
	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return domain.Guide{}, fmt.Errorf("service.GuideService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a guide by ID.
func (s *GuideService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.GuideService.Delete: %w", err)
	}
	return nil
}

// GetAvailability returns the guide's schedule as the seven-day edit form.
func (s *GuideService) GetAvailability(ctx context.Context, id uuid.UUID) ([]domain.EditDay, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.GuideService.GetAvailability: %w", err)
	}
	return domain.Expand(g.Schedule), nil
}

// UpdateAvailability validates and collapses the edit form, stores it, and
// recomputes the guide's status from the new schedule.
func (s *GuideService) UpdateAvailability(ctx context.Context, id uuid.UUID, days []domain.EditDay) (domain.Guide, error) {
	schedule, err := domain.Collapse(days)
	if err != nil {
		return domain.Guide{}, fmt.Errorf("service.GuideService.UpdateAvailability: %w", err)
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Guide{}, fmt.Errorf("service.GuideService.UpdateAvailability: %w", err)
	}

	status := domain.DeriveStatus(schedule)
	updated, err := s.repo.UpdateSchedule(ctx, id, schedule, status)
	if err != nil {
		return domain.Guide{}, fmt.Errorf("service.GuideService.UpdateAvailability: %w", err)
	}

	s.log.InfoContext(ctx, "availability updated", "guide_id", id, "status", status)
	if current.Status != status {
		s.log.InfoContext(ctx, "guide status changed", "guide_id", id, "from", current.Status, "to", status)
	}
	return updated, nil
}
