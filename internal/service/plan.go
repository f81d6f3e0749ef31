// Package service contains the business logic of the tour booking API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/repo"
)

// ImageStore persists uploaded plan images and returns their stored paths.
type ImageStore interface {
	Save(ctx context.Context, data []byte) (string, error)
	Remove(ctx context.Context, path string) error
}

// PlanService implements business logic for Plan operations.
type PlanService struct {
	repo   repo.PlanRepo
	images ImageStore
	log    *slog.Logger
}

// NewPlanService constructs a PlanService.
func NewPlanService(r repo.PlanRepo, images ImageStore, log *slog.Logger) *PlanService {
	return &PlanService{repo: r, images: images, log: log}
}

// Create validates plan and its images, stores the images, and persists the
// plan. Status defaults to PENDING and currency to COP.
func (s *PlanService) Create(ctx context.Context, plan domain.Plan, images [][]byte) (domain.Plan, error) {
	if plan.Status == "" {
		plan.Status = domain.PlanPending
	}
	if plan.Price.Currency == "" {
		plan.Price.Currency = domain.CurrencyCOP
	}
	if err := domain.ValidatePlan(plan, len(images), true); err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}

	stored, err := s.saveImages(ctx, images)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	plan.Images = stored

	created, err := s.repo.Create(ctx, plan)
	if err != nil {
		s.removeImages(ctx, stored)
		return domain.Plan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	s.log.InfoContext(ctx, "plan created", "plan_id", created.ID, "images", len(stored))
	return created, nil
}

// GetByID returns a single plan by ID.
func (s *PlanService) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.GetByID: %w", err)
	}
	return p, nil
}

// List returns all plans.
func (s *PlanService) List(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.List: %w", err)
	}
	return plans, nil
}

// Update applies patch to the plan. A non-nil images slice replaces the
// plan's images; nil keeps the current ones. An existing plan needs no image.
func (s *PlanService) Update(ctx context.Context, id uuid.UUID, patch domain.PlanPatch, images [][]byte) (domain.Plan, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Update: %w", err)
	}

	next := patch.Apply(current)
	count := len(current.Images)
	if images != nil {
		count = len(images)
	}
	if err := domain.ValidatePlan(next, count, false); err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Update: %w", err)
	}

	if images != nil {
		stored, err := s.saveImages(ctx, images)
		if err != nil {
			return domain.Plan{}, fmt.Errorf("service.PlanService.Update: %w", err)
		}
		next.Images = stored
	}

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		if images != nil {
			s.removeImages(ctx, next.Images)
		}
		return domain.Plan{}, fmt.Errorf("service.PlanService.Update: %w", err)
	}
	if images != nil {
		s.removeImages(ctx, current.Images)
	}
	return updated, nil
}

// Delete removes a plan and its stored images.
func (s *PlanService) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.PlanService.Delete: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PlanService.Delete: %w", err)
	}
	s.removeImages(ctx, current.Images)
	s.log.InfoContext(ctx, "plan deleted", "plan_id", id)
	return nil
}

// saveImages stores every image or none: on failure the ones already written
// are removed.
func (s *PlanService) saveImages(ctx context.Context, images [][]byte) ([]string, error) {
	stored := make([]string, 0, len(images))
	for i, data := range images {
		p, err := s.images.Save(ctx, data)
		if err != nil {
			s.removeImages(ctx, stored)
			return nil, fmt.Errorf("images[%d]: %w", i, err)
		}
		stored = append(stored, p)
	}
	return stored, nil
}

func (s *PlanService) removeImages(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.images.Remove(ctx, p); err != nil {
			s.log.WarnContext(ctx, "image cleanup failed", "path", p, "error", err)
		}
	}
}
