package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/repo"
	"github.com/pkordes/vereda-tours/internal/selection"
)

// SelectionService remembers which plan a browser session picked before
// reaching the booking page.
type SelectionService struct {
	store selection.Store
	plans repo.PlanRepo
	now   func() time.Time
}

// NewSelectionService constructs a SelectionService.
func NewSelectionService(store selection.Store, plans repo.PlanRepo) *SelectionService {
	return &SelectionService{store: store, plans: plans, now: time.Now}
}

// Select stores planID for the session and returns the plan.
func (s *SelectionService) Select(ctx context.Context, sessionID string, planID uuid.UUID) (domain.Plan, error) {
	if sessionID == "" {
		return domain.Plan{}, fmt.Errorf("service.SelectionService.Select: %w",
			domain.FieldErrors{"session_id": "session identifier is required"})
	}
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.SelectionService.Select: %w", err)
	}
	if err := s.store.Put(ctx, sessionID, selection.Selection{PlanID: planID, SelectedAt: s.now().UTC()}); err != nil {
		return domain.Plan{}, fmt.Errorf("service.SelectionService.Select: %w", err)
	}
	return plan, nil
}

// Current returns the selected plan. ok is false when nothing is selected
// or the selected plan no longer exists; that is an empty state, not an error.
func (s *SelectionService) Current(ctx context.Context, sessionID string) (plan domain.Plan, ok bool, err error) {
	if sessionID == "" {
		return domain.Plan{}, false, nil
	}
	sel, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, selection.ErrEmpty) {
		return domain.Plan{}, false, nil
	}
	if err != nil {
		return domain.Plan{}, false, fmt.Errorf("service.SelectionService.Current: %w", err)
	}
	plan, err = s.plans.GetByID(ctx, sel.PlanID)
	if errors.Is(err, domain.ErrNotFound) {
		_ = s.store.Clear(ctx, sessionID)
		return domain.Plan{}, false, nil
	}
	if err != nil {
		return domain.Plan{}, false, fmt.Errorf("service.SelectionService.Current: %w", err)
	}
	return plan, true, nil
}

// Clear forgets the session's selection.
func (s *SelectionService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("service.SelectionService.Clear: %w", err)
	}
	return nil
}
