package service

import (
	"context"
	"fmt"

	"github.com/pkordes/vereda-tours/internal/domain"
)

// Export returns one row per reservation with user, guide and plan names
// resolved. Administrators only.
func (s *ReservationService) Export(ctx context.Context, p domain.Principal) ([]domain.ExportRow, error) {
	list, err := s.List(ctx, p, true)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.Export: %w", err)
	}
	return domain.ExportRows(list), nil
}
