package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/repo"
	"github.com/pkordes/vereda-tours/internal/selection"
	"github.com/pkordes/vereda-tours/internal/service"
)

func TestSelectionService(t *testing.T) {
	plans := repo.NewMemoryPlanRepo(0)
	ctx := context.Background()
	p, err := plans.Create(ctx, validPlan())
	require.NoError(t, err)
	svc := service.NewSelectionService(selection.NewMemoryStore(time.Minute), plans)

	_, ok, err := svc.Current(ctx, "tab")
	require.NoError(t, err)
	assert.False(t, ok, "nothing selected is an empty state")

	_, err = svc.Select(ctx, "tab", uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Select(ctx, "", p.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Select(ctx, "tab", p.ID)
	require.NoError(t, err)
	got, ok, err := svc.Current(ctx, "tab")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)

	require.NoError(t, svc.Clear(ctx, "tab"))
	_, ok, err = svc.Current(ctx, "tab")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectionService_DeletedPlanIsEmpty(t *testing.T) {
	plans := repo.NewMemoryPlanRepo(0)
	ctx := context.Background()
	p, err := plans.Create(ctx, validPlan())
	require.NoError(t, err)
	svc := service.NewSelectionService(selection.NewMemoryStore(time.Minute), plans)
	_, err = svc.Select(ctx, "tab", p.ID)
	require.NoError(t, err)

	require.NoError(t, plans.Delete(ctx, p.ID))

	_, ok, err := svc.Current(ctx, "tab")
	require.NoError(t, err)
	assert.False(t, ok)
}
