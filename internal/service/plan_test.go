package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/repo"
	"github.com/pkordes/vereda-tours/internal/service"
)

func validPlan() domain.Plan {
	return domain.Plan{
		Name:          "Parque Nacional del Chicamocha",
		Description:   "Recorrido guiado con teleférico y miradores.",
		Price:         domain.Money{Amount: 150000},
		DurationHours: 8,
		MaxOccupancy:  10,
		AvailableDates: []domain.DateRange{{
			From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		}},
	}
}

func img() []byte { return []byte("png") }

func TestPlanService_Create_DefaultsAndImages(t *testing.T) {
	images := &mockImageStore{}
	svc := service.NewPlanService(repo.NewMemoryPlanRepo(0), images, discardLogger())

	got, err := svc.Create(context.Background(), validPlan(), [][]byte{img(), img()})

	require.NoError(t, err)
	assert.Equal(t, domain.PlanPending, got.Status)
	assert.Equal(t, domain.CurrencyCOP, got.Price.Currency)
	assert.Equal(t, images.saved, got.Images)
	assert.Len(t, got.Images, 2)
}

func TestPlanService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Plan)
		images int
		field  string
	}{
		{"name too short", func(p *domain.Plan) { p.Name = strings.Repeat("a", 9) }, 1, "name"},
		{"no images", func(*domain.Plan) {}, 0, "images"},
		{"four images", func(*domain.Plan) {}, 4, "images"},
		{"occupancy 13", func(p *domain.Plan) { p.MaxOccupancy = 13 }, 1, "max_occupancy"},
		{"zero price", func(p *domain.Plan) { p.Price.Amount = 0 }, 1, "price.amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images := &mockImageStore{}
			svc := service.NewPlanService(repo.NewMemoryPlanRepo(0), images, discardLogger())
			p := validPlan()
			tt.mutate(&p)
			uploads := make([][]byte, tt.images)
			for i := range uploads {
				uploads[i] = img()
			}

			_, err := svc.Create(context.Background(), p, uploads)

			require.ErrorIs(t, err, domain.ErrValidation)
			var fe domain.FieldErrors
			require.True(t, errors.As(err, &fe))
			assert.Contains(t, fe, tt.field)
			assert.Empty(t, images.saved, "nothing is stored when validation fails")
		})
	}
}

func TestPlanService_Create_ImageFailureRollsBack(t *testing.T) {
	images := &mockImageStore{fail: domain.FieldErrors{"image": "bad"}, failAt: 1}
	svc := service.NewPlanService(repo.NewMemoryPlanRepo(0), images, discardLogger())

	_, err := svc.Create(context.Background(), validPlan(), [][]byte{img(), img()})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, images.saved, images.removed)
}

func TestPlanService_Create_RepoFailureRemovesImages(t *testing.T) {
	images := &mockImageStore{}
	boom := errors.New("db down")
	r := &mockPlanRepo{create: func(context.Context, domain.Plan) (domain.Plan, error) { return domain.Plan{}, boom }}
	svc := service.NewPlanService(r, images, discardLogger())

	_, err := svc.Create(context.Background(), validPlan(), [][]byte{img()})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, images.saved, images.removed)
}

func TestPlanService_Update_PartialKeepsImages(t *testing.T) {
	images := &mockImageStore{}
	r := repo.NewMemoryPlanRepo(0)
	svc := service.NewPlanService(r, images, discardLogger())
	created, err := svc.Create(context.Background(), validPlan(), [][]byte{img()})
	require.NoError(t, err)

	status := domain.PlanActive
	got, err := svc.Update(context.Background(), created.ID, domain.PlanPatch{Status: &status}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.PlanActive, got.Status)
	assert.Equal(t, created.Images, got.Images)
	assert.Equal(t, created.Name, got.Name)
	assert.Empty(t, images.removed)
}

func TestPlanService_Update_ReplacesImages(t *testing.T) {
	images := &mockImageStore{}
	svc := service.NewPlanService(repo.NewMemoryPlanRepo(0), images, discardLogger())
	created, err := svc.Create(context.Background(), validPlan(), [][]byte{img()})
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), created.ID, domain.PlanPatch{}, [][]byte{img(), img()})

	require.NoError(t, err)
	assert.Len(t, got.Images, 2)
	assert.Equal(t, created.Images, images.removed, "old images are removed after the update")
}

func TestPlanService_Update_ImagesOptionalWhenEditing(t *testing.T) {
	svc := service.NewPlanService(repo.NewMemoryPlanRepo(0), &mockImageStore{}, discardLogger())
	created, err := svc.Create(context.Background(), validPlan(), [][]byte{img()})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, domain.PlanPatch{}, [][]byte{})

	assert.NoError(t, err)
}

func TestPlanService_Update_NotFound(t *testing.T) {
	svc := service.NewPlanService(repo.NewMemoryPlanRepo(0), &mockImageStore{}, discardLogger())

	_, err := svc.Update(context.Background(), uuid.New(), domain.PlanPatch{}, nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanService_Delete(t *testing.T) {
	images := &mockImageStore{}
	svc := service.NewPlanService(repo.NewMemoryPlanRepo(0), images, discardLogger())
	created, err := svc.Create(context.Background(), validPlan(), [][]byte{img()})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Equal(t, created.Images, images.removed)

	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), domain.ErrNotFound)
	plans, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, plans)
}
