package service_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/repo"
	"github.com/pkordes/vereda-tours/internal/service"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs.

type mockPlanRepo struct {
	create  func(ctx context.Context, p domain.Plan) (domain.Plan, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Plan, error)
	list    func(ctx context.Context) ([]domain.Plan, error)
	update  func(ctx context.Context, p domain.Plan) (domain.Plan, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPlanRepo) Create(ctx context.Context, p domain.Plan) (domain.Plan, error) {
	return m.create(ctx, p)
}
func (m *mockPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	return m.getByID(ctx, id)
}
func (m *mockPlanRepo) List(ctx context.Context) ([]domain.Plan, error) { return m.list(ctx) }
func (m *mockPlanRepo) Update(ctx context.Context, p domain.Plan) (domain.Plan, error) {
	return m.update(ctx, p)
}
func (m *mockPlanRepo) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }

var _ repo.PlanRepo = (*mockPlanRepo)(nil)

type mockGuideRepo struct {
	create         func(ctx context.Context, g domain.Guide) (domain.Guide, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Guide, error)
	list           func(ctx context.Context) ([]domain.Guide, error)
	update         func(ctx context.Context, g domain.Guide) (domain.Guide, error)
	updateSchedule func(ctx context.Context, id uuid.UUID, s []domain.DayAvailability, st domain.GuideStatus) (domain.Guide, error)
	delete         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockGuideRepo) Create(ctx context.Context, g domain.Guide) (domain.Guide, error) {
	return m.create(ctx, g)
}
func (m *mockGuideRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Guide, error) {
	return m.getByID(ctx, id)
}
func (m *mockGuideRepo) List(ctx context.Context) ([]domain.Guide, error) { return m.list(ctx) }
func (m *mockGuideRepo) Update(ctx context.Context, g domain.Guide) (domain.Guide, error) {
	return m.update(ctx, g)
}
func (m *mockGuideRepo) UpdateSchedule(ctx context.Context, id uuid.UUID, s []domain.DayAvailability, st domain.GuideStatus) (domain.Guide, error) {
	return m.updateSchedule(ctx, id, s, st)
}
func (m *mockGuideRepo) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }

var _ repo.GuideRepo = (*mockGuideRepo)(nil)

type mockImageStore struct {
	saved   []string
	removed []string
	fail    error
	failAt  int
}

func (m *mockImageStore) Save(_ context.Context, data []byte) (string, error) {
	if m.fail != nil && len(m.saved) == m.failAt {
		return "", m.fail
	}
	p := "/uploads/plans/" + uuid.NewString() + ".png"
	m.saved = append(m.saved, p)
	return p, nil
}

func (m *mockImageStore) Remove(_ context.Context, path string) error {
	m.removed = append(m.removed, path)
	return nil
}

var _ service.ImageStore = (*mockImageStore)(nil)

type mockRenderer struct {
	got domain.Reservation
}

func (m *mockRenderer) Render(res domain.Reservation) ([]byte, error) {
	m.got = res
	return []byte("%PDF-fake"), nil
}

var _ service.ReceiptRenderer = (*mockRenderer)(nil)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }
