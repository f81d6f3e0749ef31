package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/repo"
)

// newMock returns a pgxmock pool that fails the test if any expectation is
// left unmet.
func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

var (
	planCols = []string{"id", "name", "description", "price_amount", "price_currency", "duration_hours",
		"max_occupancy", "images", "available_dates", "status", "created_at", "updated_at"}
	guideCols       = []string{"id", "name", "email", "phone", "status", "schedule", "created_at", "updated_at"}
	userCols        = []string{"id", "username", "name", "last_name", "email", "password_hash", "role", "age", "phone", "address", "created_at", "updated_at"}
	reservationCols = []string{"id", "user_id", "guide_id", "plan_id", "participants", "meal", "date_time",
		"total_amount", "total_currency", "state", "payment_method", "created_at", "updated_at"}
)

func TestPgPlanRepo_GetByID_DecodesDatesAndImages(t *testing.T) {
	mock := newMock(t)
	r := repo.NewPlanRepo(mock)
	id := uuid.New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM plans WHERE id = @id`).
		WillReturnRows(pgxmock.NewRows(planCols).AddRow(
			id, "Cascada La Chorrera", "Caminata guiada", int64(150000), "COP", 6, 8,
			[]string{"plans/a.jpg"}, []byte(`[{"from":"2026-01-10","to":"2026-01-20"}]`),
			"ACTIVE", now, now))

	got, err := r.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, domain.PlanActive, got.Status)
	assert.Equal(t, []string{"plans/a.jpg"}, got.Images)
	require.Len(t, got.AvailableDates, 1)
	assert.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), got.AvailableDates[0].From)
	assert.Equal(t, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), got.AvailableDates[0].To)
}

func TestPgPlanRepo_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	r := repo.NewPlanRepo(mock)

	mock.ExpectQuery(`SELECT .* FROM plans`).WillReturnError(pgx.ErrNoRows)

	_, err := r.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPgPlanRepo_List_EmptyIsNonNil(t *testing.T) {
	mock := newMock(t)
	r := repo.NewPlanRepo(mock)

	mock.ExpectQuery(`SELECT .* FROM plans ORDER BY`).WillReturnRows(pgxmock.NewRows(planCols))

	plans, err := r.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, plans)
	assert.Empty(t, plans)
}

func TestPgPlanRepo_Delete_NoRowsIsNotFound(t *testing.T) {
	mock := newMock(t)
	r := repo.NewPlanRepo(mock)

	mock.ExpectExec(`DELETE FROM plans`).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, r.Delete(context.Background(), uuid.New()), domain.ErrNotFound)
}

func TestPgPlanRepo_Delete_ReferencedIsConflict(t *testing.T) {
	mock := newMock(t)
	r := repo.NewPlanRepo(mock)

	mock.ExpectExec(`DELETE FROM plans`).
		WillReturnError(&pgconn.PgError{Code: "23503", TableName: "reservations"})

	assert.ErrorIs(t, r.Delete(context.Background(), uuid.New()), domain.ErrConflict)
}

func TestPgGuideRepo_UpdateSchedule_RoundTripsJSON(t *testing.T) {
	mock := newMock(t)
	r := repo.NewGuideRepo(mock)
	id := uuid.New()
	now := time.Now().UTC()
	stored := []byte(`[{"day":"MONDAY","available":true,"ranges":[{"start":{"hour":9,"minute":0,"second":0,"nano":0},"end":{"hour":12,"minute":0,"second":0,"nano":0}}]}]`)

	mock.ExpectQuery(`UPDATE guides`).
		WillReturnRows(pgxmock.NewRows(guideCols).AddRow(id, "Ana Torres", "ana@example.com", "3001234567", "ACTIVE", stored, now, now))

	schedule := []domain.DayAvailability{{Day: domain.Monday, Available: true,
		Ranges: []domain.TimeRange{{Start: domain.TimeOfDay{Hour: 9}, End: domain.TimeOfDay{Hour: 12}}}}}
	got, err := r.UpdateSchedule(context.Background(), id, schedule, domain.GuideActive)

	require.NoError(t, err)
	assert.Equal(t, domain.GuideActive, got.Status)
	assert.Equal(t, schedule, got.Schedule)
}

func TestPgUserRepo_Create_DuplicateEmailIsConflict(t *testing.T) {
	mock := newMock(t)
	r := repo.NewUserRepo(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_idx"})

	_, err := r.Create(context.Background(), userFixture("ana@example.com"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPgUserRepo_GetByEmail_ScansOptionalAge(t *testing.T) {
	mock := newMock(t)
	r := repo.NewUserRepo(mock)
	id := uuid.New()
	now := time.Now().UTC()
	age := 40

	mock.ExpectQuery(`SELECT .* FROM users WHERE lower\(email\)`).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(id, "ana", "Ana", "Torres", "ana@example.com",
			"$2a$10$hash", "ADMINISTRATOR", &age, "300", "Calle 1", now, now))

	got, err := r.GetByEmail(context.Background(), "ANA@example.com")

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdministrator, got.Role)
	require.NotNil(t, got.Profile.Age)
	assert.Equal(t, 40, *got.Profile.Age)
}

func TestPgReservationRepo_ListByUser_BareRefs(t *testing.T) {
	mock := newMock(t)
	r := repo.NewReservationRepo(mock)
	userID, guideID, planID := uuid.New(), uuid.New(), uuid.New()
	at := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM reservations WHERE user_id = @user_id`).
		WillReturnRows(pgxmock.NewRows(reservationCols).AddRow(uuid.New(), userID, guideID, planID, 3, "ALMUERZO",
			at, int64(525000), "COP", "CONFIRMED", "", at, at))

	got, err := r.ListByUser(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, guideID, got[0].Guide.ID())
	assert.False(t, got[0].Guide.IsExpanded())
	assert.Equal(t, domain.MealLunch, got[0].Meal)
	assert.Equal(t, domain.StateConfirmed, got[0].State)
	assert.Equal(t, domain.PaymentMethod(""), got[0].PaymentMethod)
}

func TestPgReservationRepo_List_QueryError(t *testing.T) {
	mock := newMock(t)
	r := repo.NewReservationRepo(mock)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`FROM reservations`).WillReturnError(boom)

	_, err := r.List(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPgReservationRepo_Update_CancelledIsInvalidState(t *testing.T) {
	mock := newMock(t)
	r := repo.NewReservationRepo(mock)
	id, at := uuid.New(), time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)UPDATE reservations.*WHERE id = @id AND state <> @cancelled`).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`FROM reservations WHERE id = @id`).
		WillReturnRows(pgxmock.NewRows(reservationCols).AddRow(id, uuid.New(), uuid.New(), uuid.New(), 3, "ALMUERZO",
			at, int64(525000), "COP", "CANCELLED", "", at, at))

	_, err := r.Update(context.Background(), domain.Reservation{ID: id, Meal: domain.MealDinner, DateTime: at})

	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestPgReservationRepo_Update_MissingIsNotFound(t *testing.T) {
	mock := newMock(t)
	r := repo.NewReservationRepo(mock)

	mock.ExpectQuery(`UPDATE reservations`).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`FROM reservations WHERE id = @id`).WillReturnError(pgx.ErrNoRows)

	_, err := r.Update(context.Background(), domain.Reservation{ID: uuid.New()})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
