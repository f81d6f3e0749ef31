package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/handler"
	"github.com/pkordes/vereda-tours/internal/service"
)

// Test doubles for the handler servicer interfaces.
// Set only the method fields your test needs.

type mockPlans struct {
	create  func(ctx context.Context, p domain.Plan, images [][]byte) (domain.Plan, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Plan, error)
	list    func(ctx context.Context) ([]domain.Plan, error)
	update  func(ctx context.Context, id uuid.UUID, patch domain.PlanPatch, images [][]byte) (domain.Plan, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPlans) Create(ctx context.Context, p domain.Plan, images [][]byte) (domain.Plan, error) {
	return m.create(ctx, p, images)
}
func (m *mockPlans) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	return m.getByID(ctx, id)
}
func (m *mockPlans) List(ctx context.Context) ([]domain.Plan, error) { return m.list(ctx) }
func (m *mockPlans) Update(ctx context.Context, id uuid.UUID, patch domain.PlanPatch, images [][]byte) (domain.Plan, error) {
	return m.update(ctx, id, patch, images)
}
func (m *mockPlans) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }

type mockGuides struct {
	create             func(ctx context.Context, g domain.Guide) (domain.Guide, error)
	getByID            func(ctx context.Context, id uuid.UUID) (domain.Guide, error)
	list               func(ctx context.Context) ([]domain.Guide, error)
	update             func(ctx context.Context, id uuid.UUID, patch domain.GuidePatch) (domain.Guide, error)
	delete             func(ctx context.Context, id uuid.UUID) error
	getAvailability    func(ctx context.Context, id uuid.UUID) ([]domain.EditDay, error)
	updateAvailability func(ctx context.Context, id uuid.UUID, days []domain.EditDay) (domain.Guide, error)
}

func (m *mockGuides) Create(ctx context.Context, g domain.Guide) (domain.Guide, error) {
	return m.create(ctx, g)
}
func (m *mockGuides) GetByID(ctx context.Context, id uuid.UUID) (domain.Guide, error) {
	return m.getByID(ctx, id)
}
func (m *mockGuides) List(ctx context.Context) ([]domain.Guide, error) { return m.list(ctx) }
func (m *mockGuides) Update(ctx context.Context, id uuid.UUID, patch domain.GuidePatch) (domain.Guide, error) {
	return m.update(ctx, id, patch)
}
func (m *mockGuides) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }
func (m *mockGuides) GetAvailability(ctx context.Context, id uuid.UUID) ([]domain.EditDay, error) {
	return m.getAvailability(ctx, id)
}
func (m *mockGuides) UpdateAvailability(ctx context.Context, id uuid.UUID, days []domain.EditDay) (domain.Guide, error) {
	return m.updateAvailability(ctx, id, days)
}

type mockUsers struct {
	create        func(ctx context.Context, u domain.User, password string) (domain.User, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.User, error)
	list          func(ctx context.Context) ([]domain.User, error)
	update        func(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (domain.User, error)
	delete        func(ctx context.Context, id uuid.UUID) error
	profile       func(ctx context.Context, p domain.Principal) (domain.User, error)
	updateProfile func(ctx context.Context, p domain.Principal, patch domain.UserPatch) (domain.User, error)
}

func (m *mockUsers) Create(ctx context.Context, u domain.User, password string) (domain.User, error) {
	return m.create(ctx, u, password)
}
func (m *mockUsers) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUsers) List(ctx context.Context) ([]domain.User, error) { return m.list(ctx) }
func (m *mockUsers) Update(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (domain.User, error) {
	return m.update(ctx, id, patch)
}
func (m *mockUsers) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }
func (m *mockUsers) Profile(ctx context.Context, p domain.Principal) (domain.User, error) {
	return m.profile(ctx, p)
}
func (m *mockUsers) UpdateProfile(ctx context.Context, p domain.Principal, patch domain.UserPatch) (domain.User, error) {
	return m.updateProfile(ctx, p, patch)
}

type mockAuth struct {
	register func(ctx context.Context, reg service.Registration) (domain.User, error)
	login    func(ctx context.Context, email, password string) (service.Session, error)
}

func (m *mockAuth) Register(ctx context.Context, reg service.Registration) (domain.User, error) {
	return m.register(ctx, reg)
}
func (m *mockAuth) Login(ctx context.Context, email, password string) (service.Session, error) {
	return m.login(ctx, email, password)
}

type mockReservations struct {
	quote    func(ctx context.Context, planID uuid.UUID, participants int, meal domain.Meal) (domain.PriceBreakdown, error)
	create   func(ctx context.Context, p domain.Principal, in service.NewReservation) (domain.Reservation, error)
	getByID  func(ctx context.Context, p domain.Principal, id uuid.UUID, expand bool) (domain.Reservation, error)
	list     func(ctx context.Context, p domain.Principal, expand bool) ([]domain.Reservation, error)
	listMine func(ctx context.Context, p domain.Principal, expand bool) ([]domain.Reservation, error)
	update   func(ctx context.Context, p domain.Principal, id uuid.UUID, patch domain.ReservationPatch) (domain.Reservation, error)
	cancel   func(ctx context.Context, p domain.Principal, id uuid.UUID) (domain.Reservation, error)
	payment  func(ctx context.Context, p domain.Principal, id uuid.UUID, m domain.PaymentMethod) (domain.Reservation, error)
	receipt  func(ctx context.Context, p domain.Principal, id uuid.UUID) ([]byte, error)
	export   func(ctx context.Context, p domain.Principal) ([]domain.ExportRow, error)
}

func (m *mockReservations) Quote(ctx context.Context, planID uuid.UUID, participants int, meal domain.Meal) (domain.PriceBreakdown, error) {
	return m.quote(ctx, planID, participants, meal)
}
func (m *mockReservations) Create(ctx context.Context, p domain.Principal, in service.NewReservation) (domain.Reservation, error) {
	return m.create(ctx, p, in)
}
func (m *mockReservations) GetByID(ctx context.Context, p domain.Principal, id uuid.UUID, expand bool) (domain.Reservation, error) {
	return m.getByID(ctx, p, id, expand)
}
func (m *mockReservations) List(ctx context.Context, p domain.Principal, expand bool) ([]domain.Reservation, error) {
	return m.list(ctx, p, expand)
}
func (m *mockReservations) ListMine(ctx context.Context, p domain.Principal, expand bool) ([]domain.Reservation, error) {
	return m.listMine(ctx, p, expand)
}
func (m *mockReservations) Update(ctx context.Context, p domain.Principal, id uuid.UUID, patch domain.ReservationPatch) (domain.Reservation, error) {
	return m.update(ctx, p, id, patch)
}
func (m *mockReservations) Cancel(ctx context.Context, p domain.Principal, id uuid.UUID) (domain.Reservation, error) {
	return m.cancel(ctx, p, id)
}
func (m *mockReservations) SelectPaymentMethod(ctx context.Context, p domain.Principal, id uuid.UUID, method domain.PaymentMethod) (domain.Reservation, error) {
	return m.payment(ctx, p, id, method)
}
func (m *mockReservations) Receipt(ctx context.Context, p domain.Principal, id uuid.UUID) ([]byte, error) {
	return m.receipt(ctx, p, id)
}
func (m *mockReservations) Export(ctx context.Context, p domain.Principal) ([]domain.ExportRow, error) {
	return m.export(ctx, p)
}

type mockSelection struct {
	sel     func(ctx context.Context, sid string, planID uuid.UUID) (domain.Plan, error)
	current func(ctx context.Context, sid string) (domain.Plan, bool, error)
	clear   func(ctx context.Context, sid string) error
}

func (m *mockSelection) Select(ctx context.Context, sid string, planID uuid.UUID) (domain.Plan, error) {
	return m.sel(ctx, sid, planID)
}
func (m *mockSelection) Current(ctx context.Context, sid string) (domain.Plan, bool, error) {
	return m.current(ctx, sid)
}
func (m *mockSelection) Clear(ctx context.Context, sid string) error { return m.clear(ctx, sid) }

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.PlanServicer        = (*mockPlans)(nil)
	_ handler.GuideServicer       = (*mockGuides)(nil)
	_ handler.UserServicer        = (*mockUsers)(nil)
	_ handler.AuthServicer        = (*mockAuth)(nil)
	_ handler.ReservationServicer = (*mockReservations)(nil)
	_ handler.SelectionServicer   = (*mockSelection)(nil)
)

// ---- helpers ---------------------------------------------------------------

const (
	adminToken  = "admin-token"
	clientToken = "client-token"
	tenant      = "01-santa-barbara"
)

var (
	adminPrincipal  = domain.Principal{UserID: uuid.MustParse("00000000-0000-0000-0000-00000000000a"), Role: domain.RoleAdministrator}
	clientPrincipal = domain.Principal{UserID: uuid.MustParse("00000000-0000-0000-0000-00000000000c"), Role: domain.RoleClient}
)

// stubAuthenticator accepts the two fixed test tokens.
type stubAuthenticator struct{}

func (stubAuthenticator) Authenticate(token string) (domain.Principal, error) {
	switch token {
	case adminToken:
		return adminPrincipal, nil
	case clientToken:
		return clientPrincipal, nil
	}
	return domain.Principal{}, errors.New("bad token")
}

// prefixImages resolves stored paths against a fixed public host.
type prefixImages struct{}

func (prefixImages) URL(s string) string      { return "http://cdn.test" + s }
func (prefixImages) ThumbURL(s string) string { return "http://cdn.test" + s + "?thumb" }

// newHTTPHandler wires a Server with the given mocks into the real router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(svc handler.Services) http.Handler {
	if svc.Images == nil {
		svc.Images = prefixImages{}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := handler.NewServer(svc, log, time.UTC)
	return handler.NewRouter(srv, handler.RouterOptions{
		Log:    log,
		Tenant: tenant,
		Auth:   stubAuthenticator{},
	})
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do sends one request through h. token may be empty.
func do(h http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// errorCode decodes the error envelope and returns its code.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code
}

func planFixture() domain.Plan {
	return domain.Plan{
		ID:            uuid.New(),
		Name:          "Cascada La Chorrera",
		Description:   "Caminata guiada hasta la cascada",
		Price:         domain.Money{Amount: 150000, Currency: domain.CurrencyCOP},
		DurationHours: 6,
		MaxOccupancy:  8,
		Images:        []string{"/uploads/plans/a.jpg"},
		AvailableDates: []domain.DateRange{{
			From: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		}},
		Status:    domain.PlanActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func guideFixture() domain.Guide {
	return domain.Guide{
		ID:     uuid.New(),
		Name:   "Carlos Rojas",
		Email:  "carlos@example.com",
		Phone:  "3001234567",
		Status: domain.GuideInactive,
	}
}

func userFixture() domain.User {
	age := 31
	return domain.User{
		ID:           clientPrincipal.UserID,
		Username:     "ana",
		Name:         "Ana",
		LastName:     "Torres",
		Email:        "ana@example.com",
		PasswordHash: "$2a$10$secret",
		Role:         domain.RoleClient,
		Profile:      domain.Profile{Age: &age, Phone: "3100000000"},
	}
}
