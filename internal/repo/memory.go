package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vereda-tours/internal/domain"
)

// memStore is an in-memory collection keyed by UUID, used by the mock-mode
// repositories. Every call sleeps for latency first to emulate a network
// round trip; the sleep is abandoned when ctx is done.
type memStore[T any] struct {
	mu      sync.RWMutex
	items   map[uuid.UUID]T
	created map[uuid.UUID]time.Time
	latency time.Duration
	now     func() time.Time
}

func newMemStore[T any](latency time.Duration) *memStore[T] {
	return &memStore[T]{
		items:   make(map[uuid.UUID]T),
		created: make(map[uuid.UUID]time.Time),
		latency: latency,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *memStore[T]) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *memStore[T]) get(id uuid.UUID) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[id]
	if !ok {
		var zero T
		return zero, domain.ErrNotFound
	}
	return v, nil
}

func (s *memStore[T]) put(id uuid.UUID, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.created[id]; !ok {
		s.created[id] = s.now()
	}
	s.items[id] = v
}

// replace stores v only if id already exists.
func (s *memStore[T]) replace(id uuid.UUID, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	s.items[id] = v
	return nil
}

// modify applies fn to the stored value of id under the write lock and
// stores the result unless fn fails.
func (s *memStore[T]) modify(id uuid.UUID, fn func(T) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	v, ok := s.items[id]
	if !ok {
		return zero, domain.ErrNotFound
	}
	v, err := fn(v)
	if err != nil {
		return zero, err
	}
	s.items[id] = v
	return v, nil
}

func (s *memStore[T]) has(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok
}

func (s *memStore[T]) remove(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	delete(s.created, id)
	return nil
}

// list returns the items matching keep in insertion order.
func (s *memStore[T]) list(keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := s.created[ids[i]], s.created[ids[j]]
		if ci.Equal(cj) {
			return ids[i].String() < ids[j].String()
		}
		return ci.Before(cj)
	})
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if v := s.items[id]; keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// memLinks holds the reservation references between memory repositories so
// they enforce the same restrictions as the foreign keys in Postgres: a
// referenced plan, guide or user cannot be deleted and a reservation cannot
// point at a missing one. mu serialises those checks with the writes.
type memLinks struct {
	mu           sync.Mutex
	plans        *memStore[domain.Plan]
	guides       *memStore[domain.Guide]
	users        *memStore[domain.User]
	reservations *memStore[domain.Reservation]
}

// removeUnreferenced deletes id from the parent store unless a reservation
// matched by refersTo still points at it.
func removeUnreferenced[T any](l *memLinks, s *memStore[T], id uuid.UUID, refersTo func(domain.Reservation) uuid.UUID) error {
	if l == nil {
		return s.remove(id)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.reservations.list(func(res domain.Reservation) bool { return refersTo(res) == id })) > 0 {
		return fmt.Errorf("%w: still referenced by reservations", domain.ErrConflict)
	}
	return s.remove(id)
}

func (l *memLinks) insert(res domain.Reservation) error {
	if l == nil {
		return nil
	}
	if !l.users.has(res.User.ID()) || !l.guides.has(res.Guide.ID()) || !l.plans.has(res.Plan.ID()) {
		return fmt.Errorf("%w: reservation references a missing record", domain.ErrConflict)
	}
	return nil
}

// MemoryRepos is a set of in-memory repositories that share reservation
// references.
type MemoryRepos struct {
	Plans        PlanRepo
	Guides       GuideRepo
	Users        UserRepo
	Reservations ReservationRepo
}

// NewMemoryRepos returns linked in-memory repositories for mock mode.
func NewMemoryRepos(latency time.Duration) MemoryRepos {
	l := &memLinks{
		plans:        newMemStore[domain.Plan](latency),
		guides:       newMemStore[domain.Guide](latency),
		users:        newMemStore[domain.User](latency),
		reservations: newMemStore[domain.Reservation](latency),
	}
	return MemoryRepos{
		Plans:        &memPlanRepo{store: l.plans, links: l},
		Guides:       &memGuideRepo{store: l.guides, links: l},
		Users:        &memUserRepo{store: l.users, links: l},
		Reservations: &memReservationRepo{store: l.reservations, links: l},
	}
}

// ---- plans -----------------------------------------------------------------

type memPlanRepo struct {
	store *memStore[domain.Plan]
	links *memLinks
}

// NewMemoryPlanRepo returns a PlanRepo held in process memory.
func NewMemoryPlanRepo(latency time.Duration) PlanRepo {
	return &memPlanRepo{store: newMemStore[domain.Plan](latency)}
}

func (r *memPlanRepo) Create(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: %w", err)
	}
	now := r.store.now()
	plan.ID = uuid.New()
	plan.CreatedAt, plan.UpdatedAt = now, now
	plan.Images = cloneStrings(plan.Images)
	r.store.put(plan.ID, plan)
	return plan, nil
}

func (r *memPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.GetByID: %w", err)
	}
	p, err := r.store.get(id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.GetByID: %w", err)
	}
	return p, nil
}

func (r *memPlanRepo) List(ctx context.Context) ([]domain.Plan, error) {
	if err := r.store.wait(ctx); err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.List: %w", err)
	}
	return r.store.list(nil), nil
}

func (r *memPlanRepo) Update(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Update: %w", err)
	}
	current, err := r.store.get(plan.ID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Update: %w", err)
	}
	plan.CreatedAt = current.CreatedAt
	plan.UpdatedAt = r.store.now()
	plan.Images = cloneStrings(plan.Images)
	if err := r.store.replace(plan.ID, plan); err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Update: %w", err)
	}
	return plan, nil
}

func (r *memPlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.store.wait(ctx); err != nil {
		return fmt.Errorf("repo.PlanRepo.Delete: %w", err)
	}
	refersTo := func(res domain.Reservation) uuid.UUID { return res.Plan.ID() }
	if err := removeUnreferenced(r.links, r.store, id, refersTo); err != nil {
		return fmt.Errorf("repo.PlanRepo.Delete: %w", err)
	}
	return nil
}

// ---- guides ----------------------------------------------------------------

type memGuideRepo struct {
	store *memStore[domain.Guide]
	links *memLinks
}

// NewMemoryGuideRepo returns a GuideRepo held in process memory.
func NewMemoryGuideRepo(latency time.Duration) GuideRepo {
	return &memGuideRepo{store: newMemStore[domain.Guide](latency)}
}

func (r *memGuideRepo) Create(ctx context.Context, guide domain.Guide) (domain.Guide, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.Create: %w", err)
	}
	now := r.store.now()
	guide.ID = uuid.New()
	guide.CreatedAt, guide.UpdatedAt = now, now
	guide.Schedule = cloneSchedule(guide.Schedule)
	r.store.put(guide.ID, guide)
	return guide, nil
}

func (r *memGuideRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Guide, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.GetByID: %w", err)
	}
	g, err := r.store.get(id)
	if err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.GetByID: %w", err)
	}
	return g, nil
}

func (r *memGuideRepo) List(ctx context.Context) ([]domain.Guide, error) {
	if err := r.store.wait(ctx); err != nil {
		return nil, fmt.Errorf("repo.GuideRepo.List: %w", err)
	}
	return r.store.list(nil), nil
}

func (r *memGuideRepo) Update(ctx context.Context, guide domain.Guide) (domain.Guide, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.Update: %w", err)
	}
	current, err := r.store.get(guide.ID)
	if err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.Update: %w", err)
	}
	current.Name = guide.Name
	current.Email = guide.Email
	current.Phone = guide.Phone
	current.UpdatedAt = r.store.now()
	if err := r.store.replace(current.ID, current); err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.Update: %w", err)
	}
	return current, nil
}

func (r *memGuideRepo) UpdateSchedule(ctx context.Context, id uuid.UUID, schedule []domain.DayAvailability, status domain.GuideStatus) (domain.Guide, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.UpdateSchedule: %w", err)
	}
	current, err := r.store.get(id)
	if err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.UpdateSchedule: %w", err)
	}
	current.Schedule = cloneSchedule(schedule)
	current.Status = status
	current.UpdatedAt = r.store.now()
	if err := r.store.replace(id, current); err != nil {
		return domain.Guide{}, fmt.Errorf("repo.GuideRepo.UpdateSchedule: %w", err)
	}
	return current, nil
}

func (r *memGuideRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.store.wait(ctx); err != nil {
		return fmt.Errorf("repo.GuideRepo.Delete: %w", err)
	}
	refersTo := func(res domain.Reservation) uuid.UUID { return res.Guide.ID() }
	if err := removeUnreferenced(r.links, r.store, id, refersTo); err != nil {
		return fmt.Errorf("repo.GuideRepo.Delete: %w", err)
	}
	return nil
}

// ---- users -----------------------------------------------------------------

type memUserRepo struct {
	store *memStore[domain.User]
	links *memLinks
	// emailMu serialises the uniqueness check with the insert.
	emailMu sync.Mutex
}

// NewMemoryUserRepo returns a UserRepo held in process memory.
func NewMemoryUserRepo(latency time.Duration) UserRepo {
	return &memUserRepo{store: newMemStore[domain.User](latency)}
}

func (r *memUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", err)
	}
	r.emailMu.Lock()
	defer r.emailMu.Unlock()
	if _, err := r.findByEmail(user.Email); err == nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w: users_email_key", domain.ErrConflict)
	}
	now := r.store.now()
	user.ID = uuid.New()
	user.CreatedAt, user.UpdatedAt = now, now
	r.store.put(user.ID, user)
	return user, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	u, err := r.store.get(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	u, err := r.findByEmail(email)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	return u, nil
}

func (r *memUserRepo) findByEmail(email string) (domain.User, error) {
	matches := r.store.list(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
	if len(matches) == 0 {
		return domain.User{}, domain.ErrNotFound
	}
	return matches[0], nil
}

func (r *memUserRepo) List(ctx context.Context) ([]domain.User, error) {
	if err := r.store.wait(ctx); err != nil {
		return nil, fmt.Errorf("repo.UserRepo.List: %w", err)
	}
	return r.store.list(nil), nil
}

func (r *memUserRepo) Update(ctx context.Context, user domain.User) (domain.User, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", err)
	}
	current, err := r.store.get(user.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", err)
	}
	current.Username = user.Username
	current.Name = user.Name
	current.LastName = user.LastName
	current.Profile = user.Profile
	current.UpdatedAt = r.store.now()
	if err := r.store.replace(current.ID, current); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", err)
	}
	return current, nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.store.wait(ctx); err != nil {
		return fmt.Errorf("repo.UserRepo.Delete: %w", err)
	}
	refersTo := func(res domain.Reservation) uuid.UUID { return res.User.ID() }
	if err := removeUnreferenced(r.links, r.store, id, refersTo); err != nil {
		return fmt.Errorf("repo.UserRepo.Delete: %w", err)
	}
	return nil
}

// ---- reservations ----------------------------------------------------------

type memReservationRepo struct {
	store *memStore[domain.Reservation]
	links *memLinks
}

// NewMemoryReservationRepo returns a ReservationRepo held in process memory.
func NewMemoryReservationRepo(latency time.Duration) ReservationRepo {
	return &memReservationRepo{store: newMemStore[domain.Reservation](latency)}
}

// bare strips expanded references so stored values match what Postgres returns.
func bare(res domain.Reservation) domain.Reservation {
	res.User = domain.RefTo[domain.User](res.User.ID())
	res.Guide = domain.RefTo[domain.Guide](res.Guide.ID())
	res.Plan = domain.RefTo[domain.Plan](res.Plan.ID())
	res.DateTime = res.DateTime.UTC()
	return res
}

func byDateTime(out []domain.Reservation) []domain.Reservation {
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out
}

func (r *memReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", err)
	}
	if r.links != nil {
		r.links.mu.Lock()
		defer r.links.mu.Unlock()
	}
	if err := r.links.insert(res); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", err)
	}
	now := r.store.now()
	res = bare(res)
	res.ID = uuid.New()
	res.CreatedAt, res.UpdatedAt = now, now
	r.store.put(res.ID, res)
	return res, nil
}

func (r *memReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", err)
	}
	res, err := r.store.get(id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", err)
	}
	return res, nil
}

func (r *memReservationRepo) List(ctx context.Context) ([]domain.Reservation, error) {
	if err := r.store.wait(ctx); err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.List: %w", err)
	}
	return byDateTime(r.store.list(nil)), nil
}

func (r *memReservationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Reservation, error) {
	if err := r.store.wait(ctx); err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListByUser: %w", err)
	}
	mine := r.store.list(func(res domain.Reservation) bool { return res.User.ID() == userID })
	return byDateTime(mine), nil
}

func (r *memReservationRepo) Update(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Update: %w", err)
	}
	updated, err := r.store.modify(res.ID, func(current domain.Reservation) (domain.Reservation, error) {
		if current.State == domain.StateCancelled {
			return current, fmt.Errorf("%w: reservation is cancelled", domain.ErrInvalidState)
		}
		current.Meal = res.Meal
		current.DateTime = res.DateTime.UTC()
		current.PaymentMethod = res.PaymentMethod
		current.UpdatedAt = r.store.now()
		return current, nil
	})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Update: %w", err)
	}
	return updated, nil
}

func (r *memReservationRepo) Cancel(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	if err := r.store.wait(ctx); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Cancel: %w", err)
	}
	cancelled, err := r.store.modify(id, func(current domain.Reservation) (domain.Reservation, error) {
		current.State = domain.StateCancelled
		current.UpdatedAt = r.store.now()
		return current, nil
	})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Cancel: %w", err)
	}
	return cancelled, nil
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneSchedule(in []domain.DayAvailability) []domain.DayAvailability {
	out := make([]domain.DayAvailability, len(in))
	for i, d := range in {
		d.Ranges = append([]domain.TimeRange{}, d.Ranges...)
		out[i] = d
	}
	return out
}
