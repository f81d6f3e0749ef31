package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/repo"
)

// UserService implements the administrator's user directory and the
// caller's own profile.
type UserService struct {
	repo repo.UserRepo
}

// NewUserService constructs a UserService.
func NewUserService(r repo.UserRepo) *UserService {
	return &UserService{repo: r}
}

// Create adds an account with the given role and password. Role defaults
// to CLIENT.
func (s *UserService) Create(ctx context.Context, u domain.User, password string) (domain.User, error) {
	if u.Role == "" {
		u.Role = domain.RoleClient
	}
	if u.Username == "" {
		u.Username = u.Email
	}
	hash, err := prepareUser(u, password)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Create: %w", err)
	}
	u.PasswordHash = hash

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single user by ID.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.GetByID: %w", err)
	}
	return u, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.List: %w", err)
	}
	return users, nil
}

// Update applies patch. Email and role cannot change.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (domain.User, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Update: %w", err)
	}
	next := patch.Apply(current)
	if err := domain.ValidateUser(next); err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Update: %w", err)
	}
	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a user by ID.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.UserService.Delete: %w", err)
	}
	return nil
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, p domain.Principal) (domain.User, error) {
	return s.GetByID(ctx, p.UserID)
}

// UpdateProfile edits the caller's own account.
func (s *UserService) UpdateProfile(ctx context.Context, p domain.Principal, patch domain.UserPatch) (domain.User, error) {
	return s.Update(ctx, p.UserID, patch)
}
