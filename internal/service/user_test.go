package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/repo"
	"github.com/pkordes/vereda-tours/internal/service"
)

func TestUserService_Create_AdminSetsRole(t *testing.T) {
	svc := service.NewUserService(repo.NewMemoryUserRepo(0))

	u, err := svc.Create(context.Background(),
		domain.User{Name: "Luis", Email: "luis@example.com", Role: domain.RoleTouristGuide}, "password123")

	require.NoError(t, err)
	assert.Equal(t, domain.RoleTouristGuide, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
}

func TestUserService_Create_DefaultRoleAndBadRole(t *testing.T) {
	svc := service.NewUserService(repo.NewMemoryUserRepo(0))
	ctx := context.Background()

	u, err := svc.Create(ctx, domain.User{Name: "Luis", Email: "luis@example.com"}, "password123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, u.Role)

	_, err = svc.Create(ctx, domain.User{Name: "Eva", Email: "eva@example.com", Role: "ROOT"}, "password123")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc := service.NewUserService(repo.NewMemoryUserRepo(0))
	ctx := context.Background()
	u, err := svc.Create(ctx, domain.User{Name: "Luis", Email: "luis@example.com"}, "password123")
	require.NoError(t, err)
	me := domain.Principal{UserID: u.ID, Role: u.Role}

	age := 29
	agePtr := &age
	address := "Calle 10 # 5-20"
	got, err := svc.UpdateProfile(ctx, me, domain.UserPatch{Age: &agePtr, Address: &address})
	require.NoError(t, err)
	require.NotNil(t, got.Profile.Age)
	assert.Equal(t, 29, *got.Profile.Age)
	assert.Equal(t, address, got.Profile.Address)
	assert.Equal(t, "luis@example.com", got.Email)

	bad := 200
	badPtr := &bad
	_, err = svc.UpdateProfile(ctx, me, domain.UserPatch{Age: &badPtr})
	assert.ErrorIs(t, err, domain.ErrValidation)

	profile, err := svc.Profile(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, 29, *profile.Profile.Age)
}

func TestUserService_Delete_NotFound(t *testing.T) {
	svc := service.NewUserService(repo.NewMemoryUserRepo(0))
	ctx := context.Background()
	u, err := svc.Create(ctx, domain.User{Name: "Luis", Email: "luis@example.com"}, "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))
	assert.ErrorIs(t, svc.Delete(ctx, u.ID), domain.ErrNotFound)
	_, err = svc.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserService_Create_DuplicateEmailConflicts(t *testing.T) {
	svc := service.NewUserService(repo.NewMemoryUserRepo(0))
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.User{Name: "Luis", Email: "luis@example.com"}, "password123")
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.User{Name: "Luis Two", Email: "LUIS@example.com"}, "password123")
	assert.ErrorIs(t, err, domain.ErrConflict)
}
