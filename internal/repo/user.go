package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/vereda-tours/internal/domain"
)

// UserRepo defines the persistence operations for Users.
type UserRepo interface {
	// Create returns domain.ErrConflict when the email is already registered.
	Create(ctx context.Context, user domain.User) (domain.User, error)

	// GetByID returns domain.ErrNotFound if no user with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// GetByEmail matches case-insensitively.
	// Returns domain.ErrNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// List returns all users, oldest first.
	List(ctx context.Context) ([]domain.User, error)

	// Update overwrites username, names and profile. Email, role and
	// password hash are immutable here.
	Update(ctx context.Context, user domain.User) (domain.User, error)

	// Delete returns domain.ErrNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `id, username, name, last_name, email, password_hash, role, age, phone, address, created_at, updated_at`

func (r *pgUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	q := `
		INSERT INTO users (username, name, last_name, email, password_hash, role, age, phone, address)
		VALUES (@username, @name, @last_name, @email, @password_hash, @role, @age, @phone, @address)
		RETURNING ` + userColumns

	args := pgx.NamedArgs{
		"username":      user.Username,
		"name":          user.Name,
		"last_name":     user.LastName,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          string(user.Role),
		"age":           user.Profile.Age,
		"phone":         user.Profile.Phone,
		"address":       user.Profile.Address,
	}
	result, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = @id`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", translate(err))
	}
	return result, nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = @email`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": strings.ToLower(email)}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", translate(err))
	}
	return result, nil
}

func (r *pgUserRepo) List(ctx context.Context) ([]domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.List: %w", err)
	}
	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.List: %w", err)
	}
	return users, nil
}

func (r *pgUserRepo) Update(ctx context.Context, user domain.User) (domain.User, error) {
	q := `
		UPDATE users
		SET username   = @username,
		    name       = @name,
		    last_name  = @last_name,
		    age        = @age,
		    phone      = @phone,
		    address    = @address,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + userColumns

	args := pgx.NamedArgs{
		"id":        user.ID,
		"username":  user.Username,
		"name":      user.Name,
		"last_name": user.LastName,
		"age":       user.Profile.Age,
		"phone":     user.Profile.Phone,
		"address":   user.Profile.Address,
	}
	result, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", translate(err))
	}
	return result, nil
}

func (r *pgUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := execAffecting(ctx, r.db, `DELETE FROM users WHERE id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.UserRepo.Delete: %w", err)
	}
	return nil
}

// scanUser maps a single database row into a domain.User.
func scanUser(s scanner) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := s.Scan(&u.ID, &u.Username, &u.Name, &u.LastName, &u.Email, &u.PasswordHash, &role,
		&u.Profile.Age, &u.Profile.Phone, &u.Profile.Address, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}
