package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is fixed when a user is created.
type Role string

const (
	RoleClient        Role = "CLIENT"
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleTouristGuide  Role = "TOURIST_GUIDE"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleAdministrator || r == RoleTouristGuide
}

// PasswordMin is the shortest accepted password.
const PasswordMin = 8

// User is an account. Email is immutable after creation by convention and
// PasswordHash never leaves the service layer.
type User struct {
	ID           uuid.UUID
	Username     string
	Name         string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the optional attributes editable from the profile page.
type Profile struct {
	Age     *int
	Phone   string
	Address string
}

// RefID implements Referable.
func (u User) RefID() uuid.UUID { return u.ID }

// DisplayName implements Referable.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.Name + " " + u.LastName)
}

// ValidateUser enforces account rules common to register and admin create/update.
func ValidateUser(u User) error {
	fe := FieldErrors{}
	if len(strings.TrimSpace(u.Name)) < 3 {
		fe.Add("name", "must be at least 3 characters")
	}
	if !validEmail(u.Email) {
		fe.Add("email", "must be a valid email address")
	}
	if !u.Role.Valid() {
		fe.Add("role", "must be CLIENT, ADMINISTRATOR or TOURIST_GUIDE")
	}
	if u.Profile.Age != nil && (*u.Profile.Age < 0 || *u.Profile.Age > 130) {
		fe.Add("age", "must be between 0 and 130")
	}
	return fe.Err()
}

// ValidateGuide enforces the guide form rules.
func ValidateGuide(g Guide) error {
	fe := FieldErrors{}
	if len(strings.TrimSpace(g.Name)) < 3 {
		fe.Add("name", "must be at least 3 characters")
	}
	if !validEmail(g.Email) {
		fe.Add("email", "must be a valid email address")
	}
	if len(strings.TrimSpace(g.Phone)) < 7 {
		fe.Add("phone", "must be at least 7 characters")
	}
	return fe.Err()
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func fieldIndex(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}
