package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/repo"
)

// Claims is the payload of an access token.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Session is returned by a successful login.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        domain.User
}

// Registration is the self-service sign-up payload.
type Registration struct {
	Username string
	Name     string
	LastName string
	Email    string
	Password string
	Profile  domain.Profile
}

// AuthService registers clients, checks credentials and issues HS256
// access tokens.
type AuthService struct {
	users  repo.UserRepo
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService constructs an AuthService signing tokens with secret.
func NewAuthService(users repo.UserRepo, secret string, ttl time.Duration) *AuthService {
	return &AuthService{users: users, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Register creates a CLIENT account.
func (s *AuthService) Register(ctx context.Context, reg Registration) (domain.User, error) {
	u := domain.User{
		Username: reg.Username,
		Name:     reg.Name,
		LastName: reg.LastName,
		Email:    reg.Email,
		Role:     domain.RoleClient,
		Profile:  reg.Profile,
	}
	if u.Username == "" {
		u.Username = reg.Email
	}
	hash, err := prepareUser(u, reg.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	u.PasswordHash = hash

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	return created, nil
}

// Login checks email and password. Unknown email and wrong password both
// fail with ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w: invalid credentials", domain.ErrUnauthorized)
	}
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w: invalid credentials", domain.ErrUnauthorized)
	}

	token, expires, err := s.sign(u)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return Session{AccessToken: token, ExpiresAt: expires, User: u}, nil
}

// Authenticate validates an access token and returns its principal.
func (s *AuthService) Authenticate(token string) (domain.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("service.AuthService.Authenticate: %w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.Principal{}, fmt.Errorf("service.AuthService.Authenticate: %w: token invalid", domain.ErrUnauthorized)
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("service.AuthService.Authenticate: %w: bad subject", domain.ErrUnauthorized)
	}
	return domain.Principal{UserID: id, Role: domain.Role(claims.Role)}, nil
}

func (s *AuthService) sign(u domain.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		UserID: u.ID.String(),
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// prepareUser validates u and password together and returns the bcrypt hash.
func prepareUser(u domain.User, password string) (string, error) {
	fe := domain.FieldErrors{}
	if err := domain.ValidateUser(u); err != nil {
		var userErrs domain.FieldErrors
		if !errors.As(err, &userErrs) {
			return "", err
		}
		for k, v := range userErrs {
			fe.Add(k, v)
		}
	}
	if len(password) < domain.PasswordMin {
		fe.Add("password", fmt.Sprintf("must be at least %d characters", domain.PasswordMin))
	}
	if err := fe.Err(); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
