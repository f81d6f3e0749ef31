package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/service"
)

type registerRequest struct {
	Username string              `json:"username"`
	Name     string              `json:"name"`
	LastName string              `json:"last_name"`
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
	Age      *int                `json:"age"`
	Phone    string              `json:"phone"`
	Address  string              `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        userResponse `json:"user"`
}

// Register handles POST /auth/register. New accounts are always CLIENT.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeWithEmail(w, r, &req) {
		return
	}
	u, err := s.Auth.Register(r.Context(), service.Registration{
		Username: req.Username,
		Name:     req.Name,
		LastName: req.LastName,
		Email:    string(req.Email),
		Password: req.Password,
		Profile:  domain.Profile{Age: req.Age, Phone: req.Phone, Address: req.Address},
	})
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusCreated, userToResponse(u))
}

// Login handles POST /auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: sess.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   sess.ExpiresAt,
		User:        userToResponse(sess.User),
	})
}
