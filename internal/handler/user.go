package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/vereda-tours/internal/domain"
)

// optionalInt distinguishes an absent field from an explicit null.
type optionalInt struct {
	Set   bool
	Value *int
}

func (o *optionalInt) UnmarshalJSON(b []byte) error {
	o.Set = true
	return json.Unmarshal(b, &o.Value)
}

type profileJSON struct {
	Age     *int   `json:"age"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type userResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Name      string      `json:"name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Role      string      `json:"role"`
	Profile   profileJSON `json:"profile"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func userToResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Name:      u.Name,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
		Profile:   profileJSON{Age: u.Profile.Age, Phone: u.Profile.Phone, Address: u.Profile.Address},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// createUserRequest is the admin create body. Email is decoded as
// openapi_types.Email, which rejects malformed addresses at decode time.
type createUserRequest struct {
	Username string              `json:"username"`
	Name     string              `json:"name"`
	LastName string              `json:"last_name"`
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
	Role     string              `json:"role"`
	Profile  profileJSON         `json:"profile"`
}

// updateUserRequest is shared by the admin update and the profile update.
type updateUserRequest struct {
	Username *string     `json:"username"`
	Name     *string     `json:"name"`
	LastName *string     `json:"last_name"`
	Age      optionalInt `json:"age"`
	Phone    *string     `json:"phone"`
	Address  *string     `json:"address"`
}

func (req updateUserRequest) patch() domain.UserPatch {
	p := domain.UserPatch{
		Username: req.Username,
		Name:     req.Name,
		LastName: req.LastName,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	if req.Age.Set {
		age := req.Age.Value
		p.Age = &age
	}
	return p
}

// decodeWithEmail decodes a body holding an openapi_types.Email field,
// turning a malformed address into a 422 on the email field.
func decodeWithEmail(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	if errors.Is(err, openapi_types.ErrValidationEmail) {
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", "validation failed",
			map[string]string{"email": "must be a valid email address"})
		return false
	}
	badRequest(w, "malformed JSON body: "+err.Error())
	return false
}

// ListUsers handles GET /users.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = userToResponse(u)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetUser handles GET /users/{id}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := s.Users.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// CreateUser handles POST /users.
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeWithEmail(w, r, &req) {
		return
	}
	u := domain.User{
		Username: req.Username,
		Name:     req.Name,
		LastName: req.LastName,
		Email:    string(req.Email),
		Role:     domain.Role(req.Role),
		Profile:  domain.Profile{Age: req.Profile.Age, Phone: req.Profile.Phone, Address: req.Profile.Address},
	}
	created, err := s.Users.Create(r.Context(), u, req.Password)
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusCreated, userToResponse(created))
}

// UpdateUser handles PUT /users/{id}.
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := s.Users.Update(r.Context(), id, req.patch())
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// DeleteUser handles DELETE /users/{id}.
func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Users.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /auth/profile.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	u, err := s.Users.Profile(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// UpdateProfile handles PUT /auth/profile.
func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := s.Users.UpdateProfile(r.Context(), p, req.patch())
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}
