package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/middleware"
	"github.com/supportly/backend/internal/models"
	"github.com/supportly/backend/internal/services"
)

type Authenticator interface {
	Register(ctx context.Context, req services.RegisterRequest) (*services.AuthResponse, error)
	Login(ctx context.Context, req services.LoginRequest) (*services.AuthResponse, error)
	Logout(ctx context.Context, token string) error
}

type AccountDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindBySupportLink(ctx context.Context, link string) (*models.User, error)
	List(ctx context.Context, page models.Page) ([]models.User, models.Pagination, error)
	UpdateProfile(ctx context.Context, id string, in services.ProfileUpdate) (*models.User, error)
	Deactivate(ctx context.Context, id string) error
	UpdateRole(ctx context.Context, id, role string) (*models.User, error)
}

// UpdateProfileRequest represents the profile update payload
// @Description Profile update structure; omitted fields stay unchanged
type UpdateProfileRequest struct {
	FullName *string `json:"fullName,omitempty" validate:"omitempty,min=2,max=100" example:"Jane Doe"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=500" example:"Indie musician"`
	Avatar   *string `json:"avatar,omitempty" validate:"omitempty,url" example:"https://cdn.example.com/jane.png"`
}

// UpdateRoleRequest represents the admin role change payload
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=fan creator admin" example:"creator"`
}

type UserHandler struct {
	responder
	auth      Authenticator
	accounts  AccountDirectory
	validator *services.ValidationHelper
}

func NewUserHandler(auth Authenticator, accounts AccountDirectory, log zerolog.Logger, dev bool) *UserHandler {
	return &UserHandler{
		responder: responder{log: log.With().Str("component", "user_handler").Logger(), dev: dev},
		auth:      auth,
		accounts:  accounts,
		validator: services.NewValidationHelper(),
	}
}

// Register creates an account
// @Summary Register user
// @Description Create a fan or creator account and receive an access token
// @Tags Users
// @Accept json
// @Produce json
// @Param request body services.RegisterRequest true "Registration details"
// @Success 201 {object} Response{data=services.AuthResponse}
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /users/register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := services.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: "User registered successfully", Data: resp})
}

// Login authenticates a user
// @Summary User login
// @Description Authenticate with email and password
// @Tags Users
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Login credentials"
// @Success 200 {object} Response{data=services.AuthResponse}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /users/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := services.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Login successful", Data: resp})
}

// Logout revokes the caller's token
// @Summary User logout
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /users/logout [post]
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.TokenFromContext(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Logged out successfully"})
}

// Me returns the caller's own account
// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User}
// @Failure 401 {object} services.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.FindByID(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: user})
}

// List returns active users, newest first
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=ListData}
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, pagination, err := h.accounts.List(r.Context(), pageFromRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	profiles := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].PublicProfile())
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: ListData{Items: profiles, Pagination: pagination}})
}

// Get returns a public profile
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} Response{data=models.PublicProfile}
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: user.PublicProfile()})
}

// GetBySupportLink resolves a support page
// @Summary Get user by support link
// @Tags Users
// @Produce json
// @Param supportLink path string true "Support link" example(support-janedoe)
// @Success 200 {object} Response{data=models.PublicProfile}
// @Failure 404 {object} services.ErrorResponse
// @Router /users/support/{supportLink} [get]
func (h *UserHandler) GetBySupportLink(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.FindBySupportLink(r.Context(), chi.URLParam(r, "supportLink"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: user.PublicProfile()})
}

// Update edits the caller's own profile
// @Summary Update profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} Response{data=models.User}
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != middleware.UserIDFromContext(r.Context()) {
		h.writeError(w, r, fmt.Errorf("%w: you can only update your own profile", services.ErrForbidden))
		return
	}

	var req UpdateProfileRequest
	if err := services.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), id, services.ProfileUpdate{
		FullName: req.FullName,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "User updated successfully", Data: user})
}

// Delete deactivates an account
// @Summary Deactivate user
// @Description Accounts are soft-deleted. Users may deactivate themselves; admins may deactivate anyone.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Response
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != middleware.UserIDFromContext(r.Context()) && middleware.RoleFromContext(r.Context()) != models.RoleAdmin {
		h.writeError(w, r, fmt.Errorf("%w: you can only delete your own account", services.ErrForbidden))
		return
	}

	if err := h.accounts.Deactivate(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "User deleted successfully"})
}

// UpdateRole changes an account's role
// @Summary Change user role
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateRoleRequest true "New role"
// @Success 200 {object} Response{data=models.User}
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /users/{id}/role [patch]
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if err := services.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.accounts.UpdateRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: user})
}
