package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/middleware"
	"github.com/supportly/backend/internal/models"
	"github.com/supportly/backend/internal/services"
)

type PostStore interface {
	Create(ctx context.Context, creatorID string, in services.PostInput) (*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, page models.Page) ([]models.Post, models.Pagination, error)
	ListByCreator(ctx context.Context, creatorID string, page models.Page) ([]models.Post, models.Pagination, error)
	Update(ctx context.Context, requesterID, id string, in services.PostUpdate) (*models.Post, error)
	Delete(ctx context.Context, requesterID, id string) error
}

type PostHandler struct {
	responder
	posts     PostStore
	validator *services.ValidationHelper
}

func NewPostHandler(posts PostStore, log zerolog.Logger, dev bool) *PostHandler {
	return &PostHandler{
		responder: responder{log: log.With().Str("component", "post_handler").Logger(), dev: dev},
		posts:     posts,
		validator: services.NewValidationHelper(),
	}
}

// Create publishes a post
// @Summary Create post
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.PostInput true "Post content"
// @Success 201 {object} Response{data=models.Post}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.PostInput
	if err := services.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.posts.Create(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: post})
}

// Get returns one post
// @Summary Get post
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} Response{data=models.Post}
// @Failure 404 {object} services.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: post})
}

// List returns posts, newest first
// @Summary List posts
// @Tags Posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=ListData}
// @Router /posts [get]
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, pagination, err := h.posts.List(r.Context(), pageFromRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: ListData{Items: posts, Pagination: pagination}})
}

// ListByCreator returns one creator's posts
// @Summary List posts by creator
// @Tags Posts
// @Produce json
// @Param id path string true "Creator ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=ListData}
// @Failure 400 {object} services.ErrorResponse
// @Router /users/{id}/posts [get]
func (h *PostHandler) ListByCreator(w http.ResponseWriter, r *http.Request) {
	posts, pagination, err := h.posts.ListByCreator(r.Context(), chi.URLParam(r, "id"), pageFromRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: ListData{Items: posts, Pagination: pagination}})
}

// Update edits a post owned by the caller
// @Summary Update post
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body services.PostUpdate true "Changed fields"
// @Success 200 {object} Response{data=models.Post}
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.PostUpdate
	if err := services.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.posts.Update(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: post})
}

// Delete removes a post owned by the caller
// @Summary Delete post
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} Response
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Post deleted"})
}
