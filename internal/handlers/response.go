package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/middleware"
	"github.com/supportly/backend/internal/models"
	"github.com/supportly/backend/internal/services"
)

// Response is the envelope every JSON endpoint answers with.
// @Description Standard response envelope
type Response struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ListData wraps one page of results.
type ListData struct {
	Items      any               `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}

// responder is shared by all handlers so error mapping stays in one place.
type responder struct {
	log zerolog.Logger
	dev bool
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrGateway):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, services.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps service errors onto HTTP statuses. Unexpected errors are
// logged in full and answered generically outside development.
func (rs responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	status := statusFor(err)
	if status != http.StatusInternalServerError {
		services.SendErrorResponse(w, err.Error(), status, nil)
		return
	}

	rs.log.Error().Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Unhandled error")

	resp := services.ErrorResponse{Success: false, Message: "An Internal Error Occurred"}
	if rs.dev {
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

// pageFromRequest reads ?page and ?limit; bad values fall back to defaults.
func pageFromRequest(r *http.Request) models.Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return models.NewPage(page, limit)
}
