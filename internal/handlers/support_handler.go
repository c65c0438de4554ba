package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/middleware"
	"github.com/supportly/backend/internal/models"
	"github.com/supportly/backend/internal/services"
)

type Donor interface {
	Donate(ctx context.Context, fanID string, req services.DonationRequest) (*models.Support, error)
}

type SupportHistory interface {
	ListReceived(ctx context.Context, creatorID string, page models.Page) ([]models.Support, models.Pagination, error)
	ListSent(ctx context.Context, fanID string, page models.Page) ([]models.Support, models.Pagination, error)
}

type SupportHandler struct {
	responder
	donations Donor
	history   SupportHistory
	validator *services.ValidationHelper
}

func NewSupportHandler(donations Donor, history SupportHistory, log zerolog.Logger, dev bool) *SupportHandler {
	return &SupportHandler{
		responder: responder{log: log.With().Str("component", "support_handler").Logger(), dev: dev},
		donations: donations,
		history:   history,
		validator: services.NewValidationHelper(),
	}
}

// Create records a direct donation
// @Summary Direct donation
// @Description Record a support that was settled outside the payment gateway and credit the creator
// @Tags Support
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.DonationRequest true "Donation details"
// @Success 201 {object} Response{data=models.Support}
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /support [post]
func (h *SupportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.DonationRequest
	if err := services.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.writeError(w, r, err)
		return
	}

	support, err := h.donations.Donate(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Donation received and processed successfully.",
		Data:    support,
	})
}

// Received lists supports credited to the caller
// @Summary Supports received
// @Tags Support
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=ListData}
// @Router /support/received [get]
func (h *SupportHandler) Received(w http.ResponseWriter, r *http.Request) {
	supports, pagination, err := h.history.ListReceived(r.Context(), middleware.UserIDFromContext(r.Context()), pageFromRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: ListData{Items: supports, Pagination: pagination}})
}

// Sent lists supports the caller gave
// @Summary Supports sent
// @Tags Support
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=ListData}
// @Router /support/sent [get]
func (h *SupportHandler) Sent(w http.ResponseWriter, r *http.Request) {
	supports, pagination, err := h.history.ListSent(r.Context(), middleware.UserIDFromContext(r.Context()), pageFromRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: ListData{Items: supports, Pagination: pagination}})
}
