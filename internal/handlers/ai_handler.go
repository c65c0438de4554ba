package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/services"
)

type Captioner interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CaptionResponse represents a generated caption
type CaptionResponse struct {
	Success bool   `json:"success" example:"true"`
	Caption string `json:"caption" example:"Thank you all for making this album possible!"`
}

type AIHandler struct {
	responder
	captions  Captioner
	validator *services.ValidationHelper
}

func NewAIHandler(captions Captioner, log zerolog.Logger, dev bool) *AIHandler {
	return &AIHandler{
		responder: responder{log: log.With().Str("component", "ai_handler").Logger(), dev: dev},
		captions:  captions,
		validator: services.NewValidationHelper(),
	}
}

// Caption generates a short social caption
// @Summary Generate caption
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CaptionRequest true "Prompt"
// @Success 200 {object} CaptionResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 502 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /ai/caption [post]
func (h *AIHandler) Caption(w http.ResponseWriter, r *http.Request) {
	var req services.CaptionRequest
	if err := services.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.writeError(w, r, err)
		return
	}

	caption, err := h.captions.Generate(r.Context(), req.Prompt)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CaptionResponse{Success: true, Caption: caption})
}
