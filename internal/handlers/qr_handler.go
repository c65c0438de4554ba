package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type SupportPageQR interface {
	SupportPageQR(ctx context.Context, link string) ([]byte, error)
}

type QRHandler struct {
	responder
	service SupportPageQR
}

func NewQRHandler(service SupportPageQR, log zerolog.Logger, dev bool) *QRHandler {
	return &QRHandler{
		responder: responder{log: log.With().Str("component", "qr_handler").Logger(), dev: dev},
		service:   service,
	}
}

// SupportPage renders a creator's support page link as a QR code
// @Summary Support page QR code
// @Description PNG QR code pointing at the public support page
// @Tags Users
// @Produce png
// @Param supportLink path string true "Support link" example(support-janedoe)
// @Success 200 {file} binary
// @Failure 404 {object} services.ErrorResponse
// @Router /users/support/{supportLink}/qr [get]
func (h *QRHandler) SupportPage(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.SupportPageQR(r.Context(), chi.URLParam(r, "supportLink"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
