package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/gateway"
	"github.com/supportly/backend/internal/middleware"
	"github.com/supportly/backend/internal/models"
	"github.com/supportly/backend/internal/services"
)

const maxNotificationBytes = 64 << 10

type Payments interface {
	CreateSession(ctx context.Context, payerID string, req services.SessionRequest) (*services.SessionResponse, error)
	HandleNotification(ctx context.Context, n gateway.Notification) (services.Outcome, error)
	GetOrder(ctx context.Context, requesterID, orderID string) (*models.Support, error)
}

// NotificationAck is the fixed body the gateway reads to decide whether to redeliver.
type NotificationAck struct {
	Status string `json:"status" example:"OK"`
}

type PaymentHandler struct {
	responder
	payments  Payments
	validator *services.ValidationHelper
}

func NewPaymentHandler(payments Payments, log zerolog.Logger, dev bool) *PaymentHandler {
	return &PaymentHandler{
		responder: responder{log: log.With().Str("component", "payment_handler").Logger(), dev: dev},
		payments:  payments,
		validator: services.NewValidationHelper(),
	}
}

// CreateSession opens a hosted checkout for supporting a creator
// @Summary Create payment session
// @Description Opens a gateway checkout session. The payer is the authenticated user.
// @Tags Payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.SessionRequest true "Session details"
// @Success 200 {object} services.SessionResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 429 {object} services.ErrorResponse
// @Failure 502 {object} services.ErrorResponse
// @Router /payment/snap-token [post]
func (h *PaymentHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req services.SessionRequest
	if err := services.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.payments.CreateSession(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Notification receives asynchronous payment status callbacks
// @Summary Payment notification
// @Description Called by the payment gateway. Any non-200 answer makes the gateway redeliver.
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body gateway.Notification true "Gateway notification"
// @Success 200 {object} NotificationAck
// @Failure 400 {object} NotificationAck
// @Failure 403 {object} NotificationAck
// @Failure 500 {object} NotificationAck
// @Router /payment/notification [post]
func (h *PaymentHandler) Notification(w http.ResponseWriter, r *http.Request) {
	var n gateway.Notification
	r.Body = http.MaxBytesReader(w, r.Body, maxNotificationBytes)
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		h.log.Warn().Err(err).Msg("Undecodable payment notification")
		writeJSON(w, http.StatusBadRequest, NotificationAck{Status: "Invalid notification body."})
		return
	}

	outcome, err := h.payments.HandleNotification(r.Context(), n)
	switch {
	case err == nil:
		h.log.Info().Str("order_id", n.OrderID).Str("outcome", string(outcome)).Msg("Payment notification acknowledged")
		writeJSON(w, http.StatusOK, NotificationAck{Status: "OK"})
	case errors.Is(err, services.ErrForbidden):
		writeJSON(w, http.StatusForbidden, NotificationAck{Status: "Invalid signature."})
	default:
		h.log.Error().Err(err).Str("order_id", n.OrderID).Msg("Payment notification failed")
		writeJSON(w, http.StatusInternalServerError, NotificationAck{Status: "Error processing notification."})
	}
}

// GetOrder returns the support recorded for a confirmed order
// @Summary Get order
// @Description Visible to the payer and the recipient. 404 until the payment is confirmed.
// @Tags Payment
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "Order ID" example(SUP-vytxeTZskVKR7C7WgdSP3d)
// @Success 200 {object} Response{data=models.Support}
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /payment/orders/{orderId} [get]
func (h *PaymentHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	support, err := h.payments.GetOrder(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "orderId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: support})
}
