package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mataam/internal/core"
	applog "mataam/internal/log"
	"mataam/internal/whatsapp"
)

// handleCreateOrder is the public checkout endpoint. It persists the
// order and hands back the WhatsApp message and link the frontend opens
// to forward the order to the restaurant.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.orders.PlaceOrder(r.Context(), req.toCore())
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Create order failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	msg := whatsapp.OrderMessage(created, s.restName, time.Now())

	s.metrics.orderPlaced()
	sl := applog.NewStructuredLogger(applog.FromContext(r.Context()))
	sl.LogOrderPlaced(r.Context(), created.ID, created.OrderNumber, created.TotalAmount.Halalas, len(created.Lines))

	respondJSON(w, http.StatusCreated, orderCreatedResponse{
		Order:           toOrderJSON(created),
		WhatsAppMessage: msg,
		WhatsAppURL:     whatsapp.URL(s.restPhone, msg),
	})
}

// handleListOrders returns orders for the admin dashboard, newest first,
// optionally windowed by from/to dates.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	orders, err := s.orders.ListOrders(r.Context(), from, to, parseLimit(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "List orders failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	out := make([]orderJSON, len(orders))
	for i, o := range orders {
		out[i] = toOrderJSON(o)
	}
	respondJSON(w, http.StatusOK, out)
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrNoLines) ||
		errors.Is(err, core.ErrInvalidQuantity) ||
		errors.Is(err, core.ErrInvalidTotal) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrEmptyName)
}
