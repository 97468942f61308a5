package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tabletap/order-svc/internal/domain"

	"github.com/gorilla/mux"
)

var keepAliveInterval = 15 * time.Second

// streamOrderEvents pushes status transitions of one pending order as
// server-sent events. The stream ends once the order is confirmed or the
// client disconnects.
func (h *Handler) streamOrderEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	ctx := r.Context()
	session := sessionFrom(r)
	id := mux.Vars(r)["id"]

	events, cancel, err := h.Orders.WatchOrder(ctx, session, id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	defer cancel()

	// Read the state after subscribing so a confirmation racing the subscribe is not lost.
	current, err := h.Orders.GetPendingOrder(ctx, session, id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snapshot := domain.OrderEvent{
		Type:          domain.EventOrderCreated,
		OrderID:       current.ID,
		RestaurantID:  current.RestaurantID,
		UserID:        current.UserID,
		Status:        current.Status,
		OriginalTotal: current.OriginalTotal,
		FinalTotal:    current.FinalTotal,
		Timestamp:     current.CreatedAt,
	}
	if current.Status == domain.OrderStatusConfirmed {
		snapshot.Type = domain.EventOrderConfirmed
	}
	if err := writeEvent(w, snapshot); err != nil {
		return
	}
	flusher.Flush()
	if snapshot.Status == domain.OrderStatusConfirmed {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, event); err != nil {
				return
			}
			flusher.Flush()
			if event.Status == domain.OrderStatusConfirmed {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, event domain.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
	return err
}
