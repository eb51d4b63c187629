package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/bankdash/internal/adapter/http/dto"
	"github.com/iho/bankdash/internal/domain"
)

// EventSource yields queued UI events.
type EventSource interface {
	Drain(max int) []domain.Event
	Wait(ctx context.Context, max int) ([]domain.Event, error)
}

// MaxEventWait bounds how long a client may long-poll for events.
const MaxEventWait = 30 * time.Second

// EventHandler hands queued UI events to the client.
type EventHandler struct {
	events EventSource
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events EventSource) *EventHandler {
	return &EventHandler{events: events}
}

// List drains up to max events. With wait (seconds) it blocks until at
// least one event is queued or the wait elapses.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "max", 0)
	wait := time.Duration(parseIntQuery(r, "wait", 0)) * time.Second
	if wait > MaxEventWait {
		wait = MaxEventWait
	}

	var events []domain.Event
	if wait > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), wait)
		defer cancel()

		// A timeout just means nothing was queued.
		events, _ = h.events.Wait(ctx, limit)
	} else {
		events = h.events.Drain(limit)
	}

	writeJSON(w, http.StatusOK, dto.ListEventsResponse{Events: dto.EventsFromDomain(events)})
}
