package notifier

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/bankdash/internal/domain"
	"github.com/iho/bankdash/internal/infrastructure/metrics"
)

// DefaultQueueSize is used when a non-positive size is requested.
const DefaultQueueSize = 256

// Queue buffers UI events until the UI collaborator drains them.
// Notify never blocks; events are dropped when the buffer is full.
type Queue struct {
	events  chan domain.Event
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewQueue creates a Queue holding at most size events.
func NewQueue(size int, metrics *metrics.Metrics, logger zerolog.Logger) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}

	return &Queue{
		events:  make(chan domain.Event, size),
		metrics: metrics,
		logger:  logger.With().Str("component", "ui_queue").Logger(),
	}
}

// Notify enqueues event.
func (q *Queue) Notify(_ context.Context, event domain.Event) {
	select {
	case q.events <- event:
	default:
		if q.metrics != nil {
			q.metrics.EventsDropped.Inc()
		}
		q.logger.Warn().Str("event_type", string(event.Type)).Msg("ui event queue full, dropping event")
	}
}

// Drain returns up to max queued events in publication order without waiting.
// A non-positive max drains everything currently queued.
func (q *Queue) Drain(max int) []domain.Event {
	if max <= 0 {
		max = cap(q.events)
	}

	out := make([]domain.Event, 0, min(max, len(q.events)))
	for len(out) < max {
		select {
		case event := <-q.events:
			out = append(out, event)
		default:
			return out
		}
	}

	return out
}

// Wait blocks until at least one event is queued or ctx is done, then drains
// up to max events.
func (q *Queue) Wait(ctx context.Context, max int) ([]domain.Event, error) {
	select {
	case event := <-q.events:
		if max == 1 {
			return []domain.Event{event}, nil
		}
		return append([]domain.Event{event}, q.Drain(max-1)...), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.events)
}
