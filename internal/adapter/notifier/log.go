package notifier

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/bankdash/internal/domain"
)

// LogNotifier writes every UI event to the log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "ui_events").Logger()}
}

// Notify logs event. Error toasts are logged at warn level, the rest at debug.
func (n *LogNotifier) Notify(_ context.Context, event domain.Event) {
	entry := n.logger.Debug()
	if event.Type == domain.EventTypeToast && event.Level == domain.ToastLevelError {
		entry = n.logger.Warn()
	}

	entry = entry.Str("event_type", string(event.Type))
	if event.Level != "" {
		entry = entry.Str("toast_level", string(event.Level))
	}
	if event.Type == domain.EventTypeStateChanged {
		entry = entry.Str("from", string(event.From)).Str("to", string(event.To))
	}

	entry.Time("occurred_at", event.OccurredAt).Msg(event.Message)
}

// Notifier is the subset of usecase.Notifier implemented by this package.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event)
}

// Multi fans an event out to several notifiers in order.
type Multi []Notifier

// Notify delivers event to every notifier.
func (m Multi) Notify(ctx context.Context, event domain.Event) {
	for _, n := range m {
		n.Notify(ctx, event)
	}
}
