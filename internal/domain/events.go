package domain

import "time"

// EventType identifies a request sent from the workflow to the UI.
type EventType string

// Event types
const (
	EventTypeShowConfirmation EventType = "show_confirmation"
	EventTypeToast            EventType = "toast"
	EventTypeRenderAccounts   EventType = "render_accounts"
	EventTypeRenderHistory    EventType = "render_history"
	EventTypeStateChanged     EventType = "state_changed"
)

// ToastLevel is the severity of a toast message.
type ToastLevel string

const (
	ToastLevelSuccess ToastLevel = "success"
	ToastLevelError   ToastLevel = "error"
	ToastLevelWarning ToastLevel = "warning"
)

// Event is a render request for the UI collaborator.
type Event struct {
	Type       EventType
	Level      ToastLevel
	Message    string
	Summary    *ConfirmationSummary
	From       WorkflowState
	To         WorkflowState
	OccurredAt time.Time
}

// ToastEvent creates a toast event.
func ToastEvent(level ToastLevel, message string, at time.Time) Event {
	return Event{Type: EventTypeToast, Level: level, Message: message, OccurredAt: at}
}

// ConfirmationEvent asks the UI to show the confirmation dialog.
func ConfirmationEvent(summary ConfirmationSummary, at time.Time) Event {
	return Event{Type: EventTypeShowConfirmation, Summary: &summary, Message: summary.String(), OccurredAt: at}
}

// RenderEvent asks the UI to redraw part of the dashboard.
func RenderEvent(t EventType, at time.Time) Event {
	return Event{Type: t, OccurredAt: at}
}

// StateChangedEvent reports a workflow transition.
func StateChangedEvent(from, to WorkflowState, at time.Time) Event {
	return Event{Type: EventTypeStateChanged, From: from, To: to, OccurredAt: at}
}
