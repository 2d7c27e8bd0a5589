// Package notify delivers local notifications for scheduled reminders.
//
// Delivery is one-way: a delivered notification shows the reminder
// category's actions, and the user's chosen action re-enters the
// program through the dispatch package. Nothing here touches the
// network.
package notify

import (
	"context"
	"errors"
)

// Notification category and action identifiers. The action IDs travel
// with the user's response and are matched by the dispatcher, so they
// are stable identifiers, not display strings.
const (
	CategoryTaskReminder = "task-reminder"
	ActionComplete       = "complete-task"
	ActionSnooze         = "snooze-10"
)

// ErrPermissionDenied indicates the platform refused to let the
// application deliver notifications. Scheduling must become a no-op
// after this: the platform would silently drop anything scheduled.
var ErrPermissionDenied = errors.New("notification permission denied")

// Action is a named response button registered under a category.
type Action struct {
	// ID is the machine-readable action identifier.
	ID string

	// Title is the button label shown to the user.
	Title string
}

// ReminderActions returns the two response actions of the task
// reminder category.
func ReminderActions() []Action {
	return []Action{
		{ID: ActionComplete, Title: "Mark complete"},
		{ID: ActionSnooze, Title: "Snooze 10 min"},
	}
}

// Notification is a single message to present to the user.
type Notification struct {
	// ID is the local reminder handle the notification belongs to.
	ID string

	// Title is the headline (e.g. "Task due").
	Title string

	// Body is the message text, usually the task title.
	Body string

	// Category selects the registered action set.
	Category string

	// Actions are the response buttons to present.
	Actions []Action

	// Data is the encoded ReminderPayload, read back when the
	// notification is actioned.
	Data string
}

// Notifier presents notifications to the user.
type Notifier interface {
	// Setup verifies the notifier is permitted to deliver and
	// registers the reminder category. Returns ErrPermissionDenied
	// when the platform refuses.
	Setup(ctx context.Context) error

	// Deliver presents a notification.
	Deliver(ctx context.Context, n Notification) error
}
