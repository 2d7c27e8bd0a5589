package model

import "time"

// ReminderKind distinguishes how a reminder was scheduled.
type ReminderKind string

const (
	// ReminderKindDue is the primary reminder for a task's due date.
	ReminderKindDue ReminderKind = "due"

	// ReminderKindSnooze is a follow-up scheduled by the snooze action.
	ReminderKindSnooze ReminderKind = "snooze"
)

// Reminder is a locally scheduled notification for a task. Reminders
// are persisted so a restart re-arms anything not yet delivered; they
// are never sent to the remote store. A reminder is not cancelled when
// its task is completed or deleted, so a stale one may still fire;
// the idempotent completion write makes that harmless.
type Reminder struct {
	// ID is the local handle for the scheduled reminder.
	ID string `json:"id"`

	// Kind records whether this is a due-date or snooze reminder.
	Kind ReminderKind `json:"kind"`

	// TaskID, UserID, Title, and DueDate mirror the ReminderPayload
	// carried on the notification.
	TaskID  string `json:"task_id"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	DueDate string `json:"due_date"`

	// FireAt is when the reminder should be delivered.
	FireAt time.Time `json:"fire_at"`

	// Delivered marks that the notification went out.
	Delivered bool `json:"delivered"`

	// CreatedAt is when the reminder was scheduled.
	CreatedAt time.Time `json:"created_at"`
}

// Payload returns the opaque data bundle attached to the delivered
// notification.
func (r Reminder) Payload() ReminderPayload {
	return ReminderPayload{
		TaskID:  r.TaskID,
		UserID:  r.UserID,
		Title:   r.Title,
		DueDate: r.DueDate,
	}
}
