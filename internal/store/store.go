package store

import (
	"context"

	"github.com/nhle/taskdue/internal/model"
)

// Store defines the persistence interface for the local reminder
// queue. The queue is what lets scheduled reminders survive a process
// restart: at startup the scheduler re-arms every pending entry.
type Store interface {
	// CreateReminder persists a newly scheduled reminder. A missing
	// ID is assigned.
	CreateReminder(ctx context.Context, r model.Reminder) error

	// PendingReminders returns all undelivered reminders ordered by
	// fire time ascending.
	PendingReminders(ctx context.Context) ([]model.Reminder, error)

	// MarkDelivered records that a reminder's notification went out.
	MarkDelivered(ctx context.Context, id string) error

	// PurgeDelivered removes delivered reminders older than the
	// given number of days, keeping the queue small.
	PurgeDelivered(ctx context.Context, olderThanDays int) error
}
