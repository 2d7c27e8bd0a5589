// Package dispatch routes user responses to delivered reminders back
// into the completion ledger and the scheduler.
//
// A response may arrive long after the reminder was scheduled, from a
// different process run, possibly racing a foreground action on the
// same task. The dispatcher therefore trusts nothing from schedule
// time: the payload's owner is re-validated against the current
// session on every dispatch, and every failure is swallowed after
// logging, because there is no UI to surface it to and one bad
// response must never block later ones.
package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/nhle/taskdue/internal/model"
	"github.com/nhle/taskdue/internal/notify"
)

// Response is a user's reaction to a delivered reminder.
type Response struct {
	// ActionID identifies the chosen action (notify.ActionComplete
	// or notify.ActionSnooze).
	ActionID string

	// Payload is the reminder's opaque data, read back from the
	// notification.
	Payload model.ReminderPayload
}

// Completer records a task completion. Implemented by ledger.Ledger.
type Completer interface {
	Complete(ctx context.Context, taskID, userID string) error
}

// Snoozer schedules a follow-up reminder. Implemented by
// reminder.Scheduler.
type Snoozer interface {
	ScheduleSnooze(
		ctx context.Context,
		payload model.ReminderPayload,
		minutes int,
	) (*model.Reminder, error)
}

// Sessions exposes the currently authenticated user. Implemented by
// session.Manager.
type Sessions interface {
	CurrentUser() *model.User
}

// Dispatcher is the single listener for reminder responses.
type Dispatcher struct {
	sessions  Sessions
	completer Completer
	snoozer   Snoozer
	log       *zap.Logger

	// snoozeMinutes is the offset applied by the snooze action.
	snoozeMinutes int
}

// NewDispatcher creates a dispatcher. snoozeMinutes is the snooze
// action's offset; 10 matches the "Snooze 10 min" button.
func NewDispatcher(
	sessions Sessions,
	completer Completer,
	snoozer Snoozer,
	snoozeMinutes int,
	log *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		sessions:      sessions,
		completer:     completer,
		snoozer:       snoozer,
		snoozeMinutes: snoozeMinutes,
		log:           log,
	}
}

// HandleResponse processes one reminder response. It never returns an
// error: background reminder handling logs and drops failures so that
// notification processing keeps flowing.
func (d *Dispatcher) HandleResponse(ctx context.Context, resp Response) {
	switch resp.ActionID {
	case notify.ActionComplete:
		d.handleComplete(ctx, resp.Payload)
	case notify.ActionSnooze:
		d.handleSnooze(ctx, resp.Payload)
	default:
		d.log.Debug("ignoring unknown reminder action",
			zap.String("action", resp.ActionID))
	}
}

// handleComplete records the completion for the payload's task after
// confirming the reminder still belongs to the signed-in user. A
// reminder scheduled under a previous account must not complete tasks
// for the current one, so the owner comes from the payload and is
// checked here, at dispatch time, never from state captured at
// schedule time.
func (d *Dispatcher) handleComplete(ctx context.Context, payload model.ReminderPayload) {
	user := d.sessions.CurrentUser()
	if user == nil || user.ID != payload.UserID {
		d.log.Debug("discarding reminder for different owner",
			zap.String("task_id", payload.TaskID),
			zap.String("payload_owner", payload.UserID))
		return
	}

	if err := d.completer.Complete(ctx, payload.TaskID, payload.UserID); err != nil {
		d.log.Warn("background completion failed",
			zap.String("task_id", payload.TaskID),
			zap.Error(err))
	}
}

// handleSnooze re-schedules the reminder a fixed offset out.
func (d *Dispatcher) handleSnooze(ctx context.Context, payload model.ReminderPayload) {
	if _, err := d.snoozer.ScheduleSnooze(ctx, payload, d.snoozeMinutes); err != nil {
		d.log.Warn("snoozing reminder failed",
			zap.String("task_id", payload.TaskID),
			zap.Error(err))
	}
}
