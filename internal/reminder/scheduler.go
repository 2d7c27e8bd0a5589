package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/taskdue/internal/model"
	"github.com/nhle/taskdue/internal/notify"
	"github.com/nhle/taskdue/internal/store"
)

// ErrPermissionDenied is returned by Setup when the platform refuses
// notification delivery. It aliases the notify sentinel so callers can
// match either package.
var ErrPermissionDenied = notify.ErrPermissionDenied

// minLead is how far in the future a due reminder must fire. A due
// moment already past (or within this window) is clamped to
// now + minLead, so a same-day task created after the due hour still
// reminds promptly instead of firing instantly or never.
const minLead = 60 * time.Second

// deliverTimeout bounds a single notification delivery.
const deliverTimeout = 10 * time.Second

// Scheduler arms local reminders for task due dates and snoozes.
// Reminders are persisted in the local queue and delivered by a single
// background loop, so they need no network at schedule time and
// survive process restarts.
type Scheduler struct {
	store    store.Store
	notifier notify.Notifier
	log      *zap.Logger

	// dueHour is the local hour of day a due-date reminder fires at.
	dueHour int

	// now is the clock, injectable for tests.
	now func() time.Time

	mu       sync.Mutex
	disabled bool
	running  bool
	rearmCh  chan struct{}
	stopCh   chan struct{}
}

// NewScheduler creates a scheduler over the given queue and notifier.
// dueHour is the local hour (0-23) due reminders fire at; 9 matches
// the product default of a 09:00 reminder.
func NewScheduler(
	s store.Store,
	notifier notify.Notifier,
	dueHour int,
	log *zap.Logger,
) *Scheduler {
	return &Scheduler{
		store:    s,
		notifier: notifier,
		log:      log,
		dueHour:  dueHour,
		now:      time.Now,
		rearmCh:  make(chan struct{}, 1),
	}
}

// Setup asks the notifier to verify it may deliver and registers the
// reminder category's actions. On ErrPermissionDenied the scheduler
// disables itself: every later scheduling call becomes a silent no-op,
// because the platform would drop the notification anyway.
func (s *Scheduler) Setup(ctx context.Context) error {
	if err := s.notifier.Setup(ctx); err != nil {
		if errors.Is(err, notify.ErrPermissionDenied) {
			s.mu.Lock()
			s.disabled = true
			s.mu.Unlock()
			s.log.Warn("notifications unavailable, reminders disabled",
				zap.Error(err))
		}
		return fmt.Errorf("setting up notifier: %w", err)
	}
	return nil
}

// Disabled reports whether scheduling has been disabled by a
// permission refusal.
func (s *Scheduler) Disabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}

// FireTime computes when a due-date reminder for dueDate should fire:
// the configured hour of that local day, clamped forward to
// now + minLead when that moment is past or too close.
func (s *Scheduler) FireTime(dueDate string) (time.Time, error) {
	day, err := time.ParseInLocation(model.DueDateLayout, dueDate, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing due date %q: %w", dueDate, err)
	}

	target := time.Date(
		day.Year(), day.Month(), day.Day(),
		s.dueHour, 0, 0, 0, time.Local,
	)
	soonest := s.now().Add(minLead)
	if target.Before(soonest) {
		return soonest, nil
	}
	return target, nil
}

// ScheduleDueReminder schedules the primary reminder for a task's due
// date and returns its handle. An unparseable due date yields no
// reminder and no error: callers treat "no reminder scheduled" as a
// harmless outcome, never a fatal one. Returns nil when scheduling is
// disabled.
func (s *Scheduler) ScheduleDueReminder(
	ctx context.Context,
	payload model.ReminderPayload,
) (*model.Reminder, error) {
	if s.Disabled() {
		return nil, nil
	}

	fireAt, err := s.FireTime(payload.DueDate)
	if err != nil {
		s.log.Debug("skipping reminder with bad due date",
			zap.String("task_id", payload.TaskID),
			zap.Error(err))
		return nil, nil
	}

	return s.schedule(ctx, model.ReminderKindDue, payload, fireAt)
}

// ScheduleSnooze schedules a follow-up reminder at now + minutes,
// independent of the task's due date. Returns nil when scheduling is
// disabled.
func (s *Scheduler) ScheduleSnooze(
	ctx context.Context,
	payload model.ReminderPayload,
	minutes int,
) (*model.Reminder, error) {
	if s.Disabled() {
		return nil, nil
	}

	fireAt := s.now().Add(time.Duration(minutes) * time.Minute)
	return s.schedule(ctx, model.ReminderKindSnooze, payload, fireAt)
}

// schedule persists the reminder and nudges the delivery loop.
func (s *Scheduler) schedule(
	ctx context.Context,
	kind model.ReminderKind,
	payload model.ReminderPayload,
	fireAt time.Time,
) (*model.Reminder, error) {
	r := model.Reminder{
		ID:        uuid.New().String(),
		Kind:      kind,
		TaskID:    payload.TaskID,
		UserID:    payload.UserID,
		Title:     payload.Title,
		DueDate:   payload.DueDate,
		FireAt:    fireAt,
		CreatedAt: s.now(),
	}

	if err := s.store.CreateReminder(ctx, r); err != nil {
		return nil, fmt.Errorf("persisting reminder: %w", err)
	}

	s.rearm()
	return &r, nil
}

// rearm nudges the run loop to recompute its next fire time.
func (s *Scheduler) rearm() {
	select {
	case s.rearmCh <- struct{}{}:
	default:
		// A nudge is already pending.
	}
}

// Start launches the delivery loop. Pending reminders left over from a
// previous run are picked up immediately. A stopped scheduler may be
// started again.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running || s.disabled {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	go s.run(stopCh)
}

// Stop halts the delivery loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopCh)
	s.running = false
}

// run waits for the earliest pending reminder, delivers everything
// due, and goes back to waiting. In-process schedules arrive via
// rearmCh; schedules from other processes are caught by the capped
// wait in deliverDue.
func (s *Scheduler) run(stopCh <-chan struct{}) {
	for {
		wait := s.deliverDue()

		timer := time.NewTimer(wait)
		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-s.rearmCh:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// pollInterval caps the loop's sleep. The queue is shared with other
// processes (the respond command persists snoozes directly), and those
// writers cannot nudge this loop's rearm channel, so the loop re-reads
// the queue at least this often.
const pollInterval = 30 * time.Second

// deliverDue fires every pending reminder whose time has come and
// returns how long to wait for the next one.
func (s *Scheduler) deliverDue() time.Duration {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	pending, err := s.store.PendingReminders(ctx)
	if err != nil {
		s.log.Warn("loading pending reminders failed", zap.Error(err))
		return minLead
	}

	now := s.now()
	wait := pollInterval
	for _, r := range pending {
		if r.FireAt.After(now) {
			if until := r.FireAt.Sub(now); until < wait {
				wait = until
			}
			continue
		}
		s.deliver(ctx, r)
	}
	return wait
}

// deliver sends one reminder's notification and marks it delivered.
// A failed delivery is logged and the reminder is still marked, so a
// broken notifier cannot wedge the loop into redelivering forever.
func (s *Scheduler) deliver(ctx context.Context, r model.Reminder) {
	data, err := r.Payload().Encode()
	if err != nil {
		s.log.Warn("encoding reminder payload failed",
			zap.String("reminder_id", r.ID), zap.Error(err))
	}

	title := "Task due"
	if r.Kind == model.ReminderKindSnooze {
		title = "Snoozed task"
	}

	n := notify.Notification{
		ID:       r.ID,
		Title:    title,
		Body:     r.Title,
		Category: notify.CategoryTaskReminder,
		Actions:  notify.ReminderActions(),
		Data:     data,
	}

	if err := s.notifier.Deliver(ctx, n); err != nil {
		s.log.Warn("delivering reminder failed",
			zap.String("reminder_id", r.ID),
			zap.String("task_id", r.TaskID),
			zap.Error(err))
	}

	if err := s.store.MarkDelivered(ctx, r.ID); err != nil {
		s.log.Warn("marking reminder delivered failed",
			zap.String("reminder_id", r.ID), zap.Error(err))
	}
}
