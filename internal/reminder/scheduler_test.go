package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/taskdue/internal/model"
	"github.com/nhle/taskdue/internal/notify"
	"github.com/nhle/taskdue/tests/testutil"
)

// fakeNotifier records delivered notifications.
type fakeNotifier struct {
	mu        sync.Mutex
	setupErr  error
	delivered []notify.Notification
}

func (f *fakeNotifier) Setup(ctx context.Context) error {
	return f.setupErr
}

func (f *fakeNotifier) Deliver(ctx context.Context, n notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, n)
	return nil
}

func (f *fakeNotifier) all() []notify.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Notification(nil), f.delivered...)
}

func newTestScheduler(t *testing.T, now time.Time) (*Scheduler, *fakeNotifier) {
	t.Helper()

	s := testutil.NewTestStore(t)
	notifier := &fakeNotifier{}
	sched := NewScheduler(s, notifier, 9, zap.NewNop())
	sched.now = func() time.Time { return now }
	return sched, notifier
}

func localTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.Local)
	if err != nil {
		t.Fatalf("parsing time %q: %v", value, err)
	}
	return ts
}

func TestFireTimeBeforeDueHour(t *testing.T) {
	sched, _ := newTestScheduler(t, localTime(t, "2024-01-10T08:00:00"))

	fireAt, err := sched.FireTime("2024-01-10")
	if err != nil {
		t.Fatalf("fire time: %v", err)
	}

	want := localTime(t, "2024-01-10T09:00:00")
	if !fireAt.Equal(want) {
		t.Errorf("fireAt = %v, want %v", fireAt, want)
	}
}

func TestFireTimeClampedWhenPastDue(t *testing.T) {
	now := localTime(t, "2024-01-10T10:00:00")
	sched, _ := newTestScheduler(t, now)

	fireAt, err := sched.FireTime("2024-01-10")
	if err != nil {
		t.Fatalf("fire time: %v", err)
	}

	want := localTime(t, "2024-01-10T10:01:00")
	if !fireAt.Equal(want) {
		t.Errorf("fireAt = %v, want clamp to %v", fireAt, want)
	}
}

func TestFireTimeClampedWhenTooClose(t *testing.T) {
	// 30 seconds before the due hour is inside the minimum lead
	// window, so the reminder still moves out to now + 60s.
	now := localTime(t, "2024-01-10T08:59:30")
	sched, _ := newTestScheduler(t, now)

	fireAt, err := sched.FireTime("2024-01-10")
	if err != nil {
		t.Fatalf("fire time: %v", err)
	}

	want := now.Add(time.Minute)
	if !fireAt.Equal(want) {
		t.Errorf("fireAt = %v, want %v", fireAt, want)
	}
}

func TestScheduleDueReminderBadDate(t *testing.T) {
	sched, _ := newTestScheduler(t, localTime(t, "2024-01-10T08:00:00"))

	handle, err := sched.ScheduleDueReminder(context.Background(), model.ReminderPayload{
		TaskID:  "task-1",
		UserID:  "user-1",
		Title:   "broken",
		DueDate: "not-a-date",
	})
	if err != nil {
		t.Fatalf("bad due date must not be fatal, got: %v", err)
	}
	if handle != nil {
		t.Errorf("handle = %+v, want none for unparseable date", handle)
	}
}

func TestScheduleDueReminderPersists(t *testing.T) {
	now := localTime(t, "2024-01-10T08:00:00")
	sched, _ := newTestScheduler(t, now)
	ctx := context.Background()

	handle, err := sched.ScheduleDueReminder(ctx, model.ReminderPayload{
		TaskID:  "task-1",
		UserID:  "user-1",
		Title:   "water plants",
		DueDate: "2024-01-10",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if handle == nil {
		t.Fatal("expected a reminder handle")
	}

	pending, err := sched.store.PendingReminders(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	r := pending[0]
	if r.Kind != model.ReminderKindDue || r.TaskID != "task-1" {
		t.Errorf("stored reminder = %+v", r)
	}
	if !r.FireAt.Equal(localTime(t, "2024-01-10T09:00:00")) {
		t.Errorf("FireAt = %v, want 09:00", r.FireAt)
	}
}

func TestScheduleSnoozeIgnoresDueDate(t *testing.T) {
	now := localTime(t, "2024-01-10T22:00:00")
	sched, _ := newTestScheduler(t, now)

	handle, err := sched.ScheduleSnooze(context.Background(), model.ReminderPayload{
		TaskID:  "task-1",
		UserID:  "user-1",
		Title:   "water plants",
		DueDate: "2024-01-10",
	}, 10)
	if err != nil {
		t.Fatalf("snooze: %v", err)
	}

	want := now.Add(10 * time.Minute)
	if !handle.FireAt.Equal(want) {
		t.Errorf("FireAt = %v, want now+10m = %v", handle.FireAt, want)
	}
	if handle.Kind != model.ReminderKindSnooze {
		t.Errorf("Kind = %q, want snooze", handle.Kind)
	}
}

func TestPermissionDeniedDisablesScheduling(t *testing.T) {
	sched, notifier := newTestScheduler(t, localTime(t, "2024-01-10T08:00:00"))
	notifier.setupErr = notify.ErrPermissionDenied
	ctx := context.Background()

	if err := sched.Setup(ctx); err == nil {
		t.Fatal("Setup should surface the permission refusal")
	}
	if !sched.Disabled() {
		t.Fatal("scheduler should be disabled after permission refusal")
	}

	handle, err := sched.ScheduleDueReminder(ctx, model.ReminderPayload{
		TaskID: "task-1", UserID: "user-1", Title: "x", DueDate: "2024-01-10",
	})
	if err != nil || handle != nil {
		t.Errorf("scheduling after refusal = (%+v, %v), want silent no-op", handle, err)
	}

	pending, err := sched.store.PendingReminders(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0 after disabled schedule", len(pending))
	}
}

func TestDeliverDueFiresAndMarks(t *testing.T) {
	now := localTime(t, "2024-01-10T10:00:00")
	sched, notifier := newTestScheduler(t, now)
	ctx := context.Background()

	// Snooze of zero minutes fires immediately.
	if _, err := sched.ScheduleSnooze(ctx, model.ReminderPayload{
		TaskID:  "task-1",
		UserID:  "user-1",
		Title:   "water plants",
		DueDate: "2024-01-10",
	}, 0); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	sched.deliverDue()

	delivered := notifier.all()
	if len(delivered) != 1 {
		t.Fatalf("delivered = %d, want 1", len(delivered))
	}
	n := delivered[0]
	if n.Category != notify.CategoryTaskReminder {
		t.Errorf("category = %q", n.Category)
	}
	if len(n.Actions) != 2 ||
		n.Actions[0].ID != notify.ActionComplete ||
		n.Actions[1].ID != notify.ActionSnooze {
		t.Errorf("actions = %+v", n.Actions)
	}

	payload, err := model.DecodeReminderPayload(n.Data)
	if err != nil {
		t.Fatalf("payload did not round-trip: %v", err)
	}
	if payload.TaskID != "task-1" || payload.UserID != "user-1" ||
		payload.Title != "water plants" || payload.DueDate != "2024-01-10" {
		t.Errorf("payload = %+v", payload)
	}

	pending, err := sched.store.PendingReminders(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after delivery = %d, want 0", len(pending))
	}
}

func TestDeliverDueLeavesFutureReminders(t *testing.T) {
	now := localTime(t, "2024-01-09T12:00:00")
	sched, notifier := newTestScheduler(t, now)
	ctx := context.Background()

	if _, err := sched.ScheduleDueReminder(ctx, model.ReminderPayload{
		TaskID: "task-1", UserID: "user-1", Title: "x", DueDate: "2024-01-10",
	}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	wait := sched.deliverDue()

	if len(notifier.all()) != 0 {
		t.Error("future reminder delivered early")
	}

	// The loop must sleep, but never past the poll interval: the queue
	// is shared across processes and this one has to notice rows it did
	// not write itself.
	if wait <= 0 || wait > pollInterval {
		t.Errorf("wait = %v, want within (0, %v]", wait, pollInterval)
	}

	pending, err := sched.store.PendingReminders(context.Background())
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending = %d, want the future reminder kept", len(pending))
	}
}

func TestDeliverDuePicksUpOtherWritersSnooze(t *testing.T) {
	now := localTime(t, "2024-01-10T10:00:00")
	sched, notifier := newTestScheduler(t, now)
	ctx := context.Background()

	// With nothing queued the wait is still capped, so a reminder
	// written later by another process fires at most one poll late.
	if wait := sched.deliverDue(); wait != pollInterval {
		t.Fatalf("idle wait = %v, want %v", wait, pollInterval)
	}

	// The respond command runs in its own process and persists the
	// snooze through its own scheduler; only the shared queue connects
	// the two, never the rearm channel.
	other := NewScheduler(sched.store, notifier, 9, zap.NewNop())
	other.now = sched.now
	if _, err := other.ScheduleSnooze(ctx, model.ReminderPayload{
		TaskID: "task-1", UserID: "user-1", Title: "x", DueDate: "2024-01-10",
	}, 0); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	sched.deliverDue()
	if got := len(notifier.all()); got != 1 {
		t.Fatalf("delivered = %d, want the other writer's snooze", got)
	}
}

func TestSchedulerRestarts(t *testing.T) {
	now := localTime(t, "2024-01-10T10:00:00")
	sched, notifier := newTestScheduler(t, now)
	ctx := context.Background()

	sched.Start()
	sched.Stop()
	sched.Start()
	defer sched.Stop()

	// Fires immediately; the restarted loop must deliver it.
	if _, err := sched.ScheduleSnooze(ctx, model.ReminderPayload{
		TaskID: "task-1", UserID: "user-1", Title: "x", DueDate: "2024-01-10",
	}, 0); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(notifier.all()) >= 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("restarted scheduler never delivered")
}
