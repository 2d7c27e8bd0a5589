package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/taskdue/internal/model"
	"github.com/nhle/taskdue/tests/testutil"
)

func TestCreateAndPendingOrdering(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	later := model.Reminder{
		Kind:   model.ReminderKindDue,
		TaskID: "task-later",
		UserID: "user-1",
		FireAt: base.Add(2 * time.Hour),
	}
	sooner := model.Reminder{
		Kind:   model.ReminderKindSnooze,
		TaskID: "task-sooner",
		UserID: "user-1",
		FireAt: base,
	}

	if err := s.CreateReminder(ctx, later); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateReminder(ctx, sooner); err != nil {
		t.Fatalf("create: %v", err)
	}

	pending, err := s.PendingReminders(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].TaskID != "task-sooner" || pending[1].TaskID != "task-later" {
		t.Errorf("pending order = [%s %s], want soonest first",
			pending[0].TaskID, pending[1].TaskID)
	}
	if pending[0].ID == "" {
		t.Error("store did not assign an ID")
	}
}

func TestMarkDelivered(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	r := model.Reminder{
		ID:     "rem-1",
		Kind:   model.ReminderKindDue,
		TaskID: "task-1",
		UserID: "user-1",
		FireAt: time.Now(),
	}
	if err := s.CreateReminder(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.MarkDelivered(ctx, "rem-1"); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}

	pending, err := s.PendingReminders(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0 after delivery", len(pending))
	}
}

func TestPurgeDelivered(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	delivered := model.Reminder{
		ID:     "rem-delivered",
		Kind:   model.ReminderKindDue,
		TaskID: "task-1",
		UserID: "user-1",
		FireAt: time.Now().AddDate(0, 0, -60),
	}
	undelivered := model.Reminder{
		ID:     "rem-undelivered",
		Kind:   model.ReminderKindDue,
		TaskID: "task-2",
		UserID: "user-1",
		FireAt: time.Now().AddDate(0, 0, -60),
	}
	for _, r := range []model.Reminder{delivered, undelivered} {
		if err := s.CreateReminder(ctx, r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := s.MarkDelivered(ctx, delivered.ID); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}

	if err := s.PurgeDelivered(ctx, 30); err != nil {
		t.Fatalf("purge: %v", err)
	}

	// Purge only touches delivered rows: the old undelivered
	// reminder must still be waiting.
	pending, err := s.PendingReminders(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != undelivered.ID {
		t.Errorf("pending after purge = %+v, want only %s", pending, undelivered.ID)
	}
}
