package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nhle/taskdue/internal/gateway"
	"github.com/nhle/taskdue/internal/model"
)

// listLimit caps the task and completion queries. Personal trackers
// stay well under this.
const listLimit = 1000

// Documents is the slice of the gateway used by the ledger.
type Documents interface {
	CreateDocument(
		ctx context.Context,
		collection string,
		documentID string,
		data interface{},
		result interface{},
	) error
	ListDocuments(
		ctx context.Context,
		collection string,
		queries []gateway.Query,
		out interface{},
	) error
	DeleteDocument(ctx context.Context, collection, documentID string) error
}

// Ledger derives active/completed task state from two remote
// collections: the tasks themselves and an append-only log of
// completion records. A task is active exactly when no completion
// record exists for it; nothing is ever mutated in place.
type Ledger struct {
	docs        Documents
	tasks       string
	completions string
	now         func() time.Time
}

// New creates a ledger over the given collections.
func New(docs Documents, tasksCollection, completionsCollection string) *Ledger {
	return &Ledger{
		docs:        docs,
		tasks:       tasksCollection,
		completions: completionsCollection,
		now:         time.Now,
	}
}

// CompletionID derives the identifier of the completion record for a
// (task, owner) pair: the first 18 characters of the task ID joined to
// the first 17 characters of the owner ID with an underscore. Both
// inputs are already globally unique, so the combination is too, and
// the truncation keeps the result within the store's key-length limit.
//
// Because every caller derives the same ID from the same pair, a
// second completion attempt collides with the first at the backend and
// is rejected as a duplicate. That rejection is the concurrency
// control for racing completions; this format is a bit-exact contract
// with already-stored records.
func CompletionID(taskID, userID string) string {
	return firstChars(taskID, 18) + "_" + firstChars(userID, 17)
}

// firstChars returns at most n leading characters of s.
func firstChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// taskFields is the document body for a task create.
type taskFields struct {
	UserID   string         `json:"userId"`
	Title    string         `json:"title"`
	DueDate  string         `json:"dueDate"`
	Priority model.Priority `json:"priority"`
}

// completionFields is the document body for a completion create.
type completionFields struct {
	TaskID      string `json:"taskId"`
	UserID      string `json:"userId"`
	CompletedAt string `json:"completedAt"`
}

// Create validates and stores a new task for the owner. The remote
// store assigns the task its identifier.
func (l *Ledger) Create(
	ctx context.Context,
	userID string,
	title string,
	dueDate string,
	priority model.Priority,
) (*model.Task, error) {
	if title == "" {
		return nil, fmt.Errorf("task title must not be empty")
	}
	if _, err := time.Parse(model.DueDateLayout, dueDate); err != nil {
		return nil, fmt.Errorf("due date %q is not a YYYY-MM-DD date: %w", dueDate, err)
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("unknown priority %q", priority)
	}

	fields := taskFields{
		UserID:   userID,
		Title:    title,
		DueDate:  dueDate,
		Priority: priority,
	}

	var task model.Task
	err := l.docs.CreateDocument(ctx, l.tasks, gateway.UniqueID, fields, &task)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &task, nil
}

// ListActive returns the owner's tasks that have no completion record,
// ordered by priority rank (high first) and then by due date. The
// active set is recomputed from two fresh queries on every call; it is
// never cached, because a concurrent reminder action may have
// completed a task since the last observation.
func (l *Ledger) ListActive(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	err := l.docs.ListDocuments(ctx, l.tasks, []gateway.Query{
		gateway.QueryEqual("userId", userID),
		gateway.QueryOrderAsc("dueDate"),
		gateway.QueryLimit(listLimit),
	}, &tasks)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	var completions []model.CompletionRecord
	err = l.docs.ListDocuments(ctx, l.completions, []gateway.Query{
		gateway.QueryEqual("userId", userID),
		gateway.QueryLimit(listLimit),
	}, &completions)
	if err != nil {
		return nil, fmt.Errorf("listing completions: %w", err)
	}

	completed := make(map[string]bool, len(completions))
	for _, c := range completions {
		completed[c.TaskID] = true
	}

	active := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !completed[t.ID] {
			active = append(active, t)
		}
	}

	sortActive(active)
	return active, nil
}

// sortActive orders tasks by priority rank ascending, then due-date
// string ascending. Due dates are ISO calendar strings, so lexical
// order equals chronological order. Urgency first, then deadline.
func sortActive(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := tasks[i].Priority.Rank(), tasks[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return tasks[i].DueDate < tasks[j].DueDate
	})
}

// Complete records the completion of a task for its owner, dated
// today. The write is a strict create under the deterministic
// CompletionID, never an upsert. A duplicate rejection from the
// backend means another caller (a foreground tap or a background
// reminder action) already completed the task; that outcome converges
// to the same single record, so it is reported as success.
func (l *Ledger) Complete(ctx context.Context, taskID, userID string) error {
	fields := completionFields{
		TaskID:      taskID,
		UserID:      userID,
		CompletedAt: l.now().Format(model.DueDateLayout),
	}

	id := CompletionID(taskID, userID)
	err := l.docs.CreateDocument(ctx, l.completions, id, fields, nil)
	if err != nil {
		if gateway.IsConflict(err) {
			return nil
		}
		return fmt.Errorf("recording completion for task %s: %w", taskID, err)
	}
	return nil
}

// Delete removes a task. Any completion record for it is left in
// place: the record is harmless once the task no longer exists, and
// completions are never deleted.
func (l *Ledger) Delete(ctx context.Context, taskID string) error {
	if err := l.docs.DeleteDocument(ctx, l.tasks, taskID); err != nil {
		return fmt.Errorf("deleting task %s: %w", taskID, err)
	}
	return nil
}
