package model

// CompletionRecord marks a task as done for its owner. Records are
// append-only: they are created once and never updated or removed, and
// at most one record exists per (task, owner) pair. The uniqueness is
// enforced by the record's deterministic identifier, which both the
// foreground UI and background reminder actions derive from the same
// inputs.
type CompletionRecord struct {
	// ID is the deterministic identifier derived from the task and
	// owner identifiers. See ledger.CompletionID.
	ID string `json:"$id"`

	// TaskID is the identifier of the completed task.
	TaskID string `json:"taskId"`

	// UserID identifies the owner who completed the task.
	UserID string `json:"userId"`

	// CompletedAt is the calendar date the completion was recorded,
	// as YYYY-MM-DD. Not necessarily the task's due date.
	CompletedAt string `json:"completedAt"`
}
