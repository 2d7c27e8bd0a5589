package model

// DueDateLayout is the calendar-date format used for due dates and
// completion dates throughout the system. Dates never carry a time
// component; lexical order of these strings equals chronological order.
const DueDateLayout = "2006-01-02"

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// priorityRanks maps priorities to their sort rank. Lower rank sorts
// first; unknown values sink to the bottom.
var priorityRanks = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Rank returns the sort rank for the priority: high=0, medium=1, low=2.
// Unrecognized values rank 99.
func (p Priority) Rank() int {
	if rank, ok := priorityRanks[p]; ok {
		return rank
	}
	return 99
}

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	_, ok := priorityRanks[p]
	return ok
}

// Task is a single tracked to-do item. Tasks never carry a "done"
// flag; completion state lives in a separate append-only collection of
// CompletionRecords.
type Task struct {
	// ID is the opaque identifier assigned by the remote store at
	// creation time.
	ID string `json:"$id"`

	// UserID identifies the owner of the task.
	UserID string `json:"userId"`

	// Title is the human-readable summary. Never empty.
	Title string `json:"title"`

	// DueDate is the calendar date the task is due, as YYYY-MM-DD.
	DueDate string `json:"dueDate"`

	// Priority is the urgency level (low, medium, high).
	Priority Priority `json:"priority"`
}
