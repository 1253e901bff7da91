package model

import "time"

// FilterMode selects which subset of the canonical task collection
// is visible in a derived view.
type FilterMode string

const (
	FilterAll          FilterMode = "all"
	FilterAssignedToMe FilterMode = "assigned_to_me"
	FilterCreatedByMe  FilterMode = "created_by_me"
	FilterOverdue      FilterMode = "overdue"
	FilterDueToday     FilterMode = "due_today"
)

// MinDescriptionLen is the minimum length, in runes, of a task
// description after trimming surrounding whitespace.
const MinDescriptionLen = 4

// Task is a shared task-board item visible to its creator and,
// when assigned, to its assignee.
type Task struct {
	// ID is the unique identifier assigned by the store on creation.
	ID int64 `json:"id" db:"id"`

	// Description is the human-readable task text.
	Description string `json:"description" db:"description"`

	// OwnerID identifies the user who owns the task. Immutable after
	// creation and always equal to CreatorID in the current design.
	OwnerID string `json:"owner_id" db:"owner_id"`

	// CreatorID identifies the user who created the task. Only the
	// creator may delete it.
	CreatorID string `json:"creator_id" db:"creator_id"`

	// AssigneeID identifies the user the task is assigned to, if any.
	// A set value referenced an existing user at the time of the last
	// successful write that set it; it may go stale afterwards without
	// invalidating the task.
	AssigneeID *string `json:"assignee_id,omitempty" db:"assignee_id"`

	// DueDate is the optional due timestamp.
	DueDate *time.Time `json:"due_date,omitempty" db:"due_date"`

	// Completed marks the task as done.
	Completed bool `json:"completed" db:"completed"`

	// CompletedAt is set when Completed flips to true and cleared
	// when it flips back.
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	// CreatedAt is assigned by the store on creation.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AssignedTo reports whether the task is currently assigned to userID.
func (t Task) AssignedTo(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
