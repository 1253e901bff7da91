package model

// EventType discriminates change-feed events.
type EventType string

const (
	EventInserted EventType = "inserted"
	EventUpdated  EventType = "updated"
	EventDeleted  EventType = "deleted"
)

// Event is a single row-level change delivered over a change feed.
// Exactly one of Task or Notification is set for inserts and updates,
// depending on the collection the subscription is scoped to; deletes
// carry only the row ID.
type Event struct {
	// Type is the kind of change.
	Type EventType `json:"type"`

	// ID identifies the affected row. Always set.
	ID int64 `json:"id"`

	// Task is the row after the change, for task-scope inserts and updates.
	Task *Task `json:"task,omitempty"`

	// Notification is the row after the change, for notification-scope inserts.
	Notification *Notification `json:"notification,omitempty"`
}
