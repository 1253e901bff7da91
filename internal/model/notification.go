package model

import "time"

// Notification is an alert surfaced to a user when a task is
// assigned to them. Its lifecycle is bound to the source task
// (the store cascades deletes).
type Notification struct {
	// ID is the unique identifier assigned by the store on creation.
	ID int64 `json:"id" db:"id"`

	// RecipientID identifies the user this notification is addressed to.
	RecipientID string `json:"recipient_id" db:"recipient_id"`

	// TaskID links this notification to the originating task.
	TaskID int64 `json:"task_id" db:"task_id"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Read indicates whether the recipient has seen this notification.
	Read bool `json:"read" db:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
