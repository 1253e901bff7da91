package store

import (
	"context"
	"errors"
	"fmt"

	"taskboard/internal/model"
)

// Store is the remote task-board store: row-level CRUD over the task
// and notification collections plus a change feed scoped by row-level
// predicates. It is consumed as an opaque service; callers never see
// its persistence internals.
type Store interface {
	// === Tasks ===

	// InsertTask persists a new task. The store assigns ID and
	// CreatedAt and returns the stored row.
	InsertTask(ctx context.Context, t model.Task) (model.Task, error)

	// UpdateTask replaces the mutable columns of an existing task and
	// returns the stored row. Returns a not-found error if the id is
	// unknown.
	UpdateTask(ctx context.Context, t model.Task) (model.Task, error)

	// DeleteTask removes a task. Notifications referencing it are
	// deleted transitively by the store.
	DeleteTask(ctx context.Context, id int64) error

	// GetTaskByID fetches a single task.
	GetTaskByID(ctx context.Context, id int64) (*model.Task, error)

	// TasksForActor returns the tasks the actor created or is assigned
	// to, ordered by descending creation time.
	TasksForActor(ctx context.Context, actorID string) ([]model.Task, error)

	// === Notifications ===

	// InsertNotification persists a new notification. The store assigns
	// ID and CreatedAt and returns the stored row.
	InsertNotification(ctx context.Context, n model.Notification) (model.Notification, error)

	// NotificationsForRecipient returns up to limit notifications for
	// the recipient, ordered by descending creation time.
	NotificationsForRecipient(ctx context.Context, recipientID string, limit int) ([]model.Notification, error)

	// MarkNotificationRead flips the read flag of a single notification
	// owned by the recipient.
	MarkNotificationRead(ctx context.Context, id int64, recipientID string) error

	// MarkAllNotificationsRead flips the read flag of every unread
	// notification owned by the recipient.
	MarkAllNotificationsRead(ctx context.Context, recipientID string) error

	// === Users ===

	// UpsertUser mirrors a directory entry into the store so that task
	// and notification rows have a valid reference target.
	UpsertUser(ctx context.Context, u model.User) error

	// === Change feed ===

	// SubscribeTasks returns a feed of task changes visible to the
	// actor. Events arrive strictly in the order the store applied
	// them. Close the subscription when done.
	SubscribeTasks(actorID string) *Subscription

	// SubscribeNotifications returns a feed of notification inserts
	// addressed to the recipient.
	SubscribeNotifications(recipientID string) *Subscription
}

// ErrorKind classifies store failures so that callers never have to
// match on error message text.
type ErrorKind int

const (
	// KindInternal covers transient and unclassified failures.
	KindInternal ErrorKind = iota

	// KindForeignKey is a write rejected because it references a
	// nonexistent related entity.
	KindForeignKey

	// KindNotFound is an operation against a row that does not exist.
	KindNotFound
)

// Error is a classified store failure.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsForeignKeyViolation reports whether err is a referential-integrity
// violation.
func IsForeignKeyViolation(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindForeignKey
}

// IsNotFound reports whether err is a missing-row failure.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindNotFound
}
