package store

import (
	"context"
	"time"

	"taskboard/internal/model"
)

// InsertNotification persists a new notification, assigning its ID and
// CreatedAt, and publishes an inserted event to matching subscribers.
func (s *SQLiteStore) InsertNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	n.CreatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (recipient_id, task_id, message, read, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		n.RecipientID, n.TaskID, n.Message, n.Read, n.CreatedAt,
	)
	if err != nil {
		return model.Notification{}, classify("inserting notification", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Notification{}, classify("reading inserted notification id", err)
	}
	n.ID = id

	s.hub.publish(scopeNotifications, model.Event{
		Type:         model.EventInserted,
		ID:           n.ID,
		Notification: &n,
	})
	return n, nil
}

// NotificationsForRecipient returns up to limit notifications addressed
// to the recipient, most recent first.
func (s *SQLiteStore) NotificationsForRecipient(ctx context.Context, recipientID string, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	var ns []model.Notification
	err := s.db.SelectContext(ctx, &ns, `
		SELECT id, recipient_id, task_id, message, read, created_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		recipientID, limit)
	if err != nil {
		return nil, classify("listing notifications", err)
	}
	return ns, nil
}

// MarkNotificationRead flips the read flag of a single notification.
// The recipient id guards against flipping another user's row.
// Read-state changes are not published to the change feed; they are
// reflected locally by the caller on success.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id int64, recipientID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ? AND recipient_id = ?",
		id, recipientID)
	if err != nil {
		return classify("marking notification read", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return notFound("marking notification read", id)
	}
	return nil
}

// MarkAllNotificationsRead flips the read flag of every unread
// notification addressed to the recipient. Marking an already-clean
// inbox is a no-op, not an error.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context, recipientID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE recipient_id = ? AND read = 0",
		recipientID)
	if err != nil {
		return classify("marking all notifications read", err)
	}
	return nil
}

// SubscribeNotifications returns a change feed of notification inserts
// addressed to the recipient. Only inserts are published on this scope,
// so the local read-state never loops back through the feed.
func (s *SQLiteStore) SubscribeNotifications(recipientID string) *Subscription {
	return s.hub.subscribe(scopeNotifications, func(ev model.Event) bool {
		return ev.Notification != nil && ev.Notification.RecipientID == recipientID
	})
}
