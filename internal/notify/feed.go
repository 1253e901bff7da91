// Package notify maintains a single recipient's local notification
// inbox, merged with the live insert feed from the store.
package notify

import (
	"context"
	gosync "sync"

	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

// DefaultCap is the number of most-recent notifications kept locally.
const DefaultCap = 20

// Feed is the per-recipient notification inbox: an ordered local view
// (most recent first, capped) plus a cached unread count for O(1)
// display. The count is derived from the read flags and flips only
// together with them.
type Feed struct {
	mu          gosync.Mutex
	store       store.Store
	recipientID string
	cap         int
	items       []model.Notification
	unread      int
	logger      *zap.Logger
}

// New creates a Feed for the given recipient. A non-positive cap falls
// back to DefaultCap.
func New(st store.Store, recipientID string, capacity int, logger *zap.Logger) *Feed {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		store:       st,
		recipientID: recipientID,
		cap:         capacity,
		logger:      logger,
	}
}

// Load replaces the local view with a fresh snapshot from the store.
func (f *Feed) Load(ctx context.Context) error {
	ns, err := f.store.NotificationsForRecipient(ctx, f.recipientID, f.cap)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = ns
	f.unread = countUnread(ns)
	return nil
}

// Run consumes the subscription until ctx is cancelled or the stream
// closes. Only inserts are merged; read-state changes arrive through
// local actions, never through the feed.
func (f *Feed) Run(ctx context.Context, sub *store.Subscription) {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				f.logger.Warn("notification feed closed by store; resync required")
				return
			}
			if ev.Type != model.EventInserted || ev.Notification == nil {
				continue
			}
			f.applyInsert(*ev.Notification)
		}
	}
}

// MarkRead flips the read flag of one notification. The store write
// happens first; the local flag and the unread count change only on
// success.
func (f *Feed) MarkRead(ctx context.Context, id int64) error {
	if err := f.store.MarkNotificationRead(ctx, id, f.recipientID); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.items {
		if f.items[i].ID != id {
			continue
		}
		if !f.items[i].Read {
			f.items[i].Read = true
			f.unread--
		}
		break
	}
	return nil
}

// MarkAllRead flips every unread flag. On store failure nothing
// changes locally: the user-visible effect is all-or-nothing.
func (f *Feed) MarkAllRead(ctx context.Context) error {
	if err := f.store.MarkAllNotificationsRead(ctx, f.recipientID); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.items {
		f.items[i].Read = true
	}
	f.unread = 0
	return nil
}

// Unread returns the cached count of unread notifications.
func (f *Feed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

// Notifications returns a copy of the local view in display order.
func (f *Feed) Notifications() []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.Notification, len(f.items))
	copy(out, f.items)
	return out
}

// applyInsert prepends a new notification and trims to the cap.
// Re-delivery of an id already present is ignored.
func (f *Feed) applyInsert(n model.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.items {
		if f.items[i].ID == n.ID {
			return
		}
	}

	f.items = append([]model.Notification{n}, f.items...)
	if len(f.items) > f.cap {
		f.items = f.items[:f.cap]
	}
	f.unread = countUnread(f.items)
}

func countUnread(ns []model.Notification) int {
	n := 0
	for i := range ns {
		if !ns[i].Read {
			n++
		}
	}
	return n
}
