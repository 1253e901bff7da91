package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/model"
	"taskboard/tests/testutil"
)

// collect drains n events from the subscription or fails the test.
func collect(t *testing.T, events <-chan model.Event, n int) []model.Event {
	t.Helper()

	out := make([]model.Event, 0, n)
	for len(out) < n {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("feed closed after %d of %d events", len(out), n)
			}
			out = append(out, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func TestTaskFeedDeliversInApplyOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedUser(t, s, "user-a", "a@example.com")

	sub := s.SubscribeTasks("user-a")
	defer sub.Close()

	created := testutil.SeedTask(t, s, "user-a", "step one")
	created.Description = "step two"
	_, err := s.UpdateTask(ctx, created)
	require.NoError(t, err)
	require.NoError(t, s.DeleteTask(ctx, created.ID))

	events := collect(t, sub.Events(), 3)
	assert.Equal(t, model.EventInserted, events[0].Type)
	assert.Equal(t, model.EventUpdated, events[1].Type)
	assert.Equal(t, model.EventDeleted, events[2].Type)
	for _, ev := range events {
		assert.Equal(t, created.ID, ev.ID)
	}
}

func TestTaskFeedScopedToActor(t *testing.T) {
	s := testutil.NewTestStore(t)
	testutil.SeedUser(t, s, "user-a", "a@example.com")
	testutil.SeedUser(t, s, "user-b", "b@example.com")

	sub := s.SubscribeTasks("user-a")
	defer sub.Close()

	testutil.SeedTask(t, s, "user-b", "not for a")
	mine := testutil.SeedTask(t, s, "user-a", "for a")

	events := collect(t, sub.Events(), 1)
	assert.Equal(t, mine.ID, events[0].ID)

	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected extra event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotificationFeedInsertOnly(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedUser(t, s, "user-a", "a@example.com")
	testutil.SeedUser(t, s, "user-b", "b@example.com")
	task := testutil.SeedTask(t, s, "user-a", "shared")

	sub := s.SubscribeNotifications("user-b")
	defer sub.Close()

	n, err := s.InsertNotification(ctx, model.Notification{
		RecipientID: "user-b",
		TaskID:      task.ID,
		Message:     "assigned",
	})
	require.NoError(t, err)

	events := collect(t, sub.Events(), 1)
	require.NotNil(t, events[0].Notification)
	assert.Equal(t, n.ID, events[0].ID)

	// Read-state flips never come through the feed.
	require.NoError(t, s.MarkNotificationRead(ctx, n.ID, "user-b"))
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event for read-state change: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	s := testutil.NewTestStore(t)
	testutil.SeedUser(t, s, "user-a", "a@example.com")

	sub := s.SubscribeTasks("user-a")
	sub.Close()
	sub.Close() // safe to call twice

	_, ok := <-sub.Events()
	assert.False(t, ok)

	// Mutations after close do not panic or deliver.
	testutil.SeedTask(t, s, "user-a", "after close")
}

func TestSlowSubscriberIsClosedNotReordered(t *testing.T) {
	s := testutil.NewTestStore(t)
	testutil.SeedUser(t, s, "user-a", "a@example.com")

	sub := s.SubscribeTasks("user-a")

	// Overrun the buffer without draining.
	for i := 0; i < 80; i++ {
		testutil.SeedTask(t, s, "user-a", "burst task")
	}

	// Everything that was delivered is a strictly increasing prefix;
	// the stream then closes instead of skipping events.
	var lastID int64
	closed := false
	for !closed {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				closed = true
				break
			}
			assert.Greater(t, ev.ID, lastID)
			lastID = ev.ID
		case <-time.After(2 * time.Second):
			t.Fatal("feed neither delivered nor closed")
		}
	}
}

func TestStoreCloseClosesSubscriptions(t *testing.T) {
	s := testutil.NewTestStore(t)

	sub := s.SubscribeTasks("user-a")
	require.NoError(t, s.Close())

	_, ok := <-sub.Events()
	assert.False(t, ok)
}
