package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/model"
	"taskboard/internal/store"
	"taskboard/tests/testutil"
)

func sp(s string) *string { return &s }

func TestInsertTaskAssignsIDAndTimestamp(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedUser(t, s, "user-a", "a@example.com")

	created, err := s.InsertTask(ctx, model.Task{
		Description: "Buy milk",
		OwnerID:     "user-a",
		CreatorID:   "user-a",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := s.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", fetched.Description)
}

func TestInsertTaskUnknownAssigneeIsForeignKeyViolation(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedUser(t, s, "user-a", "a@example.com")

	_, err := s.InsertTask(ctx, model.Task{
		Description: "Buy milk",
		OwnerID:     "user-a",
		CreatorID:   "user-a",
		AssigneeID:  sp("ghost-user"),
	})
	require.Error(t, err)
	assert.True(t, store.IsForeignKeyViolation(err))
	assert.False(t, store.IsNotFound(err))
}

func TestUpdateTaskUnknownAssigneeIsForeignKeyViolation(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedUser(t, s, "user-a", "a@example.com")
	task := testutil.SeedTask(t, s, "user-a", "Review report")

	task.AssigneeID = sp("ghost-user")
	_, err := s.UpdateTask(ctx, task)
	require.Error(t, err)
	assert.True(t, store.IsForeignKeyViolation(err))

	// The stored row is untouched.
	fetched, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.AssigneeID)
}

func TestUpdateAndDeleteMissingTask(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.UpdateTask(ctx, model.Task{ID: 404, Description: "nope"})
	assert.True(t, store.IsNotFound(err))

	err = s.DeleteTask(ctx, 404)
	assert.True(t, store.IsNotFound(err))

	_, err = s.GetTaskByID(ctx, 404)
	assert.True(t, store.IsNotFound(err))
}

func TestTasksForActorUnionAndOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedUser(t, s, "user-a", "a@example.com")
	testutil.SeedUser(t, s, "user-b", "b@example.com")

	mine := testutil.SeedTask(t, s, "user-a", "created by me")
	theirs := testutil.SeedTask(t, s, "user-b", "created by b, assigned to me")
	testutil.SeedTask(t, s, "user-b", "not visible to a")

	theirs.AssigneeID = sp("user-a")
	_, err := s.UpdateTask(ctx, theirs)
	require.NoError(t, err)

	tasks, err := s.TasksForActor(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// Most recent first; same-timestamp rows fall back to id order.
	assert.Equal(t, theirs.ID, tasks[0].ID)
	assert.Equal(t, mine.ID, tasks[1].ID)
}

func TestDeleteTaskCascadesNotifications(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedUser(t, s, "user-a", "a@example.com")
	testutil.SeedUser(t, s, "user-b", "b@example.com")
	task := testutil.SeedTask(t, s, "user-a", "with notification")

	_, err := s.InsertNotification(ctx, model.Notification{
		RecipientID: "user-b",
		TaskID:      task.ID,
		Message:     "assigned",
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, task.ID))

	ns, err := s.NotificationsForRecipient(ctx, "user-b", 20)
	require.NoError(t, err)
	assert.Empty(t, ns)
}

func TestMarkNotificationReadScopedToRecipient(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedUser(t, s, "user-a", "a@example.com")
	testutil.SeedUser(t, s, "user-b", "b@example.com")
	task := testutil.SeedTask(t, s, "user-a", "shared task")

	n, err := s.InsertNotification(ctx, model.Notification{
		RecipientID: "user-b",
		TaskID:      task.ID,
		Message:     "assigned",
	})
	require.NoError(t, err)

	// Another user cannot flip someone else's flag.
	err = s.MarkNotificationRead(ctx, n.ID, "user-a")
	assert.True(t, store.IsNotFound(err))

	require.NoError(t, s.MarkNotificationRead(ctx, n.ID, "user-b"))

	ns, err := s.NotificationsForRecipient(ctx, "user-b", 20)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.True(t, ns[0].Read)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedUser(t, s, "user-a", "a@example.com")
	testutil.SeedUser(t, s, "user-b", "b@example.com")
	task := testutil.SeedTask(t, s, "user-a", "busy task")

	for i := 0; i < 3; i++ {
		_, err := s.InsertNotification(ctx, model.Notification{
			RecipientID: "user-b",
			TaskID:      task.ID,
			Message:     "assigned",
		})
		require.NoError(t, err)
	}

	require.NoError(t, s.MarkAllNotificationsRead(ctx, "user-b"))
	// Clean inbox is a no-op, not an error.
	require.NoError(t, s.MarkAllNotificationsRead(ctx, "user-b"))

	ns, err := s.NotificationsForRecipient(ctx, "user-b", 20)
	require.NoError(t, err)
	require.Len(t, ns, 3)
	for _, n := range ns {
		assert.True(t, n.Read)
	}
}

func TestNotificationsForRecipientHonorsLimit(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedUser(t, s, "user-a", "a@example.com")
	testutil.SeedUser(t, s, "user-b", "b@example.com")
	task := testutil.SeedTask(t, s, "user-a", "noisy task")

	var last model.Notification
	for i := 0; i < 25; i++ {
		n, err := s.InsertNotification(ctx, model.Notification{
			RecipientID: "user-b",
			TaskID:      task.ID,
			Message:     "assigned",
		})
		require.NoError(t, err)
		last = n
	}

	ns, err := s.NotificationsForRecipient(ctx, "user-b", 20)
	require.NoError(t, err)
	require.Len(t, ns, 20)
	assert.Equal(t, last.ID, ns[0].ID)
}

func TestCompletedRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedUser(t, s, "user-a", "a@example.com")
	task := testutil.SeedTask(t, s, "user-a", "finish me")

	now := time.Now().UTC()
	task.Completed = true
	task.CompletedAt = &now

	stored, err := s.UpdateTask(ctx, task)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	require.NotNil(t, stored.CompletedAt)
}
