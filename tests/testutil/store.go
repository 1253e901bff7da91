package testutil

import (
	"context"
	"testing"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedUser mirrors a user into the store so task and notification rows
// have a valid reference target.
func SeedUser(t *testing.T, s *store.SQLiteStore, id, email string) model.User {
	t.Helper()

	u := model.User{ID: id, Email: email}
	if err := s.UpsertUser(context.Background(), u); err != nil {
		t.Fatalf("seeding user %s: %v", id, err)
	}
	return u
}

// SeedTask inserts a task created by creatorID and returns the stored row.
func SeedTask(t *testing.T, s *store.SQLiteStore, creatorID, description string) model.Task {
	t.Helper()

	task, err := s.InsertTask(context.Background(), model.Task{
		Description: description,
		OwnerID:     creatorID,
		CreatorID:   creatorID,
	})
	if err != nil {
		t.Fatalf("seeding task: %v", err)
	}
	return task
}
