package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskboard/internal/model"
)

// InsertTask persists a new task, assigning its ID and CreatedAt.
// On success the stored row is returned and an inserted event is
// published to matching task subscribers.
func (s *SQLiteStore) InsertTask(ctx context.Context, t model.Task) (model.Task, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	t.CreatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			description, owner_id, creator_id, assignee_id,
			due_date, completed, completed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Description, t.OwnerID, t.CreatorID, t.AssigneeID,
		t.DueDate, t.Completed, t.CompletedAt, t.CreatedAt,
	)
	if err != nil {
		return model.Task{}, classify("inserting task", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Task{}, classify("reading inserted task id", err)
	}
	t.ID = id

	s.hub.publish(scopeTasks, model.Event{
		Type: model.EventInserted,
		ID:   t.ID,
		Task: &t,
	})
	return t, nil
}

// UpdateTask replaces the mutable columns of an existing task and
// publishes an updated event. OwnerID, CreatorID, and CreatedAt are
// never changed.
func (s *SQLiteStore) UpdateTask(ctx context.Context, t model.Task) (model.Task, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			description = ?, assignee_id = ?, due_date = ?,
			completed = ?, completed_at = ?
		WHERE id = ?`,
		t.Description, t.AssigneeID, t.DueDate,
		t.Completed, t.CompletedAt,
		t.ID,
	)
	if err != nil {
		return model.Task{}, classify("updating task", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return model.Task{}, notFound("updating task", t.ID)
	}

	stored, err := s.getTask(ctx, t.ID)
	if err != nil {
		return model.Task{}, err
	}

	s.hub.publish(scopeTasks, model.Event{
		Type: model.EventUpdated,
		ID:   stored.ID,
		Task: stored,
	})
	return *stored, nil
}

// DeleteTask removes a task and publishes a deleted event. Dependent
// notification rows are removed by the schema's cascade rule.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return classify("deleting task", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return notFound("deleting task", id)
	}

	s.hub.publish(scopeTasks, model.Event{
		Type: model.EventDeleted,
		ID:   id,
	})
	return nil
}

// GetTaskByID fetches a single task by its identifier.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id int64) (*model.Task, error) {
	return s.getTask(ctx, id)
}

func (s *SQLiteStore) getTask(ctx context.Context, id int64) (*model.Task, error) {
	var t model.Task
	err := s.db.GetContext(ctx, &t, `
		SELECT id, description, owner_id, creator_id, assignee_id,
		       due_date, completed, completed_at, created_at
		FROM tasks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("getting task", id)
	}
	if err != nil {
		return nil, classify("getting task", err)
	}
	return &t, nil
}

// TasksForActor returns the union of tasks the actor created and tasks
// assigned to them, most recent first. Used as the snapshot source at
// (re)connect.
func (s *SQLiteStore) TasksForActor(ctx context.Context, actorID string) ([]model.Task, error) {
	var tasks []model.Task
	err := s.db.SelectContext(ctx, &tasks, `
		SELECT id, description, owner_id, creator_id, assignee_id,
		       due_date, completed, completed_at, created_at
		FROM tasks
		WHERE creator_id = ? OR assignee_id = ?
		ORDER BY created_at DESC, id DESC`,
		actorID, actorID)
	if err != nil {
		return nil, classify("listing tasks", err)
	}
	return tasks, nil
}

// SubscribeTasks returns a change feed of tasks visible to the actor.
// Delete events cannot be evaluated against row contents, so they are
// delivered to every task subscriber; consumers treat unknown ids as a
// no-op.
func (s *SQLiteStore) SubscribeTasks(actorID string) *Subscription {
	return s.hub.subscribe(scopeTasks, func(ev model.Event) bool {
		if ev.Type == model.EventDeleted {
			return true
		}
		if ev.Task == nil {
			return false
		}
		return ev.Task.CreatorID == actorID || ev.Task.AssignedTo(actorID)
	})
}
