// Package board implements the write side of the shared task board:
// validated task writes, the referential-integrity fallback on
// assignment, and the notification side effect.
package board

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"taskboard/internal/directory"
	"taskboard/internal/model"
	"taskboard/internal/store"
	tasksync "taskboard/internal/sync"
)

var (
	// ErrValidation rejects malformed input before any remote call.
	ErrValidation = errors.New("validation error")

	// ErrNotCreator rejects a delete by anyone but the task's creator.
	ErrNotCreator = errors.New("only the creator can delete a task")

	// ErrNotParticipant rejects a mutation by a user who neither owns
	// nor is assigned the task.
	ErrNotParticipant = errors.New("only the owner or assignee can modify a task")
)

// WarningAssignmentRemoved is surfaced when a requested assignee does
// not reference an existing user. The write succeeds without the
// assignment; the task's existence never depends on the validity of
// the reference.
const WarningAssignmentRemoved = "assignment removed — assignee not found"

// Engine executes task writes on behalf of a single actor. Successful
// writes are reflected into the synchronizer only after the store
// acknowledges them; nothing here is optimistic.
type Engine struct {
	store  store.Store
	dir    directory.Directory
	sync   *tasksync.Synchronizer
	logger *zap.Logger

	actorID    string
	actorLabel string
}

// NewEngine wires the write engine for one actor.
func NewEngine(st store.Store, dir directory.Directory, s *tasksync.Synchronizer, logger *zap.Logger, actorID, actorLabel string) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:      st,
		dir:        dir,
		sync:       s,
		logger:     logger,
		actorID:    actorID,
		actorLabel: actorLabel,
	}
}

// CreateTask persists a new task owned and created by the actor.
//
// If the store rejects the write because assigneeID does not reference
// an existing user, the create is retried once with the assignment
// cleared and the returned warning is set; any other failure aborts the
// whole operation. On success the task is reflected locally and, when
// the final assignee is someone other than the actor, exactly one
// notification is dispatched.
func (e *Engine) CreateTask(ctx context.Context, description string, assigneeID *string, due *time.Time) (model.Task, string, error) {
	desc := strings.TrimSpace(description)
	if utf8.RuneCountInString(desc) < model.MinDescriptionLen {
		return model.Task{}, "", ErrValidation
	}

	candidate := model.Task{
		Description: desc,
		OwnerID:     e.actorID,
		CreatorID:   e.actorID,
		AssigneeID:  assigneeID,
		DueDate:     due,
	}

	warning := ""
	created, err := e.store.InsertTask(ctx, candidate)
	if err != nil {
		if assigneeID == nil || !store.IsForeignKeyViolation(err) {
			return model.Task{}, "", err
		}

		e.logger.Warn("assignee not found, creating unassigned",
			zap.String("assignee", *assigneeID))
		candidate.AssigneeID = nil
		created, err = e.store.InsertTask(ctx, candidate)
		if err != nil {
			return model.Task{}, "", err
		}
		warning = WarningAssignmentRemoved
	}

	e.sync.UpsertLocal(created)

	if created.AssigneeID != nil && *created.AssigneeID != e.actorID {
		e.notifyAssignment(ctx, created.ID, *created.AssigneeID, created.Description)
	}

	return created, warning, nil
}

// SetAssignee reassigns a task the actor owns or is assigned to.
//
// On a referential-integrity violation the previous assignee is kept,
// the warning is returned, and nothing else happens. On success a
// notification is dispatched only when the new assignee is set, differs
// from the previous one, and is not the actor.
func (e *Engine) SetAssignee(ctx context.Context, taskID int64, assigneeID *string) (model.Task, string, error) {
	current, err := e.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return model.Task{}, "", err
	}
	if err := e.requireParticipant(*current); err != nil {
		return model.Task{}, "", err
	}

	previous := current.AssigneeID

	updated := *current
	updated.AssigneeID = assigneeID

	stored, err := e.store.UpdateTask(ctx, updated)
	if err != nil {
		if assigneeID != nil && store.IsForeignKeyViolation(err) {
			e.logger.Warn("assignee not found, keeping previous assignment",
				zap.Int64("task_id", taskID),
				zap.String("assignee", *assigneeID))
			return *current, WarningAssignmentRemoved, nil
		}
		return model.Task{}, "", err
	}

	e.sync.UpsertLocal(stored)

	if assigneeID != nil && *assigneeID != e.actorID &&
		(previous == nil || *previous != *assigneeID) {
		e.notifyAssignment(ctx, stored.ID, *assigneeID, stored.Description)
	}

	return stored, "", nil
}

// ToggleComplete flips the completion flag of a task the actor owns or
// is assigned to, managing the completion timestamp alongside it.
func (e *Engine) ToggleComplete(ctx context.Context, taskID int64) (model.Task, error) {
	current, err := e.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}
	if err := e.requireParticipant(*current); err != nil {
		return model.Task{}, err
	}

	updated := *current
	updated.Completed = !current.Completed
	if updated.Completed {
		now := time.Now().UTC()
		updated.CompletedAt = &now
	} else {
		updated.CompletedAt = nil
	}

	stored, err := e.store.UpdateTask(ctx, updated)
	if err != nil {
		return model.Task{}, err
	}

	e.sync.UpsertLocal(stored)
	return stored, nil
}

// SetDueDate updates the due date of a task the actor owns or is
// assigned to. A nil due clears it.
func (e *Engine) SetDueDate(ctx context.Context, taskID int64, due *time.Time) (model.Task, error) {
	current, err := e.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}
	if err := e.requireParticipant(*current); err != nil {
		return model.Task{}, err
	}

	updated := *current
	updated.DueDate = due

	stored, err := e.store.UpdateTask(ctx, updated)
	if err != nil {
		return model.Task{}, err
	}

	e.sync.UpsertLocal(stored)
	return stored, nil
}

// DeleteTask removes a task. Only the creator may delete; the store
// removes dependent notifications transitively.
func (e *Engine) DeleteTask(ctx context.Context, taskID int64) error {
	current, err := e.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if current.CreatorID != e.actorID {
		return ErrNotCreator
	}

	if err := e.store.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	e.sync.RemoveLocal(taskID)
	return nil
}

// AssignmentCandidates lists the users a task can be assigned to. An
// empty directory means no candidates are available, not a failure.
func (e *Engine) AssignmentCandidates(ctx context.Context) ([]model.User, error) {
	users, err := e.dir.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// requireParticipant checks the actor's authority to mutate a task.
func (e *Engine) requireParticipant(t model.Task) error {
	if t.OwnerID == e.actorID || t.AssignedTo(e.actorID) {
		return nil
	}
	return ErrNotParticipant
}
