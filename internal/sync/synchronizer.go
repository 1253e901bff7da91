// Package sync keeps the canonical local task collection consistent
// with the remote change feed and acknowledged local writes.
package sync

import (
	"context"
	gosync "sync"

	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

// Synchronizer owns the canonical in-memory collection of tasks visible
// to the current actor, keyed by task id with insertion-time ordering
// (most recent first). All mutation goes through its methods; no other
// component touches the collection directly.
type Synchronizer struct {
	mu     gosync.Mutex
	tasks  []model.Task
	logger *zap.Logger
}

// New creates an empty Synchronizer.
func New(logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{logger: logger}
}

// LoadSnapshot replaces the collection wholesale. Used at (re)connect;
// rows are expected in descending creation order from the store.
func (s *Synchronizer) LoadSnapshot(rows []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make([]model.Task, len(rows))
	copy(s.tasks, rows)
}

// ApplyRemoteEvent merges a single change-feed event into the
// collection. Events must be applied in the order received.
//
// Inserts replace an existing entry with the same id in place (a local
// write may already have reflected the row); otherwise the row is
// prepended. Updates replace in place and are a no-op for unknown ids.
// Deletes remove the entry and are a no-op for unknown ids.
func (s *Synchronizer) ApplyRemoteEvent(ev model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case model.EventInserted:
		if ev.Task == nil {
			return
		}
		s.upsert(*ev.Task)
	case model.EventUpdated:
		if ev.Task == nil {
			return
		}
		if i := s.indexOf(ev.Task.ID); i >= 0 {
			s.tasks[i] = *ev.Task
		}
	case model.EventDeleted:
		s.remove(ev.ID)
	}
}

// UpsertLocal reflects an acknowledged local write. Idempotent with a
// later echoed feed event carrying the same id.
func (s *Synchronizer) UpsertLocal(t model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(t)
}

// RemoveLocal reflects an acknowledged local delete. No-op if the id
// is absent.
func (s *Synchronizer) RemoveLocal(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

// Tasks returns a copy of the collection in display order.
func (s *Synchronizer) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks in the collection.
func (s *Synchronizer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Run consumes the subscription until ctx is cancelled or the stream
// closes, applying each event in arrival order. The subscription is
// closed on the way out; a closed stream means the subscriber fell
// behind and the caller should resync via LoadSnapshot and resubscribe.
func (s *Synchronizer) Run(ctx context.Context, sub *store.Subscription) {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("task feed stopped", zap.Error(ctx.Err()))
			return
		case ev, ok := <-sub.Events():
			if !ok {
				s.logger.Warn("task feed closed by store; resync required")
				return
			}
			s.ApplyRemoteEvent(ev)
		}
	}
}

// upsert replaces the entry with the same id in place, or prepends.
func (s *Synchronizer) upsert(t model.Task) {
	if i := s.indexOf(t.ID); i >= 0 {
		s.tasks[i] = t
		return
	}
	s.tasks = append([]model.Task{t}, s.tasks...)
}

// remove drops the entry with the given id, if present.
func (s *Synchronizer) remove(id int64) {
	if i := s.indexOf(id); i >= 0 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
}

// indexOf returns the position of the task with the given id, or -1.
// Collections are per-actor and small; a linear scan is fine.
func (s *Synchronizer) indexOf(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
