// Package directory consumes the external user-directory service.
// The directory is read-only: the board never creates or mutates users.
package directory

import (
	"context"

	"taskboard/internal/model"
)

// Directory lists the users available as assignment candidates.
// An empty list is a valid answer (the caller may lack privilege to
// enumerate users); it is never reported as an error.
type Directory interface {
	ListUsers(ctx context.Context) ([]model.User, error)
}

// Static is a fixed in-memory directory, used when no directory
// service is configured and in tests.
type Static struct {
	Users []model.User
}

// ListUsers returns the fixed user set.
func (s Static) ListUsers(ctx context.Context) ([]model.User, error) {
	out := make([]model.User, len(s.Users))
	copy(out, s.Users)
	return out, nil
}
