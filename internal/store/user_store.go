package store

import (
	"context"

	"taskboard/internal/model"
)

// UpsertUser mirrors a directory entry into the users table so that
// task and notification rows have a valid reference target. The store
// never invents users; entries originate from the directory service.
func (s *SQLiteStore) UpsertUser(ctx context.Context, u model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email, name = excluded.name`,
		u.ID, u.Email, u.Name,
	)
	if err != nil {
		return classify("upserting user", err)
	}
	return nil
}
