package model

// User is a read-only projection of a directory entry. Users are
// consumed from the external directory service and never mutated here.
type User struct {
	// ID is the directory identifier for this user.
	ID string `json:"id" db:"id"`

	// Email is the user's address.
	Email string `json:"email" db:"email"`

	// Name is the optional display name.
	Name string `json:"name,omitempty" db:"name"`
}

// Label returns the name to show for this user, falling back to the
// email address when no display name is set.
func (u User) Label() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
