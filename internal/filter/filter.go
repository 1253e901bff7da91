// Package filter derives deterministic visible subsets of the
// canonical task collection.
package filter

import (
	"time"

	"taskboard/internal/model"
)

// Visible maps (tasks, mode, actor, reference time) to the ordered
// visible subset. It is total, never mutates its input, and always
// returns a fresh slice. Due-date modes compare calendar days in now's
// location; tasks with no due date never match them, and completed
// tasks never match them regardless of date. Unknown modes behave
// like FilterAll.
func Visible(tasks []model.Task, mode model.FilterMode, actorID string, now time.Time) []model.Task {
	out := make([]model.Task, 0, len(tasks))

	for _, t := range tasks {
		switch mode {
		case model.FilterAssignedToMe:
			if !t.AssignedTo(actorID) {
				continue
			}
		case model.FilterCreatedByMe:
			if t.OwnerID != actorID {
				continue
			}
		case model.FilterOverdue:
			if t.Completed || t.DueDate == nil || !overdue(*t.DueDate, now) {
				continue
			}
		case model.FilterDueToday:
			if t.Completed || t.DueDate == nil || !sameDay(*t.DueDate, now) {
				continue
			}
		}
		out = append(out, t)
	}

	return out
}

// overdue reports whether due falls strictly before the start of now's
// calendar day.
func overdue(due, now time.Time) bool {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return due.In(now.Location()).Before(dayStart)
}

// sameDay reports whether due falls on now's calendar day.
func sameDay(due, now time.Time) bool {
	d := due.In(now.Location())
	return d.Year() == now.Year() && d.Month() == now.Month() && d.Day() == now.Day()
}
