// Package lanes splits tasks into status lanes and ranks each lane.
package lanes

import (
	"sort"

	"tasklanes/internal/task"
)

// Lanes holds the three status sub-views, each in input order.
type Lanes struct {
	Todo  []task.Task
	Doing []task.Task
	Done  []task.Task
}

// Get returns the lane for status s, or nil for an unknown status.
func (l Lanes) Get(s task.Status) []task.Task {
	switch s {
	case task.StatusTodo:
		return l.Todo
	case task.StatusDoing:
		return l.Doing
	case task.StatusDone:
		return l.Done
	}
	return nil
}

// Partition assigns each task to its lane. Tasks whose status is not one of
// the three lanes are left out of every lane.
func Partition(tasks []task.Task) Lanes {
	var l Lanes
	for _, t := range tasks {
		switch t.Status {
		case task.StatusTodo:
			l.Todo = append(l.Todo, t)
		case task.StatusDoing:
			l.Doing = append(l.Doing, t)
		case task.StatusDone:
			l.Done = append(l.Done, t)
		}
	}
	return l
}

// SortState is the per-lane deadline ordering toggle.
type SortState int

const (
	Unsorted SortState = iota
	Ascending
	Descending
)

// Next advances unsorted -> ascending -> descending -> unsorted.
func (s SortState) Next() SortState {
	return (s + 1) % 3
}

func (s SortState) String() string {
	switch s {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "unsorted"
	}
}

// Sortable reports whether a lane offers deadline sorting. DONE never does.
func Sortable(s task.Status) bool {
	return s == task.StatusTodo || s == task.StatusDoing
}

// Order returns tasks ordered by deadline according to state. The sort is
// stable and tasks without a parseable deadline always go last.
func Order(tasks []task.Task, state SortState) []task.Task {
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	if state != Ascending && state != Descending {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, okI := out[i].DeadlineTime()
		tj, okJ := out[j].DeadlineTime()
		switch {
		case !okI:
			return false
		case !okJ:
			return true
		case state == Ascending:
			return ti.Before(tj)
		default:
			return ti.After(tj)
		}
	})
	return out
}

// Priority is the visual class assigned by position within a lane.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PrioritySoon   Priority = "soon"
	PriorityNormal Priority = "normal"
)

// PriorityForRank maps a zero-based position to its class. Dates are not
// consulted: the first two rows are urgent and the next two soon.
func PriorityForRank(rank int) Priority {
	switch {
	case rank < 2:
		return PriorityUrgent
	case rank < 4:
		return PrioritySoon
	default:
		return PriorityNormal
	}
}

// Item is a task placed in a lane with its priority class.
type Item struct {
	Task     task.Task
	Rank     int
	Priority Priority
}

// Rank orders tasks per state and tags each with its positional priority.
func Rank(tasks []task.Task, state SortState) []Item {
	ordered := Order(tasks, state)
	items := make([]Item, len(ordered))
	for i, t := range ordered {
		items[i] = Item{Task: t, Rank: i, Priority: PriorityForRank(i)}
	}
	return items
}
