// Package board exposes the user intents over the task store and derives
// the lane views shown to the user.
package board

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"tasklanes/internal/lanes"
	"tasklanes/internal/search"
	"tasklanes/internal/task"
	"tasklanes/internal/transition"
)

// Lane is one rendered status column.
type Lane struct {
	Status   task.Status
	Sort     lanes.SortState
	Sortable bool
	Items    []lanes.Item
}

// View is the full derived state: filter, partition, then rank per lane.
type View struct {
	Query   string
	Lanes   []Lane
	Total   int
	Matched int
}

// Lane returns the lane for status s.
func (v View) Lane(s task.Status) (Lane, bool) {
	for _, l := range v.Lanes {
		if l.Status == s {
			return l, true
		}
	}
	return Lane{}, false
}

// Option configures a Board.
type Option func(*Board)

// WithLogger routes board diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.log = l
		}
	}
}

// WithSessionOptions applies opts to every edit session the board opens.
func WithSessionOptions(opts ...transition.Option) Option {
	return func(b *Board) {
		b.sessionOpts = append(b.sessionOpts, opts...)
	}
}

// Board holds the store plus the transient query and sort toggles.
type Board struct {
	store       *task.Store
	log         *log.Logger
	query       string
	sorts       map[task.Status]lanes.SortState
	sessionOpts []transition.Option
}

func New(store *task.Store, opts ...Option) *Board {
	b := &Board{
		store: store,
		log:   log.New(io.Discard),
		sorts: make(map[task.Status]lanes.SortState),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Board) AddTask(d task.Draft) (task.Task, error) {
	t, err := b.store.Add(d)
	if err != nil {
		b.log.Debug("add rejected", "err", err)
	}
	return t, err
}

// EditTask saves t, keeping checked in step with the DONE status.
func (b *Board) EditTask(t task.Task) (bool, error) {
	t.Checked = t.Status == task.StatusDone
	return b.store.Update(t)
}

func (b *Board) DeleteTask(id task.ID) (bool, error) {
	return b.store.Remove(id)
}

// ToggleCheckbox runs the checkbox transition on the task and saves it.
func (b *Board) ToggleCheckbox(id task.ID) (task.Task, bool, error) {
	t, ok := b.store.Get(id)
	if !ok {
		return task.Task{}, false, nil
	}
	next := transition.Toggle(t)
	b.log.Debug("checkbox toggled", "id", id, "from", t.Status, "to", next.Status)
	_, err := b.EditTask(next)
	return next, true, err
}

// BeginEdit opens an edit session on a copy of the task.
func (b *Board) BeginEdit(id task.ID, opts ...transition.Option) (*transition.Session, bool) {
	t, ok := b.store.Get(id)
	if !ok {
		return nil, false
	}
	all := append(append([]transition.Option{}, b.sessionOpts...), opts...)
	return transition.NewSession(t, all...), true
}

// SaveEdit commits the session, so a pending status selection lands first,
// and then saves the result.
func (b *Board) SaveEdit(ctx context.Context, s *transition.Session) (task.Task, error) {
	t, err := s.Commit(ctx)
	if err != nil {
		return task.Task{}, err
	}
	t.Checked = t.Status == task.StatusDone
	_, err = b.EditTask(t)
	return t, err
}

func (b *Board) SetSearchQuery(q string) {
	b.query = q
}

func (b *Board) Query() string {
	return b.query
}

// ToggleSort advances the sort state of a sortable lane. It reports false
// and changes nothing for DONE or an unknown lane.
func (b *Board) ToggleSort(lane task.Status) (lanes.SortState, bool) {
	if !lanes.Sortable(lane) {
		return lanes.Unsorted, false
	}
	next := b.sorts[lane].Next()
	b.sorts[lane] = next
	return next, true
}

func (b *Board) SortState(lane task.Status) lanes.SortState {
	return b.sorts[lane]
}

func (b *Board) Tasks() []task.Task {
	return b.store.LoadAll()
}

// Filtered returns the tasks matching the current query in store order.
func (b *Board) Filtered() []task.Task {
	return search.Filter(b.store.LoadAll(), b.query)
}

// Highlight splits text around matches of the current query.
func (b *Board) Highlight(text string) []search.Segment {
	return search.Highlight(text, b.query)
}

func (b *Board) View() View {
	all := b.store.LoadAll()
	filtered := search.Filter(all, b.query)
	parts := lanes.Partition(filtered)

	v := View{Query: b.query, Total: len(all), Matched: len(filtered)}
	for _, s := range task.Statuses {
		state := b.sorts[s]
		v.Lanes = append(v.Lanes, Lane{
			Status:   s,
			Sort:     state,
			Sortable: lanes.Sortable(s),
			Items:    lanes.Rank(parts.Get(s), state),
		})
	}
	return v
}
