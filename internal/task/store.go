package task

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ErrPersist wraps failures writing the snapshot. The in-memory change
// has already been applied when it is returned.
var ErrPersist = errors.New("persist tasks")

// Persister loads and saves the whole task snapshot. Load returns nil data
// when nothing has been saved yet.
type Persister interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes store diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source used to mint IDs.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the ordered task collection. It is owned by a single event loop
// and is not safe for concurrent mutation.
type Store struct {
	p      Persister
	log    *log.Logger
	now    func() time.Time
	tasks  []Task
	lastID int64
}

// Open reads the snapshot from p. A missing or malformed snapshot opens as
// an empty store; only a read failure is reported, and the store is still usable.
func Open(p Persister, opts ...Option) (*Store, error) {
	if p == nil {
		return nil, errors.New("task store: persister is nil")
	}
	s := &Store{
		p:   p,
		log: log.New(io.Discard),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := p.Load()
	if err != nil {
		s.log.Error("load tasks", "err", err)
		return s, fmt.Errorf("load tasks: %w", err)
	}
	tasks, err := decodePayload(data)
	if err != nil {
		s.log.Warn("discarding malformed task snapshot", "err", err, "bytes", len(data), "raw", string(data))
		tasks = nil
	}
	s.tasks = tasks
	for _, t := range s.tasks {
		if n, err := strconv.ParseInt(string(t.ID), 10, 64); err == nil && n > s.lastID {
			s.lastID = n
		}
	}
	s.log.Debug("tasks loaded", "count", len(s.tasks))
	return s, nil
}

// LoadAll returns a copy of the collection in insertion order.
func (s *Store) LoadAll() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Get returns the task with the given id.
func (s *Store) Get(id ID) (Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Add validates d, appends a new task and persists the collection.
func (s *Store) Add(d Draft) (Task, error) {
	d, err := d.normalize()
	if err != nil {
		return Task{}, err
	}
	t := Task{
		ID:          s.nextID(),
		Title:       d.Title,
		Description: d.Description,
		Deadline:    d.Deadline,
		Status:      d.Status,
		Checked:     d.Status == StatusDone,
	}
	s.tasks = append(s.tasks, t)
	s.log.Info("task added", "id", t.ID, "status", t.Status)
	return t, s.persist()
}

// Update replaces the task with t.ID. It reports false, without writing,
// when no such task exists. A match must carry a title and a known status.
func (s *Store) Update(t Task) (bool, error) {
	idx := -1
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.log.Debug("update skipped, task not found", "id", t.ID)
		return false, nil
	}
	if strings.TrimSpace(t.Title) == "" {
		return false, &ValidationError{Field: "title", Reason: "required"}
	}
	if !t.Status.Valid() {
		return false, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", t.Status)}
	}
	for i := idx; i < len(s.tasks); i++ {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
		}
	}
	s.log.Info("task updated", "id", t.ID, "status", t.Status)
	return true, s.persist()
}

// Remove deletes the task with id. Removing an absent id is a no-op.
func (s *Store) Remove(id ID) (bool, error) {
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(s.tasks) {
		return false, nil
	}
	s.tasks = kept
	s.log.Info("task removed", "id", id)
	return true, s.persist()
}

func (s *Store) nextID() ID {
	n := s.now().UnixMilli()
	if n <= s.lastID {
		n = s.lastID + 1
	}
	s.lastID = n
	return ID(strconv.FormatInt(n, 10))
}

func (s *Store) persist() error {
	data, err := encodePayload(s.tasks)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.p.Save(data); err != nil {
		s.log.Error("save tasks", "err", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
