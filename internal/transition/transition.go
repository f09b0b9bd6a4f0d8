// Package transition implements how a task moves between TODO, DOING and DONE.
//
// Two triggers exist. The checkbox cycles a task immediately. The status
// picker in an edit session assigns a status directly, but only after a short
// deliberate delay; that deferred assignment is bound to the session and is
// discarded if the session ends first.
package transition

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tasklanes/internal/task"
)

// DefaultDelay is how long a status selection waits before it applies.
const DefaultDelay = 300 * time.Millisecond

// ErrClosed is returned by operations on a session that has ended.
var ErrClosed = errors.New("edit session closed")

var cycle = []task.Status{task.StatusTodo, task.StatusDoing, task.StatusDone}

// Toggle applies a checkbox click. A checked DONE task drops back to DOING;
// anything else advances TODO -> DOING -> DONE -> TODO. An unrecognised
// status advances to TODO.
func Toggle(t task.Task) task.Task {
	if t.IsDone() && t.Checked {
		t.Status = task.StatusDoing
		t.Checked = false
		return t
	}
	idx := -1
	for i, s := range cycle {
		if s == t.Status {
			idx = i
			break
		}
	}
	t.Status = cycle[(idx+1)%len(cycle)]
	t.Checked = t.Status == task.StatusDone
	return t
}

// Timer is the handle returned by a scheduler; *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d on another goroutine. It must
// not call f synchronously.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Session.
type Option func(*Session)

// WithDelay sets the status selection delay. Negative values are treated as zero.
func WithDelay(d time.Duration) Option {
	return func(s *Session) {
		if d < 0 {
			d = 0
		}
		s.delay = d
	}
}

// WithAfterFunc replaces the timer scheduler.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Session) {
		if fn != nil {
			s.afterFunc = fn
		}
	}
}

type pendingStatus struct {
	status task.Status
	gen    uint64
	timer  Timer
}

// Session holds a working copy of one task while it is being edited.
// It is safe for use from the event loop and the timer goroutine.
type Session struct {
	mu        sync.Mutex
	id        string
	draft     task.Task
	delay     time.Duration
	afterFunc AfterFunc

	closed  bool
	gen     uint64
	pending *pendingStatus
	settled chan struct{}
}

// NewSession opens an edit session over a copy of t.
func NewSession(t task.Task, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		draft:     t,
		delay:     DefaultDelay,
		afterFunc: stdAfterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID identifies the session so late messages can be matched to it.
func (s *Session) ID() string {
	return s.id
}

// TaskID is the id of the task under edit.
func (s *Session) TaskID() task.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.ID
}

// Draft returns the current working copy.
func (s *Session) Draft() task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Closed reports whether the session has ended.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Pending reports whether a status selection is waiting to apply.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// PendingStatus returns the status waiting to apply, if any.
func (s *Session) PendingStatus() (task.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return "", false
	}
	return s.pending.status, true
}

func (s *Session) SetTitle(v string) error {
	return s.edit(func(t *task.Task) { t.Title = v })
}

func (s *Session) SetDescription(v string) error {
	return s.edit(func(t *task.Task) { t.Description = v })
}

func (s *Session) SetDeadline(v string) error {
	return s.edit(func(t *task.Task) { t.Deadline = v })
}

func (s *Session) edit(fn func(*task.Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	fn(&s.draft)
	return nil
}

// SelectStatus schedules status to apply after the session delay. A newer
// selection replaces one that has not fired yet. When it lands, checked is
// forced on for DONE and otherwise left as it was.
func (s *Session) SelectStatus(status task.Status) error {
	if !status.Valid() {
		return fmt.Errorf("select status: invalid status %q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.pending != nil {
		s.pending.timer.Stop()
	} else {
		s.settled = make(chan struct{})
	}
	s.gen++
	gen := s.gen
	s.pending = &pendingStatus{status: status, gen: gen}
	s.pending.timer = s.afterFunc(s.delay, func() { s.fire(gen) })
	return nil
}

func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.pending == nil || s.pending.gen != gen {
		return
	}
	s.applyPendingLocked()
}

func (s *Session) applyPendingLocked() {
	st := s.pending.status
	s.draft.Status = st
	if st == task.StatusDone {
		s.draft.Checked = true
	}
	s.pending = nil
	close(s.settled)
}

// Settled returns a channel closed once no status change is pending. It
// also closes if the session ends with a change still pending.
func (s *Session) Settled() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return closedCh
	}
	return s.settled
}

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Commit waits for any pending status selection, ends the session and
// returns the draft to save. ctx only bounds the wait: if it is done first
// the pending selection is applied immediately, so it always lands before
// the caller persists.
func (s *Session) Commit(ctx context.Context) (task.Task, error) {
	if s.Closed() {
		return task.Task{}, ErrClosed
	}
	select {
	case <-s.Settled():
	case <-ctx.Done():
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return task.Task{}, ErrClosed
	}
	if s.pending != nil {
		s.pending.timer.Stop()
		s.applyPendingLocked()
	}
	s.closed = true
	return s.draft, nil
}

// Close ends the session and discards any pending status selection.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.pending != nil {
		s.pending.timer.Stop()
		s.pending = nil
		close(s.settled)
	}
}
