package ui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasklanes/internal/task"
	"tasklanes/internal/transition"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDeadline
	fieldStatus
	fieldCount
)

// formState backs both the add form and the edit form. An edit form carries
// a session; field edits go straight into it and the status radio schedules
// a deferred selection on it.
type formState struct {
	title       textinput.Model
	description textarea.Model
	deadline    textinput.Model
	status      task.Status
	focus       int
	session     *transition.Session
}

func newForm(width int) *formState {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200
	title.Width = width

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 1000
	desc.ShowLineNumbers = false
	desc.SetWidth(width)
	desc.SetHeight(3)

	deadline := textinput.New()
	deadline.Placeholder = task.DateLayout
	deadline.CharLimit = 32
	deadline.Width = width

	f := &formState{
		title:       title,
		description: desc,
		deadline:    deadline,
		status:      task.StatusTodo,
	}
	f.setFocus(fieldTitle)
	return f
}

func newEditForm(s *transition.Session, width int) *formState {
	f := newForm(width)
	d := s.Draft()
	f.title.SetValue(d.Title)
	f.description.SetValue(d.Description)
	f.deadline.SetValue(d.Deadline)
	f.status = d.Status
	f.session = s
	return f
}

func (f *formState) editing() bool {
	return f.session != nil
}

func (f *formState) setFocus(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	f.title.Blur()
	f.description.Blur()
	f.deadline.Blur()
	switch f.focus {
	case fieldTitle:
		return f.title.Focus()
	case fieldDescription:
		return f.description.Focus()
	case fieldDeadline:
		return f.deadline.Focus()
	}
	return nil
}

// shownStatus is the radio selection: the pending status while one waits,
// otherwise what the draft holds.
func (f *formState) shownStatus() task.Status {
	if f.session != nil {
		if st, ok := f.session.PendingStatus(); ok {
			return st
		}
		return f.session.Draft().Status
	}
	return f.status
}

// stepStatus moves the radio by delta and returns the status now selected.
func (f *formState) stepStatus(delta int) task.Status {
	cur := f.shownStatus()
	idx := 0
	for i, s := range task.Statuses {
		if s == cur {
			idx = i
		}
	}
	n := len(task.Statuses)
	next := task.Statuses[((idx+delta)%n+n)%n]
	f.status = next
	return next
}

// updateInput feeds msg to the focused text field and mirrors the value into
// the session when editing.
func (f *formState) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
		if f.session != nil {
			f.session.SetTitle(f.title.Value())
		}
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
		if f.session != nil {
			f.session.SetDescription(f.description.Value())
		}
	case fieldDeadline:
		f.deadline, cmd = f.deadline.Update(msg)
		if f.session != nil {
			f.session.SetDeadline(f.deadline.Value())
		}
	}
	return cmd
}

func (f *formState) draft() task.Draft {
	return task.Draft{
		Title:       f.title.Value(),
		Description: f.description.Value(),
		Deadline:    f.deadline.Value(),
		Status:      f.status,
	}
}
