package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"tasklanes/internal/board"
	"tasklanes/internal/config"
	"tasklanes/internal/lanes"
	"tasklanes/internal/task"
	"tasklanes/internal/transition"
	"tasklanes/internal/ui/styles"
)

type mode int

const (
	modeBoard mode = iota
	modeAdd
	modeEdit
	modeSearch
	modeConfirmDelete
	modeView
)

const formWidth = 48

// statusAppliedMsg arrives once a deferred status selection has landed (or
// its session ended). saveReadyMsg does the same for a save that had to wait.
type statusAppliedMsg struct{ sessionID string }

type saveReadyMsg struct{ sessionID string }

type Model struct {
	board  *board.Board
	cfg    config.Config
	keys   keyMap
	styles *styles.Styles
	log    *log.Logger

	lane       int
	rows       [3]int
	mode       mode
	form       *formState
	search     textinput.Model
	pendingDel *task.Task
	viewing    task.ID
	saving     bool
	status     string
	isErr      bool
	width      int
}

func New(b *board.Board, cfg config.Config, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	si := textinput.New()
	si.Placeholder = "Search titles and descriptions"
	si.CharLimit = 100
	si.Width = formWidth

	m := Model{
		board:  b,
		cfg:    cfg,
		keys:   newKeyMap(cfg.Keys),
		styles: styles.New(styles.Default),
		log:    logger,
		search: si,
		status: fmt.Sprintf("Press %s to add a task, %s to check it off.",
			keyName(cfg.Keys.Add), keyName(cfg.Keys.Toggle)),
	}
	return m
}

func Run(b *board.Board, cfg config.Config, logger *log.Logger) error {
	program := tea.NewProgram(New(b, cfg, logger), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateForm(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeConfirmDelete:
			return m.updateDeleteConfirm(msg)
		case modeView:
			return m.updateView(msg)
		}
		return m.updateBoard(msg)
	case statusAppliedMsg:
		if !m.ownsSession(msg.sessionID) {
			return m, nil
		}
		st := m.form.session.Draft().Status
		m.form.status = st
		m.setStatus(fmt.Sprintf("Status set to %s", st))
		return m, nil
	case saveReadyMsg:
		if !m.ownsSession(msg.sessionID) || !m.saving {
			return m, nil
		}
		return m.finishEdit()
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// ownsSession reports whether id belongs to the edit form still on screen.
// Messages from a cancelled session are dropped here.
func (m Model) ownsSession(id string) bool {
	return m.mode == modeEdit && m.form != nil && m.form.session != nil && m.form.session.ID() == id
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.board.View()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.rows[m.lane]++
	case key.Matches(msg, m.keys.Up):
		m.rows[m.lane]--
	case key.Matches(msg, m.keys.Left):
		m.lane = (m.lane + len(v.Lanes) - 1) % len(v.Lanes)
	case key.Matches(msg, m.keys.Right):
		m.lane = (m.lane + 1) % len(v.Lanes)
	case key.Matches(msg, m.keys.Add):
		m.form = newForm(formWidth)
		m.mode = modeAdd
		m.setStatus(fmt.Sprintf("New task: %s moves between fields, %s saves, %s cancels",
			keyName(m.cfg.Keys.NextField), keyName(m.cfg.Keys.Save), keyName(m.cfg.Keys.Cancel)))
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.current(v)
		if !ok {
			return m, nil
		}
		next, _, err := m.board.ToggleCheckbox(t.ID)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("%q moved to %s", next.Title, next.Status))
	case key.Matches(msg, m.keys.Sort):
		lane := v.Lanes[m.lane].Status
		state, ok := m.board.ToggleSort(lane)
		if !ok {
			m.setStatus(fmt.Sprintf("%s lane cannot be sorted", lane))
			return m, nil
		}
		m.setStatus(fmt.Sprintf("%s lane: %s", lane, sortLabel(state)))
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.board.Query())
		m.search.CursorEnd()
		m.setStatus(fmt.Sprintf("Search: %s keeps the filter, %s clears it",
			keyName(m.cfg.Keys.Confirm), keyName(m.cfg.Keys.Cancel)))
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Confirm):
		t, ok := m.current(v)
		if !ok {
			m.setStatus("No task to open")
			return m, nil
		}
		m.viewing = t.ID
		m.mode = modeView
		m.setStatus(fmt.Sprintf("%s edits, %s deletes, %s goes back",
			keyName(m.cfg.Keys.Edit), keyName(m.cfg.Keys.Delete), keyName(m.cfg.Keys.Cancel)))
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		t, ok := m.current(v)
		if !ok {
			return m, nil
		}
		m.pendingDel = &t
		m.mode = modeConfirmDelete
		m.setStatus(fmt.Sprintf("Delete %q? y/n", t.Title))
	case key.Matches(msg, m.keys.Cancel):
		if m.board.Query() != "" {
			m.board.SetSearchQuery("")
			m.setStatus("Search cleared")
		}
	}
	m.clampRows(m.board.View())
	return m, nil
}

// updateView handles the read-only detail pane. Edit and delete start from
// here.
func (m Model) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t, ok := m.viewed()
	if !ok {
		m.mode = modeBoard
		m.setStatus("Task no longer exists")
		m.clampRows(m.board.View())
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Edit):
		return m.beginEdit(t)
	case key.Matches(msg, m.keys.Delete):
		m.pendingDel = &t
		m.mode = modeConfirmDelete
		m.setStatus(fmt.Sprintf("Delete %q? y/n", t.Title))
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Confirm):
		m.mode = modeBoard
		m.setStatus("")
	}
	return m, nil
}

func (m Model) beginEdit(t task.Task) (tea.Model, tea.Cmd) {
	s, ok := m.board.BeginEdit(t.ID)
	if !ok {
		m.mode = modeBoard
		m.setStatus("Task no longer exists")
		return m, nil
	}
	m.log.Debug("edit session opened", "session", s.ID(), "task", s.TaskID())
	m.form = newEditForm(s, formWidth)
	m.mode = modeEdit
	m.setStatus(fmt.Sprintf("Editing: %s moves between fields, %s saves, %s cancels",
		keyName(m.cfg.Keys.NextField), keyName(m.cfg.Keys.Save), keyName(m.cfg.Keys.Cancel)))
	return m, textinput.Blink
}

// viewed looks up the task shown in the detail pane.
func (m Model) viewed() (task.Task, bool) {
	for _, t := range m.board.Tasks() {
		if t.ID == m.viewing {
			return t, true
		}
	}
	return task.Task{}, false
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.mode = modeBoard
		m.search.Blur()
		if q := m.board.Query(); q != "" {
			m.setStatus(fmt.Sprintf("Filtering by %q", q))
		} else {
			m.setStatus("")
		}
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBoard
		m.search.Blur()
		m.search.SetValue("")
		m.board.SetSearchQuery("")
		m.setStatus("Search cleared")
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.board.SetSearchQuery(m.search.Value())
		m.clampRows(m.board.View())
		return m, cmd
	}
	m.clampRows(m.board.View())
	return m, nil
}

func (m Model) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.No), key.Matches(msg, m.keys.Cancel):
		m.setStatus("Delete cancelled")
	case key.Matches(msg, m.keys.Yes):
		if m.pendingDel == nil {
			m.setStatus("Nothing to delete")
			break
		}
		if _, err := m.board.DeleteTask(m.pendingDel.ID); err != nil {
			m.setError(err)
		} else {
			m.setStatus(fmt.Sprintf("Deleted %q", m.pendingDel.Title))
		}
	default:
		return m, nil
	}
	m.mode = modeBoard
	m.pendingDel = nil
	m.clampRows(m.board.View())
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	if key.Matches(msg, m.keys.Cancel) {
		return m.closeForm("Cancelled")
	}
	if m.saving {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Save):
		return m.saveForm()
	case key.Matches(msg, m.keys.NextField):
		return m, f.setFocus(f.focus + 1)
	case key.Matches(msg, m.keys.PrevField):
		return m, f.setFocus(f.focus - 1)
	}

	if f.focus == fieldStatus {
		switch {
		case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
			return m.selectStatus(-1)
		case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
			return m.selectStatus(1)
		case key.Matches(msg, m.keys.Confirm):
			return m.saveForm()
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Confirm) && f.focus != fieldDescription {
		return m, f.setFocus(f.focus + 1)
	}
	return m, f.updateInput(msg)
}

func (m Model) selectStatus(delta int) (tea.Model, tea.Cmd) {
	f := m.form
	st := f.stepStatus(delta)
	if !f.editing() {
		return m, nil
	}
	if err := f.session.SelectStatus(st); err != nil {
		m.setError(err)
		return m, nil
	}
	m.log.Debug("status selected", "session", f.session.ID(), "status", st)
	return m, waitSettled(f.session, func(id string) tea.Msg { return statusAppliedMsg{sessionID: id} })
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	f := m.form
	if strings.TrimSpace(f.title.Value()) == "" {
		m.setError(&task.ValidationError{Field: "title", Reason: "required"})
		return m, nil
	}
	if !f.editing() {
		t, err := m.board.AddTask(f.draft())
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.mode = modeBoard
		m.form = nil
		m.focusTask(t)
		m.setStatus(fmt.Sprintf("Added %q", t.Title))
		return m, nil
	}

	if f.session.Pending() {
		m.saving = true
		m.setStatus("Applying status change...")
		return m, waitSettled(f.session, func(id string) tea.Msg { return saveReadyMsg{sessionID: id} })
	}
	return m.finishEdit()
}

// finishEdit commits the session. The pending status, if any, has already
// settled by the time this runs.
func (m Model) finishEdit() (tea.Model, tea.Cmd) {
	s := m.form.session
	t, err := m.board.SaveEdit(context.Background(), s)
	m.saving = false
	m.mode = modeBoard
	m.form = nil
	if err != nil {
		m.log.Error("save edit", "session", s.ID(), "task", s.TaskID(), "err", err)
		m.setError(err)
		m.clampRows(m.board.View())
		return m, nil
	}
	m.log.Debug("edit saved", "session", s.ID(), "task", t.ID, "status", t.Status)
	m.focusTask(t)
	m.setStatus(fmt.Sprintf("Saved %q", t.Title))
	return m, nil
}

func (m Model) closeForm(status string) (tea.Model, tea.Cmd) {
	if m.form != nil && m.form.editing() {
		m.form.session.Close()
		m.log.Debug("edit session closed", "session", m.form.session.ID(), "task", m.form.session.TaskID())
	}
	m.form = nil
	m.saving = false
	m.mode = modeBoard
	m.setStatus(status)
	return m, nil
}

func waitSettled(s *transition.Session, wrap func(string) tea.Msg) tea.Cmd {
	ch, id := s.Settled(), s.ID()
	return func() tea.Msg {
		<-ch
		return wrap(id)
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.isErr = false
}

func (m *Model) setError(err error) {
	var ve *task.ValidationError
	switch {
	case errors.As(err, &ve):
		m.status = ve.Error()
	case errors.Is(err, task.ErrPersist):
		m.status = fmt.Sprintf("Saved in memory only: %v", err)
	default:
		m.status = err.Error()
	}
	m.isErr = true
}

func (m Model) current(v board.View) (task.Task, bool) {
	items := v.Lanes[m.lane].Items
	row := m.rows[m.lane]
	if row < 0 || row >= len(items) {
		return task.Task{}, false
	}
	return items[row].Task, true
}

func (m *Model) clampRows(v board.View) {
	for i, l := range v.Lanes {
		m.rows[i] = clampCursor(m.rows[i], len(l.Items))
	}
}

// focusTask moves the cursor onto t wherever it now sits.
func (m *Model) focusTask(t task.Task) {
	v := m.board.View()
	for i, l := range v.Lanes {
		for j, it := range l.Items {
			if it.Task.ID == t.ID {
				m.lane, m.rows[i] = i, j
			}
		}
	}
	m.clampRows(v)
}

func (m Model) View() string {
	v := m.board.View()
	var b strings.Builder

	title := m.styles.Title.Render("Tasklanes")
	if v.Query != "" {
		title += m.styles.Dim.Render(fmt.Sprintf("  %d of %d match %q", v.Matched, v.Total, v.Query))
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	cols := make([]string, len(v.Lanes))
	for i, l := range v.Lanes {
		cols[i] = m.renderLane(l, i, v.Total)
	}
	// narrow terminals stack the lanes
	if m.width > 0 && m.width < len(cols)*(styles.LaneWidth+4) {
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cols...))
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}
	b.WriteString("\n")

	switch m.mode {
	case modeAdd, modeEdit:
		b.WriteString(m.renderForm())
		b.WriteString("\n")
	case modeSearch:
		b.WriteString(m.styles.Form.Render(m.search.View()))
		b.WriteString("\n")
	case modeView:
		if t, ok := m.viewed(); ok {
			b.WriteString(m.renderDetail(t))
			b.WriteString("\n")
		}
	}

	if m.isErr {
		b.WriteString(m.styles.StatusErr.Render(m.status))
	} else {
		b.WriteString(m.styles.Status.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.help()))
	return b.String()
}

func (m Model) renderLane(l board.Lane, idx, total int) string {
	var b strings.Builder
	header := m.styles.StatusColor(l.Status).Render(fmt.Sprintf("%s (%d)", l.Status, len(l.Items)))
	if l.Sortable && l.Sort != lanes.Unsorted {
		header += " " + m.styles.Dim.Render(sortLabel(l.Sort))
	}
	b.WriteString(m.styles.LaneHeader.Render(header))
	b.WriteString("\n")

	if len(l.Items) == 0 {
		hint := "No tasks available"
		if total == 0 && l.Status == task.StatusTodo {
			hint = fmt.Sprintf("Nothing here yet. Press %s to add your first task.", keyName(m.cfg.Keys.Add))
		}
		b.WriteString(m.styles.Dim.Render(hint))
	}
	for i, it := range l.Items {
		cursor := "  "
		if idx == m.lane && i == m.rows[idx] && (m.mode == modeBoard || m.mode == modeView) {
			cursor = "> "
		}
		checkbox := "[ ]"
		if it.Task.Checked {
			checkbox = "[x]"
		}
		b.WriteString(cursor + checkbox + " " + m.renderHighlighted(it.Task.Title, m.styles.Priority(it.Priority)))
		b.WriteString("\n")
		// shows why a task matched when only its description did
		if m.board.Query() != "" && strings.TrimSpace(it.Task.Description) != "" {
			b.WriteString("      " + m.renderHighlighted(it.Task.Description, m.styles.Dim))
			b.WriteString("\n")
		}
		b.WriteString("      " + m.styles.Dim.Render(it.Task.Deadline))
		if i < len(l.Items)-1 {
			b.WriteString("\n")
		}
	}

	style := m.styles.Lane
	if idx == m.lane {
		style = m.styles.LaneFocus
	}
	return style.Render(b.String())
}

func (m Model) renderHighlighted(text string, base lipgloss.Style) string {
	var b strings.Builder
	for _, seg := range m.board.Highlight(text) {
		if seg.Match {
			b.WriteString(m.styles.Match.Render(seg.Text))
		} else {
			b.WriteString(base.Render(seg.Text))
		}
	}
	return b.String()
}

func (m Model) renderDetail(t task.Task) string {
	plain := lipgloss.NewStyle()
	desc := m.styles.Dim.Render("no description")
	if strings.TrimSpace(t.Description) != "" {
		desc = m.renderHighlighted(t.Description, plain)
	}
	checked := "no"
	if t.Checked {
		checked = "yes"
	}
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("View task"))
	b.WriteString("\n")
	for _, row := range []struct{ label, body string }{
		{"Title", m.renderHighlighted(t.Title, plain)},
		{"Description", desc},
		{"Deadline", t.Deadline},
		{"Status", m.styles.StatusColor(t.Status).Render(string(t.Status))},
		{"Done", checked},
	} {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, "  ", m.styles.Label.Render(row.label), row.body))
		b.WriteString("\n")
	}
	return m.styles.Form.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderForm() string {
	f := m.form
	heading := "New task"
	if f.editing() {
		heading = "Edit task"
	}
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(heading))
	b.WriteString("\n")
	b.WriteString(m.formRow(fieldTitle, "Title", f.title.View()))
	b.WriteString(m.formRow(fieldDescription, "Description", f.description.View()))
	b.WriteString(m.formRow(fieldDeadline, "Deadline", f.deadline.View()))
	b.WriteString(m.formRow(fieldStatus, "Status", m.renderStatusRadio()))
	return m.styles.Form.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) formRow(field int, label, body string) string {
	marker := "  "
	if m.form.focus == field {
		marker = "> "
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, marker, m.styles.Label.Render(label), body) + "\n"
}

func (m Model) renderStatusRadio() string {
	f := m.form
	shown := f.shownStatus()
	parts := make([]string, len(task.Statuses))
	for i, st := range task.Statuses {
		if st == shown {
			parts[i] = m.styles.RadioOn.Render("(•) " + string(st))
		} else {
			parts[i] = m.styles.Radio.Render("( ) " + string(st))
		}
	}
	out := strings.Join(parts, "  ")
	if f.editing() && f.session.Pending() {
		out += "  " + m.styles.Pending.Render("applying...")
	}
	return out
}

func (m Model) help() string {
	k := m.keys
	switch m.mode {
	case modeAdd, modeEdit:
		return renderHelp(k.NextField, k.Left, k.Right, k.Save, k.Cancel)
	case modeSearch:
		return renderHelp(k.Confirm, k.Cancel)
	case modeConfirmDelete:
		return renderHelp(k.Yes, k.No)
	case modeView:
		return renderHelp(k.Edit, k.Delete, k.Cancel)
	}
	return renderHelp(k.Up, k.Down, k.Left, k.Right, k.Add, k.Toggle, k.Edit, k.Delete, k.Sort, k.Search, k.Quit)
}

func sortLabel(s lanes.SortState) string {
	switch s {
	case lanes.Ascending:
		return "▲ deadline"
	case lanes.Descending:
		return "▼ deadline"
	}
	return "unsorted"
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
