package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tasklanes/internal/board"
	"tasklanes/internal/config"
	"tasklanes/internal/task"
	"tasklanes/internal/transition"
)

type memSlot struct {
	data []byte
}

func (m *memSlot) Load() ([]byte, error) { return m.data, nil }

func (m *memSlot) Save(data []byte) error {
	m.data = append([]byte(nil), data...)
	return nil
}

func newTestModel(t *testing.T) (Model, *board.Board) {
	t.Helper()
	store, err := task.Open(&memSlot{})
	if err != nil {
		t.Fatalf("task.Open failed: %v", err)
	}
	b := board.New(store, board.WithSessionOptions(transition.WithDelay(50*time.Millisecond)))
	return New(b, config.Default(t.TempDir()), nil), b
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	keySave  = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
)

// send feeds msgs through Update and returns the model plus the last command.
func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = send(t, m, runes(string(r)))
	}
	return m
}

func addViaForm(t *testing.T, m Model, title, desc, deadline string) Model {
	t.Helper()
	m, _ = send(t, m, runes("a"))
	if m.mode != modeAdd {
		t.Fatalf("mode after add key: %d", m.mode)
	}
	m = typeText(t, m, title)
	m, _ = send(t, m, keyTab)
	m = typeText(t, m, desc)
	m, _ = send(t, m, keyTab)
	m = typeText(t, m, deadline)
	m, _ = send(t, m, keySave)
	return m
}

func TestAddTaskThroughForm(t *testing.T) {
	m, b := newTestModel(t)
	m = addViaForm(t, m, "Buy milk", "2%", "2024-01-10")

	if m.mode != modeBoard || m.isErr {
		t.Fatalf("form should close on success: mode %d status %q", m.mode, m.status)
	}
	tasks := b.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" || tasks[0].Status != task.StatusTodo {
		t.Fatalf("stored tasks: %+v", tasks)
	}
	if !strings.Contains(m.View(), "Buy milk") {
		t.Error("view should list the new task")
	}
}

func TestAddFormValidationKeepsFormOpen(t *testing.T) {
	m, b := newTestModel(t)
	m = addViaForm(t, m, "No deadline", "desc", "")

	if m.mode != modeAdd || !m.isErr {
		t.Fatalf("form should stay open with an error: mode %d status %q", m.mode, m.status)
	}
	if !strings.Contains(m.status, "deadline") {
		t.Errorf("status should name the field: %q", m.status)
	}
	if len(b.Tasks()) != 0 {
		t.Error("nothing should be stored")
	}
}

func TestCheckboxKeyCyclesStatus(t *testing.T) {
	m, b := newTestModel(t)
	m = addViaForm(t, m, "Buy milk", "2%", "2024-01-10")

	m, _ = send(t, m, keySpace)
	if got := b.Tasks()[0].Status; got != task.StatusDoing {
		t.Fatalf("after one toggle: %s", got)
	}
	m, _ = send(t, m, keyRight, keySpace)
	got := b.Tasks()[0]
	if got.Status != task.StatusDone || !got.Checked {
		t.Fatalf("after two toggles: %+v", got)
	}
	if m.lane != 1 {
		t.Errorf("cursor lane: %d", m.lane)
	}
}

func TestSortKeyOnDoneLane(t *testing.T) {
	m, b := newTestModel(t)
	m, _ = send(t, m, keyRight, keyRight, runes("s"))
	if !strings.Contains(m.status, "cannot be sorted") {
		t.Errorf("status: %q", m.status)
	}
	if got := b.SortState(task.StatusDone); got.String() != "unsorted" {
		t.Errorf("DONE sort state: %s", got)
	}
}

func TestSearchModeFiltersLive(t *testing.T) {
	m, b := newTestModel(t)
	m = addViaForm(t, m, "Buy milk", "dairy", "2024-01-10")
	m = addViaForm(t, m, "Walk dog", "park", "2024-01-11")

	m, _ = send(t, m, runes("/"))
	m = typeText(t, m, "milk")
	if b.Query() != "milk" {
		t.Fatalf("query: %q", b.Query())
	}
	v := b.View()
	if v.Matched != 1 {
		t.Errorf("matched: %d", v.Matched)
	}

	m, _ = send(t, m, keyEnter)
	if m.mode != modeBoard || b.Query() != "milk" {
		t.Errorf("enter should keep the filter: mode %d query %q", m.mode, b.Query())
	}

	m, _ = send(t, m, runes("/"), keyEsc)
	if b.Query() != "" {
		t.Errorf("esc should clear the filter: %q", b.Query())
	}
}

func TestDeleteConfirmation(t *testing.T) {
	m, b := newTestModel(t)
	m = addViaForm(t, m, "Buy milk", "2%", "2024-01-10")

	m, _ = send(t, m, runes("d"), runes("n"))
	if len(b.Tasks()) != 1 {
		t.Fatal("n should keep the task")
	}
	m, _ = send(t, m, runes("d"), runes("y"))
	if len(b.Tasks()) != 0 {
		t.Error("y should delete the task")
	}
	if m.mode != modeBoard {
		t.Errorf("mode: %d", m.mode)
	}
}

func openEditOnStatus(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = send(t, m, runes("e"))
	if m.mode != modeView {
		t.Fatalf("mode after first edit key: %d", m.mode)
	}
	m, _ = send(t, m, runes("e"))
	if m.mode != modeEdit {
		t.Fatalf("mode after edit key in the detail pane: %d", m.mode)
	}
	m, _ = send(t, m, keyTab, keyTab, keyTab)
	if m.form.focus != fieldStatus {
		t.Fatalf("focus: %d", m.form.focus)
	}
	return m
}

func TestEditStatusIsDeferredUntilSettled(t *testing.T) {
	m, b := newTestModel(t)
	m = addViaForm(t, m, "Buy milk", "2%", "2024-01-10")
	m = openEditOnStatus(t, m)

	m, cmd := send(t, m, keyRight)
	if cmd == nil {
		t.Fatal("selecting a status should schedule a settle command")
	}
	if st, ok := m.form.session.PendingStatus(); !ok || st != task.StatusDoing {
		t.Fatalf("pending: %s, %v", st, ok)
	}
	if !strings.Contains(m.View(), "applying") {
		t.Error("view should flag the pending change")
	}

	m, _ = send(t, m, cmd())
	if m.form.session.Draft().Status != task.StatusDoing {
		t.Errorf("draft status: %s", m.form.session.Draft().Status)
	}

	m, _ = send(t, m, keySave)
	if m.mode != modeBoard {
		t.Fatalf("save should close the form: %q", m.status)
	}
	if got := b.Tasks()[0].Status; got != task.StatusDoing {
		t.Errorf("stored status: %s", got)
	}
}

func TestSaveWaitsForPendingStatus(t *testing.T) {
	m, b := newTestModel(t)
	m = addViaForm(t, m, "Buy milk", "2%", "2024-01-10")
	m = openEditOnStatus(t, m)

	m, _ = send(t, m, keyRight, keyRight)
	m, cmd := send(t, m, keySave)
	if !m.saving || cmd == nil {
		t.Fatalf("save with a pending status should wait: saving=%v", m.saving)
	}

	m, _ = send(t, m, cmd())
	if m.mode != modeBoard || m.saving {
		t.Fatalf("form should close after the wait: mode %d", m.mode)
	}
	got := b.Tasks()[0]
	if got.Status != task.StatusDone || !got.Checked {
		t.Errorf("stored: %+v", got)
	}
}

func TestCancelledEditDropsLateMessages(t *testing.T) {
	m, b := newTestModel(t)
	m = addViaForm(t, m, "Buy milk", "2%", "2024-01-10")
	m = openEditOnStatus(t, m)

	m, cmd := send(t, m, keyRight)
	s := m.form.session
	m, _ = send(t, m, keyEsc)
	if m.mode != modeBoard || !s.Closed() {
		t.Fatalf("esc should close the session: mode %d", m.mode)
	}

	m, _ = send(t, m, cmd())
	time.Sleep(5 * time.Millisecond)
	if got := b.Tasks()[0].Status; got != task.StatusTodo {
		t.Errorf("cancelled selection reached the store: %s", got)
	}
	if s.Draft().Status != task.StatusTodo {
		t.Errorf("cancelled selection reached the draft: %s", s.Draft().Status)
	}
}

func TestEmptyBoardShowsOnboardingHint(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()
	if !strings.Contains(out, "add your first task") {
		t.Error("empty TODO lane should show the onboarding hint")
	}
	if !strings.Contains(out, "No tasks available") {
		t.Error("other empty lanes should say no tasks")
	}
}

func TestDetailPaneShowsTaskAndLaunchesActions(t *testing.T) {
	m, b := newTestModel(t)
	m = addViaForm(t, m, "Buy milk", "two percent", "2024-01-10")

	m, _ = send(t, m, keyEnter)
	if m.mode != modeView {
		t.Fatalf("enter should open the detail pane: mode %d", m.mode)
	}
	out := m.View()
	for _, want := range []string{"View task", "Buy milk", "two percent", "2024-01-10", "TODO"} {
		if !strings.Contains(out, want) {
			t.Errorf("detail pane missing %q", want)
		}
	}
	if b.Tasks()[0].Title != "Buy milk" {
		t.Error("opening the pane changed the task")
	}

	m, _ = send(t, m, keyEsc)
	if m.mode != modeBoard || strings.Contains(m.View(), "two percent") {
		t.Fatalf("esc should close the pane: mode %d", m.mode)
	}

	m, _ = send(t, m, keyEnter, runes("d"))
	if m.mode != modeConfirmDelete {
		t.Fatalf("delete from the pane should ask first: mode %d", m.mode)
	}
	m, _ = send(t, m, runes("y"))
	if len(b.Tasks()) != 0 || m.mode != modeBoard {
		t.Errorf("delete from the pane: tasks %d mode %d", len(b.Tasks()), m.mode)
	}
}

func TestDetailPaneOnEmptyLane(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = send(t, m, runes("e"))
	if m.mode != modeBoard {
		t.Errorf("mode: %d", m.mode)
	}
	if !strings.Contains(m.status, "No task") {
		t.Errorf("status: %q", m.status)
	}
}

func TestSearchShowsMatchingDescription(t *testing.T) {
	m, b := newTestModel(t)
	m = addViaForm(t, m, "Groceries", "buy oat milk", "2024-01-10")
	m = addViaForm(t, m, "Walk dog", "park", "2024-01-11")
	if strings.Contains(m.View(), "buy oat milk") {
		t.Fatal("descriptions should stay hidden without a query")
	}

	m, _ = send(t, m, runes("/"))
	m = typeText(t, m, "oat")
	m, _ = send(t, m, keyEnter)
	if b.View().Matched != 1 {
		t.Fatalf("matched: %d", b.View().Matched)
	}
	out := m.View()
	if !strings.Contains(out, "Groceries") || !strings.Contains(out, "buy oat milk") {
		t.Errorf("a description-only match should show its description:\n%s", out)
	}
	if strings.Contains(out, "park") {
		t.Error("filtered-out task is still shown")
	}
}
