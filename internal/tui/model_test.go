package tui

import (
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"todolist/internal/testutil"
	"todolist/internal/todo"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func titles(svc *testutil.FakeService) string {
	return strings.Join(svc.Titles(), ",")
}

func TestModel_Navigation(t *testing.T) {
	svc := testutil.NewFakeService(
		todo.Item{ID: "a", Title: "A"},
		todo.Item{ID: "b", Title: "B"},
	)
	m := New(svc)

	m = press(t, m, runes("j"), runes("j"), tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Errorf("expected cursor clamped at 1, got %d", m.cursor)
	}
	m = press(t, m, runes("k"), tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("expected cursor clamped at 0, got %d", m.cursor)
	}
}

func TestModel_ToggleFollowsItem(t *testing.T) {
	svc := testutil.NewFakeService(
		todo.Item{ID: "a", Title: "A"},
		todo.Item{ID: "b", Title: "B"},
	)
	m := New(svc)

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !svc.State().Items[0].Done {
		t.Fatal("expected A to be done")
	}
	// A moved to the bottom of the display and the cursor went with it.
	if m.cursor != 1 || m.entries[m.cursor].Item.ID != "a" {
		t.Errorf("expected cursor on A at 1, got %d", m.cursor)
	}
	if !strings.Contains(m.View(), "[x] ") {
		t.Error("expected done item to render checked")
	}
}

func TestModel_Delete(t *testing.T) {
	svc := testutil.NewFakeService(
		todo.Item{ID: "a", Title: "A"},
		todo.Item{ID: "b", Title: "B"},
	)
	m := New(svc)

	m = press(t, m, runes("j"), runes("d"))
	if titles(svc) != "A" {
		t.Errorf("expected A, got %s", titles(svc))
	}
	if m.cursor != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", m.cursor)
	}

	m = press(t, m, runes("d"), runes("d"))
	if len(svc.State().Items) != 0 {
		t.Error("expected empty list")
	}
	if !strings.Contains(m.View(), "No tasks yet") {
		t.Error("expected empty message")
	}
}

func TestModel_Reorder(t *testing.T) {
	svc := testutil.NewFakeService(
		todo.Item{ID: "a", Title: "A"},
		todo.Item{ID: "b", Title: "B"},
		todo.Item{ID: "c", Title: "C"},
	)
	m := New(svc)

	m = press(t, m, runes("J"))
	if titles(svc) != "B,A,C" {
		t.Fatalf("expected B,A,C, got %s", titles(svc))
	}
	if m.cursor != 1 {
		t.Errorf("expected cursor to follow A to 1, got %d", m.cursor)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftDown})
	if titles(svc) != "B,C,A" {
		t.Fatalf("expected B,C,A, got %s", titles(svc))
	}

	// Already at the bottom.
	m = press(t, m, runes("J"))
	if titles(svc) != "B,C,A" {
		t.Errorf("expected no change at the bottom, got %s", titles(svc))
	}

	press(t, m, runes("K"))
	if titles(svc) != "B,A,C" {
		t.Errorf("expected B,A,C, got %s", titles(svc))
	}
}

func TestModel_AddForm(t *testing.T) {
	svc := testutil.NewFakeService(todo.Item{ID: "a", Title: "A"})
	m := New(svc)

	m = press(t, m, runes("a"))
	if m.mode != modeTitle {
		t.Fatal("expected title step")
	}

	// Empty titles are refused.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeTitle || m.status != "Title cannot be empty" {
		t.Fatalf("expected to stay on title step, mode=%d status=%q", m.mode, m.status)
	}

	m = press(t, m, runes("Buy milk"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeDetails {
		t.Fatal("expected details step")
	}
	if !strings.Contains(m.View(), "New task: Buy milk") {
		t.Error("expected title shown on details step")
	}

	m = press(t, m, runes("2 liters"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeList {
		t.Fatal("expected form to close")
	}

	items := svc.State().Items
	if len(items) != 2 || items[0].Title != "Buy milk" || items[0].Details != "2 liters" {
		t.Fatalf("unexpected items %+v", items)
	}
	if m.cursor != 0 {
		t.Errorf("expected cursor on the new item, got %d", m.cursor)
	}
}

func TestModel_AddFormCancel(t *testing.T) {
	svc := testutil.NewFakeService()
	m := New(svc)

	m = press(t, m, runes("a"), runes("q"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList {
		t.Fatal("expected form to close")
	}
	if len(svc.State().Items) != 0 {
		t.Error("cancel should not add")
	}
}

func TestModel_ErrorBanner(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SetQuota(10)
	m := New(svc)

	m = press(t, m, runes("a"), runes("too long to store"), tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEnter})

	view := m.View()
	if !strings.Contains(view, "Storage quota exceeded, the new task will not be saved") {
		t.Errorf("expected banner, got:\n%s", view)
	}
	if !strings.Contains(view, "too long to store") {
		t.Error("the item should still be shown")
	}

	m = press(t, m, runes("x"))
	if svc.State().Error || strings.Contains(m.View(), "quota exceeded") {
		t.Error("expected x to dismiss the banner")
	}
}

func TestModel_RefreshFromOtherSession(t *testing.T) {
	svc := testutil.NewFakeService()
	m := New(svc)

	peer := svc.Peer()
	defer peer.Close()
	peer.Dispatch(todo.Add{Title: "from peer"})

	m = press(t, m, refreshMsg{})
	if len(m.entries) != 1 || !strings.Contains(m.View(), "from peer") {
		t.Errorf("expected peer's item after refresh, got %+v", m.entries)
	}
}

func TestModel_Quit(t *testing.T) {
	m := New(testutil.NewFakeService())

	for _, key := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected QuitMsg", key)
		}
	}
}

// crossedOut matches an SGR sequence that turns on strikethrough.
var crossedOut = regexp.MustCompile(`\x1b\[([0-9]+;)*9(;[0-9]+)*m`)

func withColor(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func viewLine(t *testing.T, view, text string) string {
	t.Helper()
	for _, line := range strings.Split(view, "\n") {
		if strings.Contains(testutil.StripANSI(line), text) {
			return line
		}
	}
	t.Fatalf("no line containing %q in:\n%s", text, testutil.StripANSI(view))
	return ""
}

func TestModel_View(t *testing.T) {
	withColor(t)
	svc := testutil.NewFakeService(
		todo.Item{ID: "1", Title: "Call mom", Done: true},
		todo.Item{ID: "2", Title: "Buy milk", Details: "2 liters"},
		todo.Item{ID: "3", Title: "Write report"},
	)
	svc.Dispatch(todo.ShowError{Reason: "storage: quota exceeded"})

	view := New(svc).View()

	testutil.GoldenView(t, "view", view)

	if !crossedOut.MatchString(viewLine(t, view, "Call mom")) {
		t.Error("expected done item to be struck through")
	}
	for _, open := range []string{"Buy milk", "Write report"} {
		if crossedOut.MatchString(viewLine(t, view, open)) {
			t.Errorf("open item %q should not be struck through", open)
		}
	}
	if banner := viewLine(t, view, "Storage quota exceeded"); banner == testutil.StripANSI(banner) {
		t.Error("expected banner to be styled")
	}
}

func TestModel_ViewEmptyWithoutBanner(t *testing.T) {
	view := testutil.StripANSI(New(testutil.NewFakeService()).View())

	if !strings.Contains(view, "No tasks yet. Press a to add one.") {
		t.Errorf("expected empty hint, got:\n%s", view)
	}
	if strings.Contains(view, "Storage quota exceeded") {
		t.Error("banner should only show with the error flag raised")
	}
}
