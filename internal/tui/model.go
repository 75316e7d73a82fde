// Package tui is the interactive terminal front end for the to-do list.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todolist/internal/output"
	"todolist/internal/service"
	"todolist/internal/todo"
)

type mode int

const (
	modeList mode = iota
	modeTitle
	modeDetails
)

// refreshMsg asks the model to re-read the service state.
type refreshMsg struct{}

var (
	primaryColor = lipgloss.Color("#9012fe")
	mutedColor   = lipgloss.Color("#888888")

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	doneStyle    = lipgloss.NewStyle().Strikethrough(true).Foreground(mutedColor)
	detailsStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	bannerStyle  = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#d7263d")).
			Padding(0, 1)
)

// Model is the bubbletea model over a service.Service.
type Model struct {
	svc     service.Service
	state   todo.State
	entries []todo.Entry
	cursor  int
	mode    mode
	input   textinput.Model
	title   string
	status  string
	width   int
}

// New creates a model showing svc's current state.
func New(svc service.Service) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		svc:   svc,
		input: ti,
	}
	m.setState(svc.State())
	return m
}

// Run shows the UI until the user quits or ctx is done. Changes made by other
// sessions are shown as they arrive.
func Run(ctx context.Context, svc service.Service, out io.Writer, log *slog.Logger) error {
	p := tea.NewProgram(New(svc),
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithAltScreen())

	// Dispatches from Update notify synchronously, so Send must not block the
	// caller.
	unsubscribe := svc.Subscribe(func(prev, next todo.State) {
		go p.Send(refreshMsg{})
	})
	defer unsubscribe()

	log.Debug("tui: started")
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.setState(m.svc.State())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-10, 10)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode != modeList {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case " ", "space":
		if e, ok := m.selected(); ok {
			m.dispatch(todo.ToggleDone{Index: e.Index})
			m.follow(e.Item.ID)
		}
	case "d":
		if e, ok := m.selected(); ok {
			m.dispatch(todo.Delete{Index: e.Index})
			m.status = fmt.Sprintf("Deleted %q", e.Item.Title)
		}
	case "K", "shift+up":
		m.move(-1)
	case "J", "shift+down":
		m.move(1)
	case "a":
		m.mode = modeTitle
		m.status = ""
		m.input.Reset()
		m.input.Placeholder = "Title"
		return m, m.input.Focus()
	case "x":
		if m.state.Error {
			m.dispatch(todo.CloseError{})
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.status = "Cancelled"
		return m, nil
	case "enter":
		value := m.input.Value()
		if m.mode == modeTitle {
			if strings.TrimSpace(value) == "" {
				m.status = "Title cannot be empty"
				return m, nil
			}
			m.title = value
			m.mode = modeDetails
			m.status = ""
			m.input.Reset()
			m.input.Placeholder = "Details (optional)"
			return m, nil
		}
		title := m.title
		m.closeForm()
		m.dispatch(todo.Add{Title: title, Details: strings.TrimSpace(value)})
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeForm() {
	m.mode = modeList
	m.title = ""
	m.input.Reset()
	m.input.Blur()
}

// move swaps the selected item with its neighbour on screen.
func (m *Model) move(delta int) {
	e, ok := m.selected()
	target := m.cursor + delta
	if !ok || target < 0 || target >= len(m.entries) {
		return
	}
	m.dispatch(todo.Move(e.Index, m.entries[target].Index))
	m.follow(e.Item.ID)
}

func (m *Model) dispatch(action todo.Action) {
	m.setState(m.svc.Dispatch(action))
}

func (m *Model) setState(state todo.State) {
	m.state = state
	m.entries = todo.DisplayOrder(state.Items)
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// follow puts the cursor on the item with id, if it is still listed.
func (m *Model) follow(id string) {
	for i, e := range m.entries {
		if e.Item.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m Model) selected() (todo.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return todo.Entry{}, false
	}
	return m.entries[m.cursor], true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Todo List"))
	b.WriteString("\n\n")

	if m.state.Error {
		msg := output.BannerMessage
		if m.state.ErrorReason != "" {
			msg += " (" + m.state.ErrorReason + ")"
		}
		b.WriteString(bannerStyle.Render(msg))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("x to dismiss"))
		b.WriteString("\n\n")
	}

	if len(m.entries) == 0 {
		b.WriteString(helpStyle.Render("No tasks yet. Press a to add one."))
		b.WriteString("\n")
	}
	for i, e := range m.entries {
		b.WriteString(m.renderEntry(i, e))
	}

	switch m.mode {
	case modeTitle:
		b.WriteString("\nNew task\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeDetails:
		b.WriteString("\nNew task: " + m.title + "\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	b.WriteString("\n")
	if m.mode == modeList {
		b.WriteString(helpStyle.Render("k/j move · space toggle · K/J reorder · d delete · a add · q quit"))
	} else {
		b.WriteString(helpStyle.Render("enter next · esc cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderEntry(i int, e todo.Entry) string {
	prefix := "  "
	if i == m.cursor && m.mode == modeList {
		prefix = cursorStyle.Render("> ")
	}

	box := "[ ] "
	title := e.Item.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	if e.Item.Done {
		box = "[x] "
		title = doneStyle.Render(title)
	}

	line := prefix + box + title + "\n"
	if details := strings.TrimSpace(e.Item.Details); details != "" {
		line += "      " + detailsStyle.Render(details) + "\n"
	}
	return line
}
