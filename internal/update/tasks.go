package update

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cadence-tools/cadence/internal/model"
)

func (m Model) loadTasksCmd() tea.Cmd {
	st := m.Store
	return func() tea.Msg {
		tasks, err := st.ListTasks(context.Background())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		rows := make([]TaskRow, 0, len(tasks))
		for _, t := range tasks {
			rows = append(rows, taskRow(t))
		}
		return TasksLoadedMsg{Rows: rows}
	}
}

func taskRow(t model.Task) TaskRow {
	return TaskRow{
		ID:     t.ID,
		Text:   t.UnmarkedText(),
		Done:   t.Done(),
		Due:    t.Attr(model.AttrDue),
		Start:  t.Attr(model.AttrStart),
		Defer:  t.Attr(model.AttrDefer),
		Repeat: t.Attr(model.AttrRepeat),
	}
}

func (m Model) addTaskCmd(title string) tea.Cmd {
	st := m.Store
	order := len(m.Rows)
	return func() tea.Msg {
		title = strings.TrimSpace(title)
		if title == "" {
			return SetStatusMsg{Text: "empty task text", IsError: true}
		}
		if _, err := st.CreateTask(context.Background(), "", order, title); err != nil {
			return AppErrorMsg{Err: err}
		}
		return RefreshMsg{}
	}
}

func (m Model) undoCmd() tea.Cmd {
	undo := m.Undo
	return func() tea.Msg {
		payload, ok := undo.Latest()
		if !ok {
			return SetStatusMsg{Text: "nothing to undo", IsError: true}
		}
		if err := undo.Apply(context.Background(), payload.TaskID); err != nil {
			return AppErrorMsg{Err: err}
		}
		return SetStatusMsg{Text: "completion undone"}
	}
}

func (m Model) currentRow() (TaskRow, bool) {
	if len(m.Rows) == 0 || m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return TaskRow{}, false
	}
	return m.Rows[m.Cursor], true
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Rows)-1 {
			m.Cursor++
		}
	case " ", "enter", m.Keys.Toggle:
		if row, ok := m.currentRow(); ok && !row.Done {
			m.emitCompletion(row.ID, model.SourceCheckbox, true)
			m.Status = StatusBar{Text: "completing " + row.Text}
		}
	case m.Keys.Undo:
		return m.undoCmd()
	case m.Keys.Add:
		m.capture = true
		m.quickAddInput.SetValue("")
		m.quickAddInput.Focus()
	case m.Keys.Reload:
		return m.loadTasksCmd()
	}
	return nil
}
