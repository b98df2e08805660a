package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cadence-tools/cadence/internal/dates"
	"github.com/cadence-tools/cadence/internal/rule"
	"github.com/cadence-tools/cadence/internal/views"
)

func (m Model) Init() tea.Cmd {
	m.Workflow.NoteNavigation()
	return tea.Batch(m.loadTasksCmd(), m.loadSpinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		keyStr := typed.String()
		if keyStr == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}

		if m.Confirm.Active {
			m.handleConfirmKey(typed)
			return m, nil
		}

		if m.capture {
			switch keyStr {
			case "enter":
				title := m.quickAddInput.Value()
				m.capture = false
				m.quickAddInput.Blur()
				return m, m.addTaskCmd(title)
			case "esc":
				m.capture = false
				m.quickAddInput.Blur()
				return m, nil
			default:
				var cmd tea.Cmd
				m.quickAddInput, cmd = m.quickAddInput.Update(typed)
				return m, cmd
			}
		}

		switch keyStr {
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		return m, m.handleListKey(typed)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.loadSpinner, cmd = m.loadSpinner.Update(typed)
			return m, cmd
		}
		return m, nil

	case TasksLoadedMsg:
		m.Rows = typed.Rows
		m.loading = false
		if m.Cursor >= len(m.Rows) {
			m.Cursor = len(m.Rows) - 1
		}
		if m.Cursor < 0 {
			m.Cursor = 0
		}
		return m, nil

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, tea.Batch(m.loadTasksCmd(), clearStatusAfter())

	case UndoableStatusMsg:
		m.Status = StatusBar{Text: typed.Text + " (u to undo)"}
		return m, tea.Batch(m.loadTasksCmd(), clearStatusAfter())

	case AppErrorMsg:
		m.LastError = typed.Err
		m.loading = false
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil

	case ConfirmRequestMsg:
		m.Confirm = ConfirmState{
			Active:   true,
			Kind:     typed.Kind,
			Question: typed.Question,
			respond:  typed.Respond,
		}
		return m, nil

	case RefreshMsg:
		m.loading = true
		return m, tea.Batch(m.loadTasksCmd(), m.loadSpinner.Tick)

	case clearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	status := m.Status.Text
	if m.loading {
		status = strings.TrimSpace(status + " " + m.loadSpinner.View() + " loading")
	}

	selectedID := ""
	if row, ok := m.currentRow(); ok {
		selectedID = row.ID
	}

	listPane := views.RenderTaskList(views.TaskListData{
		Items:      taskLines(m.Rows),
		SelectedID: selectedID,
		QuickAdd:   m.quickAddInput.View(),
		Capturing:  m.capture,
	})

	detailPane := m.renderDetailPane()
	if m.Confirm.Active {
		detailPane = views.RenderConfirmModal(views.ConfirmData{
			Question: m.Confirm.Question,
			Choices:  confirmChoices(m.Confirm.Kind),
		})
	}
	if m.HelpVisible {
		detailPane = views.RenderHelp(views.HelpData{Bindings: []string{
			fmt.Sprintf("`%s` complete task", m.Keys.Toggle),
			fmt.Sprintf("`%s` add task", m.Keys.Add),
			fmt.Sprintf("`%s` undo last completion", m.Keys.Undo),
			fmt.Sprintf("`%s` reload", m.Keys.Reload),
			"`j/k` move",
			fmt.Sprintf("`%s` quit", m.Keys.Quit),
		}})
	}

	return views.RenderApp(views.AppData{
		Header:        fmt.Sprintf("cadence | %d tasks", len(m.Rows)),
		ListPane:      listPane,
		DetailPane:    detailPane,
		StatusLine:    status,
		StatusIsError: m.Status.IsError,
		Footer: fmt.Sprintf("keys: %s done | %s add | %s undo | %s reload | %s help | %s quit",
			m.Keys.Toggle, m.Keys.Add, m.Keys.Undo, m.Keys.Reload, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderDetailPane() string {
	row, ok := m.currentRow()
	if !ok {
		return views.RenderMetadataPane(views.MetadataData{})
	}
	return views.RenderMetadataPane(views.MetadataData{
		SelectedID: row.ID,
		Title:      row.Text,
		Due:        row.Due,
		Start:      row.Start,
		Defer:      row.Defer,
		Repeat:     row.Repeat,
		Preview:    m.rulePreview(row),
	})
}

// rulePreview shows the next few occurrences for a recurring row, or
// nothing when the repeat text does not parse.
func (m Model) rulePreview(row TaskRow) []string {
	if row.Repeat == "" {
		return nil
	}
	opts := rule.Options{WeekStart: m.Cfg.WeekStart}
	r, ok := rule.Parse(row.Repeat, opts)
	if !ok {
		return []string{"unparsed: " + row.Repeat}
	}
	from := dates.Noon(time.Now())
	if due, ok := dates.ParseDate(row.Due, time.Local); ok {
		from = due
	}
	nexts := r.Preview(from, 3, opts)
	out := make([]string, 0, len(nexts))
	for _, n := range nexts {
		out = append(out, dates.FormatDate(n))
	}
	return out
}

func taskLines(rows []TaskRow) []views.TaskLineData {
	lines := make([]views.TaskLineData, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, views.TaskLineData{
			ID:     row.ID,
			Title:  row.Text,
			Done:   row.Done,
			Due:    row.Due,
			Repeat: row.Repeat,
		})
	}
	return lines
}

func confirmChoices(kind ConfirmKind) string {
	switch kind {
	case ConfirmAdvance:
		return "[d] from due date  [c] from completion  [esc] cancel"
	default:
		return "[y] yes  [n] no"
	}
}
