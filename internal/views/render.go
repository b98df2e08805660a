package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const (
	listPaneWidth   = 58
	detailPaneWidth = 50
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	paneStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	statusOKStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusBadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle      = lipgloss.NewStyle().Faint(true)
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	doneStyle      = lipgloss.NewStyle().Faint(true).Strikethrough(true)
)

// AppData is the full frame: header, the two panes, and the transient
// lines below them. Sections with no content are dropped from the frame.
type AppData struct {
	Header        string
	ListPane      string
	DetailPane    string
	StatusLine    string
	StatusIsError bool
	Footer        string
	Notification  string
}

func RenderApp(data AppData) string {
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Width(listPaneWidth).Render(data.ListPane),
		paneStyle.Width(detailPaneWidth).Render(data.DetailPane),
	)

	sections := []string{titleStyle.Render(data.Header), panes}
	if data.StatusLine != "" {
		style := statusOKStyle
		if data.StatusIsError {
			style = statusBadStyle
		}
		sections = append(sections, style.Render(data.StatusLine))
	}
	if data.Notification != "" {
		sections = append(sections, paneStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		sections = append(sections, hintStyle.Render(data.Footer))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
