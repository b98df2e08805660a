package views

import (
	"fmt"
	"strings"
)

type TaskLineData struct {
	ID     string
	Title  string
	Done   bool
	Due    string
	Repeat string
}

type TaskListData struct {
	Items      []TaskLineData
	SelectedID string
	QuickAdd   string
	Capturing  bool
}

type MetadataData struct {
	SelectedID string
	Title      string
	Due        string
	Start      string
	Defer      string
	Repeat     string
	Preview    []string
}

type ConfirmData struct {
	Question string
	Choices  string
}

type HelpData struct {
	Bindings []string
}

func RenderTaskList(data TaskListData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	if data.Capturing {
		b.WriteString("add: " + data.QuickAdd + "\n")
	}
	if len(data.Items) == 0 {
		b.WriteString("(no tasks)")
		return strings.TrimSpace(b.String())
	}
	for _, item := range data.Items {
		box := "[ ]"
		if item.Done {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, item.Title)
		if item.Due != "" {
			line += "  due:" + item.Due
		}
		if item.Repeat != "" {
			line += "  repeat:" + item.Repeat
		}
		if item.Done {
			line = doneStyle.Render(line)
		}
		if item.ID == data.SelectedID {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderMetadataPane(data MetadataData) string {
	if data.SelectedID == "" {
		return "metadata:\n(nothing selected)"
	}
	var b strings.Builder
	b.WriteString("metadata:\n")
	b.WriteString("task: " + data.Title + "\n")
	if data.Due != "" {
		b.WriteString("due: " + data.Due + "\n")
	}
	if data.Start != "" {
		b.WriteString("start: " + data.Start + "\n")
	}
	if data.Defer != "" {
		b.WriteString("defer: " + data.Defer + "\n")
	}
	if data.Repeat != "" {
		b.WriteString("repeats: " + data.Repeat + "\n")
	}
	if len(data.Preview) > 0 {
		b.WriteString("upcoming:\n")
		for _, p := range data.Preview {
			b.WriteString("  " + p + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderConfirmModal(data ConfirmData) string {
	var b strings.Builder
	b.WriteString("confirm:\n")
	b.WriteString(data.Question + "\n")
	b.WriteString(data.Choices)
	return strings.TrimSpace(b.String())
}

func RenderHelp(data HelpData) string {
	var b strings.Builder
	b.WriteString("# Keys\n\n")
	for _, binding := range data.Bindings {
		b.WriteString("- " + binding + "\n")
	}
	return RenderMarkdown(b.String())
}
