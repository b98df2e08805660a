package update

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cadence-tools/cadence/internal/complete"
	"github.com/cadence-tools/cadence/internal/model"
	"github.com/cadence-tools/cadence/internal/rule"
)

// The TUI is one of several possible signal surfaces. Every raw interaction
// funnels through emitCompletion, which normalizes it into a
// CompletionEvent and hands it to the coalescing queue; the workflow itself
// never learns what kind of signal fired.

func (m *Model) emitCompletion(taskID string, source model.SignalSource, userInitiated bool) {
	ev := model.CompletionEvent{
		TaskID:        taskID,
		DetectedAt:    time.Now(),
		UserInitiated: userInitiated,
		Source:        source,
	}
	if ev.UserInitiated {
		m.Workflow.NoteUserClick(ev.TaskID)
	}
	if err := m.Queue.Enqueue(ev.TaskID, complete.Options{UserInitiated: ev.UserInitiated}); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	}
}

// ProgramConfirmer implements complete.Confirmer by parking the workflow
// goroutine on a channel while the TUI shows a modal.
type ProgramConfirmer struct {
	send func(tea.Msg)
}

func NewProgramConfirmer(send func(tea.Msg)) *ProgramConfirmer {
	return &ProgramConfirmer{send: send}
}

func (c *ProgramConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	respond := make(chan confirmAnswer, 1)
	c.send(ConfirmRequestMsg{Kind: ConfirmYesNo, Question: question, Respond: respond})
	select {
	case ans := <-respond:
		return ans.yes, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (c *ProgramConfirmer) ChooseAdvanceMode(ctx context.Context, preview string) (rule.AdvanceMode, bool, error) {
	respond := make(chan confirmAnswer, 1)
	c.send(ConfirmRequestMsg{Kind: ConfirmAdvance, Question: preview, Respond: respond})
	select {
	case ans := <-respond:
		return ans.mode, ans.ok, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// ProgramNotifier implements complete.Notifier over program messages. The
// undo callback is not invoked from here; the TUI binds its own undo key
// against the registry, so the notification only advertises it.
type ProgramNotifier struct {
	send func(tea.Msg)
}

func NewProgramNotifier(send func(tea.Msg)) *ProgramNotifier {
	return &ProgramNotifier{send: send}
}

func (n *ProgramNotifier) Notify(message string) {
	n.send(SetStatusMsg{Text: message})
}

func (n *ProgramNotifier) NotifyUndoable(message string, _ func()) {
	n.send(UndoableStatusMsg{Text: message})
}
