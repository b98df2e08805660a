package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cadence-tools/cadence/internal/rule"
)

// handleConfirmKey routes keys while a modal is up. The answer is pushed
// onto the respond channel exactly once; the modal is dismissed either way.
func (m *Model) handleConfirmKey(msg tea.KeyMsg) {
	switch m.Confirm.Kind {
	case ConfirmYesNo:
		switch msg.String() {
		case "y", "Y", "enter":
			m.answerConfirm(confirmAnswer{yes: true})
		case "n", "N", "esc":
			m.answerConfirm(confirmAnswer{yes: false})
		}
	case ConfirmAdvance:
		switch msg.String() {
		case "d", "D":
			m.answerConfirm(confirmAnswer{mode: rule.AdvanceFromDue, ok: true})
		case "c", "C":
			m.answerConfirm(confirmAnswer{mode: rule.AdvanceFromCompletion, ok: true})
		case "esc":
			m.answerConfirm(confirmAnswer{ok: false})
		}
	}
}

func (m *Model) answerConfirm(ans confirmAnswer) {
	if m.Confirm.respond != nil {
		m.Confirm.respond <- ans
	}
	m.Confirm = ConfirmState{}
}
