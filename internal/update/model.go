package update

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cadence-tools/cadence/internal/complete"
	"github.com/cadence-tools/cadence/internal/config"
	"github.com/cadence-tools/cadence/internal/rule"
	"github.com/cadence-tools/cadence/internal/store"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Toggle string
	Add    string
	Undo   string
	Reload string
	Help   string
	Quit   string
}

// TaskRow is one rendered task line.
type TaskRow struct {
	ID     string
	Text   string
	Done   bool
	Due    string
	Start  string
	Defer  string
	Repeat string
}

// ConfirmKind selects which modal is showing.
type ConfirmKind string

const (
	ConfirmYesNo   ConfirmKind = "yesno"
	ConfirmAdvance ConfirmKind = "advance"
)

// confirmAnswer travels back from the modal to the blocked workflow
// goroutine.
type confirmAnswer struct {
	yes  bool
	mode rule.AdvanceMode
	ok   bool
}

// ConfirmState is the active modal, if any. The respond channel unblocks
// the workflow goroutine waiting on the prompt.
type ConfirmState struct {
	Active   bool
	Kind     ConfirmKind
	Question string
	respond  chan confirmAnswer
}

type Model struct {
	Store    store.Store
	Queue    *complete.Queue
	Workflow *complete.Workflow
	Undo     *complete.UndoRegistry
	Cfg      config.Config

	Rows        []TaskRow
	Cursor      int
	Status      StatusBar
	Confirm     ConfirmState
	HelpVisible bool
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	quickAddInput textinput.Model
	capture       bool
	loadSpinner   spinner.Model
	loading       bool
}

type TasksLoadedMsg struct {
	Rows []TaskRow
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type UndoableStatusMsg struct {
	Text string
}

type AppErrorMsg struct {
	Err error
}

// ConfirmRequestMsg arrives from the workflow goroutine when a prompt is
// needed; the TUI shows the modal and answers through Respond.
type ConfirmRequestMsg struct {
	Kind     ConfirmKind
	Question string
	Respond  chan confirmAnswer
}

// RefreshMsg asks the model to reload tasks from the store.
type RefreshMsg struct{}

func NewModel(st store.Store, q *complete.Queue, wf *complete.Workflow, undo *complete.UndoRegistry, cfg config.Config) Model {
	input := textinput.New()
	input.Placeholder = "task text"
	input.CharLimit = 200

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	return Model{
		Store:    st,
		Queue:    q,
		Workflow: wf,
		Undo:     undo,
		Cfg:      cfg,
		Keys: GlobalKeyMap{
			Toggle: "x",
			Add:    "a",
			Undo:   "u",
			Reload: "r",
			Help:   "?",
			Quit:   "q",
		},
		quickAddInput: input,
		loadSpinner:   spin,
	}
}

// statusExpiry clears transient status lines.
const statusExpiry = 5 * time.Second

type clearStatusMsg struct{}

func clearStatusAfter() tea.Cmd {
	return tea.Tick(statusExpiry, func(time.Time) tea.Msg { return clearStatusMsg{} })
}
