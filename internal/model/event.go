package model

import (
	"time"

	"github.com/google/uuid"
)

// SignalSource names the UI signal a completion event was normalized from.
// The completion workflow never inspects the source beyond logging; all
// signals converge on the same CompletionEvent shape.
type SignalSource string

const (
	SourceCheckbox SignalSource = "checkbox"
	SourceKeyboard SignalSource = "keyboard"
	SourceMutation SignalSource = "mutation"
	SourcePoll     SignalSource = "poll"
)

// CompletionEvent is one detected "task went done" transition. Events are
// consumed exactly once by the completion queue and then discarded.
type CompletionEvent struct {
	TaskID        string
	DetectedAt    time.Time
	UserInitiated bool
	Source        SignalSource
}

// UndoPayload captures the full pre-mutation snapshot of a task plus the
// post-mutation outcome, enough to reverse both the completion and the
// spawned successor atomically. Owned solely by the undo registry.
type UndoPayload struct {
	TaskID       string
	Text         string
	Props        map[string]string
	Attrs        map[AttrKind]string
	ParentID     string
	Order        int
	SuccessorID  string
	NewDue       *time.Time
	RegisteredAt time.Time
}

// Snapshot builds an undo payload from a task's current state.
func Snapshot(t Task) UndoPayload {
	return UndoPayload{
		TaskID:   t.ID,
		Text:     t.Text,
		Props:    t.CloneProps(),
		Attrs:    t.CloneAttrs(),
		ParentID: t.ParentID,
		Order:    t.Order,
	}
}

// NewSeriesID mints the opaque identifier shared by a task and its
// successors. Assigned on first completion, propagated forward, and never
// used for scheduling decisions.
func NewSeriesID() string {
	return uuid.NewString()
}

// NewTaskID mints a task identifier.
func NewTaskID() string {
	return uuid.NewString()
}
