// Package complete drives the task-completion lifecycle: deduplicating
// detection signals, marking tasks done, computing the next occurrence of
// recurring tasks, spawning successors, and registering undo.
package complete

import (
	"context"
	"time"

	"github.com/cadence-tools/cadence/internal/rule"
)

// Confirmer is the prompt surface the workflow asks before destructive or
// ambiguous steps. Implementations: the TUI modal, a terminal form, test
// fakes.
type Confirmer interface {
	// Confirm asks a yes/no question. false cancels the completion.
	Confirm(ctx context.Context, question string) (bool, error)

	// ChooseAdvanceMode asks whether the series advances from the due date
	// or the completion date. ok=false means the user cancelled.
	ChooseAdvanceMode(ctx context.Context, preview string) (mode rule.AdvanceMode, ok bool, err error)
}

// Notifier is the notification surface for short user-facing messages.
type Notifier interface {
	Notify(message string)
	NotifyUndoable(message string, onUndo func())
}

// NopNotifier discards notifications; used by bulk CLI paths and tests.
type NopNotifier struct{}

func (NopNotifier) Notify(string)                 {}
func (NopNotifier) NotifyUndoable(string, func()) {}

// Config carries the workflow's tunable windows and policies.
type Config struct {
	WeekStart time.Weekday

	// ConfirmBeforeSpawn asks before completing a recurring task and
	// spawning its successor. Bulk operations never prompt.
	ConfirmBeforeSpawn bool

	// NavigationGrace suppresses non-user signals for a short window after
	// a navigation, so page-load churn is not misread as completions.
	NavigationGrace time.Duration

	// ProcessedWindow treats a fresh processed marker as a duplicate
	// signal.
	ProcessedWindow time.Duration

	// CompletedStaleAfter is how old a completed marker must be before a
	// non-user signal may re-process the task.
	CompletedStaleAfter time.Duration

	// UndoWindow bounds how long a registered undo stays applicable.
	UndoWindow time.Duration

	// BulkAdvanceDefault is the advance mode bulk completions use instead
	// of prompting.
	BulkAdvanceDefault rule.AdvanceMode

	// ClickBypassWindow is how recently a user pointer signal must have
	// been recorded for a non-user signal to bypass the navigation grace.
	ClickBypassWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		WeekStart:           time.Monday,
		ConfirmBeforeSpawn:  false,
		NavigationGrace:     3 * time.Second,
		ProcessedWindow:     10 * time.Second,
		CompletedStaleAfter: time.Hour,
		UndoWindow:          30 * time.Second,
		BulkAdvanceDefault:  rule.AdvanceFromDue,
		ClickBypassWindow:   2 * time.Second,
	}
}

// Options qualifies one completion attempt. The queue coalesces options per
// task id with last write wins.
type Options struct {
	UserInitiated bool
	Bulk          bool
}

// State is the terminal state of one completion attempt.
type State string

const (
	// StateSkipped means a dedup guard stopped the attempt; not an error.
	StateSkipped State = "skipped"
	// StateReverted means the user cancelled and the task was restored.
	StateReverted State = "reverted"
	// StateCompleted means a one-off task was marked done, no successor.
	StateCompleted State = "completed"
	// StateSpawned means a recurring task was completed and its successor
	// created.
	StateSpawned State = "spawned"
	// StateFailed means the attempt stopped on an error after reporting it.
	StateFailed State = "failed"
)

// Outcome reports what one completion attempt did.
type Outcome struct {
	State       State
	Reason      string
	SuccessorID string
	NextDue     *time.Time
}
