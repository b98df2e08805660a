package complete

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cadence-tools/cadence/internal/dates"
	"github.com/cadence-tools/cadence/internal/model"
	"github.com/cadence-tools/cadence/internal/rule"
	"github.com/cadence-tools/cadence/internal/store"
)

var (
	ErrParseFailure = errors.New("complete: could not parse recurrence")
	ErrNoNextDate   = errors.New("complete: could not compute next date")
)

// Workflow runs the completion pipeline for one task at a time per task id:
// detect, deduplicate, load metadata, resolve advance mode, mark, compute
// the next date, spawn the successor, register undo. Early exits: skipped
// (duplicate or suppressed signal) and reverted (user cancelled).
type Workflow struct {
	store   store.Store
	confirm Confirmer
	notify  Notifier
	undo    *UndoRegistry
	cfg     Config
	log     *slog.Logger
	clock   func() time.Time

	mu          sync.Mutex
	inFlight    map[string]bool
	navigatedAt time.Time
	lastClick   map[string]time.Time
}

func NewWorkflow(st store.Store, confirm Confirmer, notify Notifier, undo *UndoRegistry, cfg Config, log *slog.Logger) *Workflow {
	if log == nil {
		log = slog.Default()
	}
	return &Workflow{
		store:     st,
		confirm:   confirm,
		notify:    notify,
		undo:      undo,
		cfg:       cfg,
		log:       log.With("component", "workflow"),
		clock:     time.Now,
		inFlight:  make(map[string]bool),
		lastClick: make(map[string]time.Time),
	}
}

// SetClock replaces the time source; tests pin it.
func (w *Workflow) SetClock(clock func() time.Time) {
	w.clock = clock
}

// NoteNavigation opens the navigation grace window: non-user signals within
// it are suppressed.
func (w *Workflow) NoteNavigation() {
	w.mu.Lock()
	w.navigatedAt = w.clock()
	w.mu.Unlock()
}

// NoteUserClick records a direct interaction with a task. A non-user
// signal arriving shortly after (the surface re-reporting the click) may
// bypass the navigation grace, but never the processed-marker guard.
func (w *Workflow) NoteUserClick(taskID string) {
	w.mu.Lock()
	w.lastClick[taskID] = w.clock()
	w.mu.Unlock()
}

// Complete runs one completion attempt. The returned error is non-nil only
// for store I/O and computation failures; guard skips and user cancels are
// reported through Outcome.State.
func (w *Workflow) Complete(ctx context.Context, taskID string, opts Options) (Outcome, error) {
	if skip, reason := w.acquire(taskID, opts); skip {
		w.log.Debug("completion skipped", "task", taskID, "reason", reason)
		return Outcome{State: StateSkipped, Reason: reason}, nil
	}
	defer w.release(taskID)

	task, err := w.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Outcome{State: StateSkipped, Reason: "task gone"}, nil
		}
		return Outcome{State: StateFailed}, fmt.Errorf("load task: %w", err)
	}
	meta := model.MetaFromTask(task, w.clock().Location())

	if skip, reason := w.metaGuards(meta, opts); skip {
		w.log.Debug("completion skipped", "task", taskID, "reason", reason)
		return Outcome{State: StateSkipped, Reason: reason}, nil
	}
	if !meta.Scheduled() && !meta.Recurring() {
		return Outcome{State: StateSkipped, Reason: "not a scheduled task"}, nil
	}

	if !meta.Recurring() {
		return w.completeOneOff(ctx, task)
	}
	return w.completeRecurring(ctx, task, meta, opts)
}

// acquire applies the first dedup guard tier under the lock: an attempt
// already mid-flight, or a non-user signal inside the navigation grace.
func (w *Workflow) acquire(taskID string, opts Options) (skip bool, reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[taskID] {
		return true, "already processing"
	}
	now := w.clock()
	if !opts.UserInitiated && !w.navigatedAt.IsZero() && now.Sub(w.navigatedAt) < w.cfg.NavigationGrace {
		if click, ok := w.lastClick[taskID]; !ok || now.Sub(click) > w.cfg.ClickBypassWindow {
			return true, "navigation grace"
		}
	}
	w.inFlight[taskID] = true
	return false, ""
}

func (w *Workflow) release(taskID string) {
	w.mu.Lock()
	delete(w.inFlight, taskID)
	w.mu.Unlock()
}

// metaGuards applies the marker-based guards. The processed-marker guard
// applies to every signal, user-initiated or not, so redundant UI signals
// can never double-fire a completion.
func (w *Workflow) metaGuards(meta model.TaskMeta, opts Options) (skip bool, reason string) {
	now := w.clock()
	if meta.ProcessedAt != nil && now.Sub(*meta.ProcessedAt) < w.cfg.ProcessedWindow {
		return true, "recently processed"
	}
	if !opts.UserInitiated && meta.CompletedAt != nil && now.Sub(*meta.CompletedAt) < w.cfg.CompletedStaleAfter {
		return true, "already completed"
	}
	return false, ""
}

// completeOneOff marks a dated, non-recurring task done. Exactly one
// completed marker is written and no successor is created.
func (w *Workflow) completeOneOff(ctx context.Context, task model.Task) (Outcome, error) {
	snapshot := model.Snapshot(task)
	if err := w.mark(ctx, task); err != nil {
		w.revertMark(ctx, task)
		w.notify.Notify("could not complete task")
		return Outcome{State: StateFailed}, err
	}
	w.registerUndo(snapshot, fmt.Sprintf("Completed %q", trim(task.UnmarkedText())))
	return Outcome{State: StateCompleted}, nil
}

func (w *Workflow) completeRecurring(ctx context.Context, task model.Task, meta model.TaskMeta, opts Options) (Outcome, error) {
	ruleOpts := rule.Options{WeekStart: w.cfg.WeekStart}
	r, ok := rule.Parse(meta.RepeatText, ruleOpts)
	if !ok {
		w.notify.Notify(fmt.Sprintf("could not parse recurrence %q", meta.RepeatText))
		return Outcome{State: StateFailed, Reason: "parse failure"}, ErrParseFailure
	}

	if w.cfg.ConfirmBeforeSpawn && !opts.Bulk {
		proceed, err := w.confirm.Confirm(ctx, fmt.Sprintf("Complete %q and schedule the next occurrence?", trim(task.UnmarkedText())))
		if err != nil {
			return Outcome{State: StateFailed}, fmt.Errorf("confirm: %w", err)
		}
		if !proceed {
			return w.revertCancelled(ctx, task)
		}
	}

	mode, outcome, done, err := w.resolveAdvanceMode(ctx, task, meta, r, opts, ruleOpts)
	if done {
		return outcome, err
	}

	snapshot := model.Snapshot(task)
	now := w.clock()

	if err := w.mark(ctx, task); err != nil {
		w.revertMark(ctx, task)
		w.notify.Notify("could not complete task")
		return Outcome{State: StateFailed}, err
	}

	next, ok := rule.Next(r, rule.NextInput{Due: meta.Due, AdvanceFrom: mode}, now, ruleOpts)
	if !ok {
		// Fatal for this attempt: undo the marking so the task is intact.
		w.revertMark(ctx, task)
		w.notify.Notify("could not compute next date")
		return Outcome{State: StateFailed, Reason: "no next date"}, ErrNoNextDate
	}

	successorID, err := w.spawnSuccessor(ctx, task, meta, mode, next)
	if err != nil {
		// The completion marker stays; only the in-progress state is
		// cleared (by release) so the next signal can retry the spawn.
		w.notify.Notify("could not create successor task")
		return Outcome{State: StateFailed}, fmt.Errorf("spawn successor: %w", err)
	}

	snapshot.SuccessorID = successorID
	snapshot.NewDue = &next
	w.registerUndo(snapshot, fmt.Sprintf("Completed %q. Next: %s", trim(task.UnmarkedText()), dates.FormatDate(next)))
	return Outcome{State: StateSpawned, SuccessorID: successorID, NextDue: &next}, nil
}

// resolveAdvanceMode returns the advance mode for this series, prompting
// once and persisting the answer on the task. done=true means the pipeline
// already has its outcome (user cancelled or prompt failed).
func (w *Workflow) resolveAdvanceMode(ctx context.Context, task model.Task, meta model.TaskMeta, r rule.Rule, opts Options, ruleOpts rule.Options) (rule.AdvanceMode, Outcome, bool, error) {
	if meta.AdvanceFrom != "" {
		return meta.AdvanceFrom, Outcome{}, false, nil
	}
	if opts.Bulk {
		return w.cfg.BulkAdvanceDefault, Outcome{}, false, nil
	}
	preview := w.advancePreview(r, meta, ruleOpts)
	mode, ok, err := w.confirm.ChooseAdvanceMode(ctx, preview)
	if err != nil {
		return "", Outcome{State: StateFailed}, true, fmt.Errorf("choose advance mode: %w", err)
	}
	if !ok {
		outcome, revertErr := w.revertCancelled(ctx, task)
		return "", outcome, true, revertErr
	}
	if err := w.store.EnsureScheduledAttribute(ctx, task.ID, model.AttrAdvanceFrom, string(mode)); err != nil {
		w.log.Warn("persist advance mode", "task", task.ID, "error", err)
	}
	return mode, Outcome{}, false, nil
}

// advancePreview renders both candidate next dates so the prompt can show
// what each choice means.
func (w *Workflow) advancePreview(r rule.Rule, meta model.TaskMeta, ruleOpts rule.Options) string {
	now := w.clock()
	fromDue, okDue := rule.Next(r, rule.NextInput{Due: meta.Due, AdvanceFrom: rule.AdvanceFromDue}, now, ruleOpts)
	fromDone, okDone := rule.Next(r, rule.NextInput{Due: meta.Due, AdvanceFrom: rule.AdvanceFromCompletion}, now, ruleOpts)
	due, done := "unknown", "unknown"
	if okDue {
		due = dates.FormatDate(fromDue)
	}
	if okDone {
		done = dates.FormatDate(fromDone)
	}
	return fmt.Sprintf("from due date: %s, from completion date: %s", due, done)
}

// mark writes the completion: timestamped markers first, then the visible
// text, so a partial failure is detectable and reversible.
func (w *Workflow) mark(ctx context.Context, task model.Task) error {
	now := w.clock().Format(time.RFC3339Nano)
	if err := w.store.EnsureScheduledAttribute(ctx, task.ID, model.AttrCompleted, now); err != nil {
		return fmt.Errorf("write completed marker: %w", err)
	}
	if err := w.store.EnsureScheduledAttribute(ctx, task.ID, model.AttrProcessed, now); err != nil {
		return fmt.Errorf("write processed marker: %w", err)
	}
	if err := w.store.UpdateTaskText(ctx, task.ID, task.MarkedText()); err != nil {
		return fmt.Errorf("mark text: %w", err)
	}
	return nil
}

// revertMark undoes a partial or unwanted marking, restoring the task to
// its pre-completion state. Best effort: failures are logged, not returned,
// since the caller is already on an error path.
func (w *Workflow) revertMark(ctx context.Context, task model.Task) {
	if err := w.store.UpdateTaskText(ctx, task.ID, task.Text); err != nil {
		w.log.Warn("revert text", "task", task.ID, "error", err)
	}
	for _, kind := range []model.AttrKind{model.AttrCompleted, model.AttrProcessed} {
		if prior, had := task.Attrs[kind]; had {
			if err := w.store.EnsureScheduledAttribute(ctx, task.ID, kind, prior); err != nil {
				w.log.Warn("restore attr", "task", task.ID, "kind", kind, "error", err)
			}
			continue
		}
		if err := w.store.RemoveScheduledAttribute(ctx, task.ID, kind); err != nil {
			w.log.Warn("remove attr", "task", task.ID, "kind", kind, "error", err)
		}
	}
}

// revertCancelled handles the user declining a prompt: the task returns to
// its pre-completion text and no mutation persists.
func (w *Workflow) revertCancelled(ctx context.Context, task model.Task) (Outcome, error) {
	if err := w.store.UpdateTaskText(ctx, task.ID, task.Text); err != nil {
		return Outcome{State: StateFailed}, fmt.Errorf("revert cancelled completion: %w", err)
	}
	w.notify.Notify("completion cancelled")
	return Outcome{State: StateReverted}, nil
}

// spawnSuccessor creates the next occurrence's task: same text and rule,
// dates advanced, start/defer offsets relative to the old due date carried
// additively onto the new due date, series id propagated.
func (w *Workflow) spawnSuccessor(ctx context.Context, task model.Task, meta model.TaskMeta, mode rule.AdvanceMode, next time.Time) (string, error) {
	seriesID := meta.SeriesID
	if seriesID == "" {
		seriesID = model.NewSeriesID()
		if err := w.store.EnsureScheduledAttribute(ctx, task.ID, model.AttrSeries, seriesID); err != nil {
			return "", fmt.Errorf("assign series id: %w", err)
		}
	}

	successorID, err := w.store.CreateTask(ctx, task.ParentID, task.Order+1, task.UnmarkedText())
	if err != nil {
		return "", err
	}
	if _, err := store.FetchVisible(ctx, w.store, successorID); err != nil {
		return "", fmt.Errorf("successor not visible: %w", err)
	}

	attrs := map[model.AttrKind]string{
		model.AttrRepeat:      meta.RepeatText,
		model.AttrDue:         dates.FormatDate(next),
		model.AttrSeries:      seriesID,
		model.AttrAdvanceFrom: string(mode),
	}
	if meta.ParentSeriesID != "" {
		attrs[model.AttrParentSeries] = meta.ParentSeriesID
	}
	if meta.Due != nil {
		if meta.Start != nil {
			offset := daysBetween(*meta.Due, *meta.Start)
			attrs[model.AttrStart] = dates.FormatDate(next.AddDate(0, 0, offset))
		}
		if meta.Defer != nil {
			offset := daysBetween(*meta.Due, *meta.Defer)
			attrs[model.AttrDefer] = dates.FormatDate(next.AddDate(0, 0, offset))
		}
	}
	for _, kind := range model.AttrKinds {
		value, ok := attrs[kind]
		if !ok {
			continue
		}
		if err := w.store.EnsureScheduledAttribute(ctx, successorID, kind, value); err != nil {
			return "", fmt.Errorf("write successor %s: %w", kind, err)
		}
	}
	return successorID, nil
}

func (w *Workflow) registerUndo(snapshot model.UndoPayload, message string) {
	if w.undo == nil {
		w.notify.Notify(message)
		return
	}
	w.undo.Register(snapshot)
	taskID := snapshot.TaskID
	w.notify.NotifyUndoable(message, func() {
		if err := w.undo.Apply(context.Background(), taskID); err != nil {
			w.log.Warn("undo failed", "task", taskID, "error", err)
			w.notify.Notify("could not undo completion")
		}
	})
}

// daysBetween counts whole calendar days from a to b, negative when b is
// earlier. The count comes from the calendar dates, not elapsed wall-clock
// time, so a DST transition inside the span cannot shift it.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func trim(s string) string {
	const max = 40
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
