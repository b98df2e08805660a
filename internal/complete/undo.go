package complete

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cadence-tools/cadence/internal/model"
	"github.com/cadence-tools/cadence/internal/store"
)

var ErrNoUndo = errors.New("complete: no pending undo")

// UndoRegistry holds at most one undo payload per task id for a bounded
// window. Apply reverses both the completion and the spawned successor.
type UndoRegistry struct {
	mu      sync.Mutex
	pending map[string]model.UndoPayload

	store  store.Store
	window time.Duration
	clock  func() time.Time
	log    *slog.Logger
}

func NewUndoRegistry(st store.Store, window time.Duration, log *slog.Logger) *UndoRegistry {
	if log == nil {
		log = slog.Default()
	}
	return &UndoRegistry{
		pending: make(map[string]model.UndoPayload),
		store:   st,
		window:  window,
		clock:   time.Now,
		log:     log.With("component", "undo"),
	}
}

// SetClock replaces the time source; tests pin it.
func (u *UndoRegistry) SetClock(clock func() time.Time) {
	u.clock = clock
}

// Register stores the payload, replacing any pending undo for the same
// task.
func (u *UndoRegistry) Register(p model.UndoPayload) {
	p.RegisteredAt = u.clock()
	u.mu.Lock()
	u.pending[p.TaskID] = p
	u.mu.Unlock()
}

// Pending returns the applicable payload for a task, expired entries
// excluded.
func (u *UndoRegistry) Pending(taskID string) (model.UndoPayload, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pruneLocked()
	p, ok := u.pending[taskID]
	return p, ok
}

// Latest returns the most recently registered applicable payload.
func (u *UndoRegistry) Latest() (model.UndoPayload, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pruneLocked()
	var best model.UndoPayload
	found := false
	for _, p := range u.pending {
		if !found || p.RegisteredAt.After(best.RegisteredAt) {
			best, found = p, true
		}
	}
	return best, found
}

func (u *UndoRegistry) pruneLocked() {
	if u.window <= 0 {
		return
	}
	now := u.clock()
	for id, p := range u.pending {
		if now.Sub(p.RegisteredAt) > u.window {
			delete(u.pending, id)
		}
	}
}

// Apply reverses a completion: the entry is deleted first so a second apply
// is a clean no-op, then the task is moved back if it was relocated, its
// text and properties restored, every recognized attribute reset to its
// exact prior value, and the spawned successor deleted.
func (u *UndoRegistry) Apply(ctx context.Context, taskID string) error {
	u.mu.Lock()
	u.pruneLocked()
	p, ok := u.pending[taskID]
	if ok {
		delete(u.pending, taskID)
	}
	u.mu.Unlock()
	if !ok {
		return ErrNoUndo
	}
	return u.apply(ctx, p)
}

func (u *UndoRegistry) apply(ctx context.Context, p model.UndoPayload) error {
	current, err := u.store.GetTask(ctx, p.TaskID)
	if err != nil {
		return fmt.Errorf("load task for undo: %w", err)
	}

	// Move first so downstream watchers see the restore at the original
	// location.
	if current.ParentID != p.ParentID || current.Order != p.Order {
		if err := u.store.MoveTask(ctx, p.TaskID, p.ParentID, p.Order); err != nil {
			return fmt.Errorf("move task back: %w", err)
		}
	}

	if err := u.store.UpdateTaskText(ctx, p.TaskID, p.Text); err != nil {
		return fmt.Errorf("restore text: %w", err)
	}

	patch := make(map[string]string, len(current.Props)+len(p.Props))
	for k := range current.Props {
		patch[k] = ""
	}
	for k, v := range p.Props {
		patch[k] = v
	}
	if len(patch) > 0 {
		if err := u.store.UpdateTaskProperties(ctx, p.TaskID, patch); err != nil {
			return fmt.Errorf("restore properties: %w", err)
		}
	}

	for _, kind := range model.AttrKinds {
		prior, had := p.Attrs[kind]
		if had {
			if err := u.store.EnsureScheduledAttribute(ctx, p.TaskID, kind, prior); err != nil {
				return fmt.Errorf("restore %s: %w", kind, err)
			}
			continue
		}
		if err := u.store.RemoveScheduledAttribute(ctx, p.TaskID, kind); err != nil {
			return fmt.Errorf("clear %s: %w", kind, err)
		}
	}

	if p.SuccessorID != "" {
		if err := u.store.DeleteTask(ctx, p.SuccessorID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete successor: %w", err)
		}
	}
	u.log.Info("completion undone", "task", p.TaskID, "successor", p.SuccessorID)
	return nil
}
