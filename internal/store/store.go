// Package store defines the document store contract the completion
// workflow runs against, plus a SQLite implementation. The core never
// assumes read-after-write visibility; FetchVisible wraps reads of
// just-created tasks in a bounded retry.
package store

import (
	"context"
	"errors"

	"github.com/cadence-tools/cadence/internal/model"
)

var ErrNotFound = errors.New("store: not found")

// Store is the document store surface. All calls are context-aware and may
// fail with a generic I/O error; callers treat failures per the workflow's
// rollback rules.
type Store interface {
	GetTask(ctx context.Context, id string) (model.Task, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	UpdateTaskText(ctx context.Context, id, text string) error

	// UpdateTaskProperties applies a patch to the task's freeform
	// properties: an empty value removes the key.
	UpdateTaskProperties(ctx context.Context, id string, patch map[string]string) error

	CreateTask(ctx context.Context, parentID string, order int, text string) (string, error)
	DeleteTask(ctx context.Context, id string) error

	// MoveTask relocates a task within the document graph. Undo uses it to
	// put a relocated task back before restoring content.
	MoveTask(ctx context.Context, id, parentID string, order int) error

	EnsureScheduledAttribute(ctx context.Context, taskID string, kind model.AttrKind, value string) error
	RemoveScheduledAttribute(ctx context.Context, taskID string, kind model.AttrKind) error
}
