package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cadence-tools/cadence/internal/model"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cadence-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTaskCreateGetRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	id, err := s.CreateTask(ctx, "", 0, "Water the plants")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if id == "" {
		t.Fatal("create task returned empty id")
	}

	got, err := s.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Text != "Water the plants" || got.ParentID != "" || got.Order != 0 {
		t.Fatalf("unexpected task: %#v", got)
	}
	if got.Props == nil || len(got.Props) != 0 {
		t.Fatalf("expected empty props map, got %#v", got.Props)
	}
	if len(got.Attrs) != 0 {
		t.Fatalf("expected no attrs, got %#v", got.Attrs)
	}
	if got.CreatedAt.IsZero() || time.Since(got.CreatedAt) > time.Minute {
		t.Fatalf("suspicious created_at: %v", got.CreatedAt)
	}
}

func TestGetMissingTaskReturnsNotFound(t *testing.T) {
	s := setupStore(t)
	if _, err := s.GetTask(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestUpdateTaskText(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	id, err := s.CreateTask(ctx, "", 0, "Draft report")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.UpdateTaskText(ctx, id, "[x] Draft report"); err != nil {
		t.Fatalf("update text: %v", err)
	}
	got, err := s.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Text != "[x] Draft report" {
		t.Fatalf("text not updated: %q", got.Text)
	}

	if err := s.UpdateTaskText(ctx, "no-such-id", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got: %v", err)
	}
}

func TestUpdateTaskPropertiesPatchSemantics(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	id, err := s.CreateTask(ctx, "", 0, "Review budget")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := s.UpdateTaskProperties(ctx, id, map[string]string{"color": "blue", "pinned": "yes"}); err != nil {
		t.Fatalf("set props: %v", err)
	}
	if err := s.UpdateTaskProperties(ctx, id, map[string]string{"color": "red", "pinned": ""}); err != nil {
		t.Fatalf("patch props: %v", err)
	}

	got, err := s.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Props["color"] != "red" {
		t.Fatalf("expected color=red, got %#v", got.Props)
	}
	if _, ok := got.Props["pinned"]; ok {
		t.Fatalf("empty value should remove key, got %#v", got.Props)
	}

	// An empty patch is a no-op even for missing ids.
	if err := s.UpdateTaskProperties(ctx, "no-such-id", nil); err != nil {
		t.Fatalf("empty patch should not fail: %v", err)
	}
	if err := s.UpdateTaskProperties(ctx, "no-such-id", map[string]string{"a": "b"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got: %v", err)
	}
}

func TestScheduledAttributeUpsertAndRemove(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	id, err := s.CreateTask(ctx, "", 0, "Pay rent")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := s.EnsureScheduledAttribute(ctx, id, model.AttrDue, "2026-03-11"); err != nil {
		t.Fatalf("ensure due: %v", err)
	}
	if err := s.EnsureScheduledAttribute(ctx, id, model.AttrDue, "2026-04-01"); err != nil {
		t.Fatalf("upsert due: %v", err)
	}
	if err := s.EnsureScheduledAttribute(ctx, id, model.AttrRepeat, "every month"); err != nil {
		t.Fatalf("ensure repeat: %v", err)
	}

	got, err := s.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Attr(model.AttrDue) != "2026-04-01" {
		t.Fatalf("upsert did not replace value: %#v", got.Attrs)
	}
	if got.Attr(model.AttrRepeat) != "every month" {
		t.Fatalf("missing repeat attr: %#v", got.Attrs)
	}

	if err := s.RemoveScheduledAttribute(ctx, id, model.AttrRepeat); err != nil {
		t.Fatalf("remove repeat: %v", err)
	}
	// Removing an attribute that is not set is not an error.
	if err := s.RemoveScheduledAttribute(ctx, id, model.AttrStart); err != nil {
		t.Fatalf("remove absent attr: %v", err)
	}

	got, err = s.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Attr(model.AttrRepeat) != "" {
		t.Fatalf("repeat attr should be gone: %#v", got.Attrs)
	}
	if got.Attr(model.AttrDue) != "2026-04-01" {
		t.Fatalf("due attr should survive: %#v", got.Attrs)
	}
}

func TestEnsureScheduledAttributeRejectsUnknownKind(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	id, err := s.CreateTask(ctx, "", 0, "Task")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.EnsureScheduledAttribute(ctx, id, model.AttrKind("priority"), "high"); err == nil {
		t.Fatal("expected error for unknown attribute kind")
	}
}

func TestDeleteTaskCascadesAttributes(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	id, err := s.CreateTask(ctx, "", 0, "Temporary")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.EnsureScheduledAttribute(ctx, id, model.AttrDue, "2026-03-11"); err != nil {
		t.Fatalf("ensure due: %v", err)
	}
	if err := s.DeleteTask(ctx, id); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := s.GetTask(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got: %v", err)
	}

	var attrCount int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM task_attrs WHERE task_id = ?`, id)
	if err := row.Scan(&attrCount); err != nil {
		t.Fatalf("count attrs: %v", err)
	}
	if attrCount != 0 {
		t.Fatalf("expected cascade to remove attrs, found %d", attrCount)
	}

	if err := s.DeleteTask(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got: %v", err)
	}
}

func TestMoveTaskAndListOrdering(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	first, err := s.CreateTask(ctx, "", 0, "First")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := s.CreateTask(ctx, "", 1, "Second")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	child, err := s.CreateTask(ctx, first, 0, "Child")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	// Root tasks (empty parent) sort before children, in sort order.
	if tasks[0].ID != first || tasks[1].ID != second || tasks[2].ID != child {
		t.Fatalf("unexpected order: %s %s %s", tasks[0].ID, tasks[1].ID, tasks[2].ID)
	}

	if err := s.MoveTask(ctx, child, "", 2); err != nil {
		t.Fatalf("move task: %v", err)
	}
	moved, err := s.GetTask(ctx, child)
	if err != nil {
		t.Fatalf("get moved: %v", err)
	}
	if moved.ParentID != "" || moved.Order != 2 {
		t.Fatalf("move not applied: parent=%q order=%d", moved.ParentID, moved.Order)
	}

	if err := s.MoveTask(ctx, "no-such-id", "", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got: %v", err)
	}
}

// delayedStore hides a task for a fixed number of reads, standing in for a
// backend without read-after-write visibility.
type delayedStore struct {
	Store
	task      model.Task
	misses    int
	readCalls int
}

func (d *delayedStore) GetTask(ctx context.Context, id string) (model.Task, error) {
	d.readCalls++
	if d.readCalls <= d.misses {
		return model.Task{}, ErrNotFound
	}
	if id != d.task.ID {
		return model.Task{}, ErrNotFound
	}
	return d.task, nil
}

func TestFetchVisibleRetriesUntilRowAppears(t *testing.T) {
	ds := &delayedStore{task: model.Task{ID: "t1", Text: "Late arrival"}, misses: 2}
	got, err := FetchVisible(context.Background(), ds, "t1")
	if err != nil {
		t.Fatalf("fetch visible: %v", err)
	}
	if got.Text != "Late arrival" {
		t.Fatalf("unexpected task: %#v", got)
	}
	if ds.readCalls != 3 {
		t.Fatalf("expected 3 reads, got %d", ds.readCalls)
	}
}

func TestFetchVisibleStopsOnPermanentError(t *testing.T) {
	boom := errors.New("disk on fire")
	fs := &failingStore{err: boom}
	if _, err := FetchVisible(context.Background(), fs, "t1"); !errors.Is(err, boom) {
		t.Fatalf("expected permanent error, got: %v", err)
	}
	if fs.calls != 1 {
		t.Fatalf("permanent error should not retry, got %d calls", fs.calls)
	}
}

type failingStore struct {
	Store
	err   error
	calls int
}

func (f *failingStore) GetTask(ctx context.Context, id string) (model.Task, error) {
	f.calls++
	return model.Task{}, f.err
}
