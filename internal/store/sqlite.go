package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cadence-tools/cadence/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("store: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	st, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, parent_id, sort_order, text, props, created_at
		FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	if task.Attrs, err = s.loadAttrs(ctx, id); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (s *SQLiteStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parent_id, sort_order, text, props, created_at
		FROM tasks ORDER BY parent_id, sort_order, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Attrs, err = s.loadAttrs(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) UpdateTaskText(ctx context.Context, id, text string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET text = ? WHERE id = ?`, text, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) UpdateTaskProperties(ctx context.Context, id string, patch map[string]string) error {
	if len(patch) == 0 {
		return nil
	}
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}
	props := task.Props
	if props == nil {
		props = make(map[string]string, len(patch))
	}
	for k, v := range patch {
		if v == "" {
			delete(props, k)
			continue
		}
		props[k] = v
	}
	encoded, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encode props: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET props = ? WHERE id = ?`, string(encoded), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) CreateTask(ctx context.Context, parentID string, order int, text string) (string, error) {
	id := model.NewTaskID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, parent_id, sort_order, text, props, created_at)
		VALUES (?, ?, ?, ?, '{}', ?)`,
		id, parentID, order, text, time.Now().UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) MoveTask(ctx context.Context, id, parentID string, order int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET parent_id = ?, sort_order = ? WHERE id = ?`, parentID, order, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) EnsureScheduledAttribute(ctx context.Context, taskID string, kind model.AttrKind, value string) error {
	if !kind.IsValid() {
		return fmt.Errorf("store: unknown attribute kind %q", kind)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_attrs (task_id, kind, value) VALUES (?, ?, ?)
		ON CONFLICT (task_id, kind) DO UPDATE SET value = excluded.value`,
		taskID, string(kind), value,
	)
	return err
}

func (s *SQLiteStore) RemoveScheduledAttribute(ctx context.Context, taskID string, kind model.AttrKind) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM task_attrs WHERE task_id = ? AND kind = ?`, taskID, string(kind))
	return err
}

func (s *SQLiteStore) loadAttrs(ctx context.Context, taskID string) (map[model.AttrKind]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, value FROM task_attrs WHERE task_id = ?`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attrs := make(map[model.AttrKind]string)
	for rows.Next() {
		var kind, value string
		if err := rows.Scan(&kind, &value); err != nil {
			return nil, err
		}
		attrs[model.AttrKind(kind)] = value
	}
	return attrs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var task model.Task
	var props, createdAt string
	if err := row.Scan(&task.ID, &task.ParentID, &task.Order, &task.Text, &props, &createdAt); err != nil {
		return model.Task{}, err
	}
	if props != "" {
		if err := json.Unmarshal([]byte(props), &task.Props); err != nil {
			return model.Task{}, fmt.Errorf("decode props: %w", err)
		}
	}
	ts, err := time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("parse created_at: %w", err)
	}
	task.CreatedAt = ts
	return task, nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
