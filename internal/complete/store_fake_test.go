package complete

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cadence-tools/cadence/internal/model"
	"github.com/cadence-tools/cadence/internal/store"
)

// memStore is an in-memory document store for workflow and undo tests. Any
// method can be made to fail once by setting failNext.
type memStore struct {
	mu       sync.Mutex
	tasks    map[string]*model.Task
	order    []string
	nextID   int
	failNext map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		tasks:    make(map[string]*model.Task),
		failNext: make(map[string]error),
	}
}

func (s *memStore) failOnce(op string) {
	s.mu.Lock()
	s.failNext[op] = errors.New("injected failure: " + op)
	s.mu.Unlock()
}

func (s *memStore) takeFailure(op string) error {
	if err, ok := s.failNext[op]; ok {
		delete(s.failNext, op)
		return err
	}
	return nil
}

func (s *memStore) put(t model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := t
	cp.Props = t.CloneProps()
	cp.Attrs = t.CloneAttrs()
	if _, exists := s.tasks[t.ID]; !exists {
		s.order = append(s.order, t.ID)
	}
	s.tasks[t.ID] = &cp
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *memStore) GetTask(_ context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("get"); err != nil {
		return model.Task{}, err
	}
	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, store.ErrNotFound
	}
	cp := *t
	cp.Props = t.CloneProps()
	cp.Attrs = t.CloneAttrs()
	return cp, nil
}

func (s *memStore) ListTasks(_ context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0, len(s.order))
	for _, id := range s.order {
		t := s.tasks[id]
		cp := *t
		cp.Props = t.CloneProps()
		cp.Attrs = t.CloneAttrs()
		out = append(out, cp)
	}
	return out, nil
}

func (s *memStore) UpdateTaskText(_ context.Context, id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("text"); err != nil {
		return err
	}
	t, ok := s.tasks[id]
	if !ok {
		return store.ErrNotFound
	}
	t.Text = text
	return nil
}

func (s *memStore) UpdateTaskProperties(_ context.Context, id string, patch map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return store.ErrNotFound
	}
	if t.Props == nil {
		t.Props = make(map[string]string)
	}
	for k, v := range patch {
		if v == "" {
			delete(t.Props, k)
			continue
		}
		t.Props[k] = v
	}
	return nil
}

func (s *memStore) CreateTask(_ context.Context, parentID string, order int, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("create"); err != nil {
		return "", err
	}
	s.nextID++
	id := fmt.Sprintf("task-%d", s.nextID)
	s.tasks[id] = &model.Task{
		ID:       id,
		ParentID: parentID,
		Order:    order,
		Text:     text,
		Props:    map[string]string{},
		Attrs:    map[model.AttrKind]string{},
	}
	s.order = append(s.order, id)
	return id, nil
}

func (s *memStore) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.tasks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memStore) MoveTask(_ context.Context, id, parentID string, order int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return store.ErrNotFound
	}
	t.ParentID = parentID
	t.Order = order
	return nil
}

func (s *memStore) EnsureScheduledAttribute(_ context.Context, taskID string, kind model.AttrKind, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("attr"); err != nil {
		return err
	}
	t, ok := s.tasks[taskID]
	if !ok {
		return store.ErrNotFound
	}
	if t.Attrs == nil {
		t.Attrs = make(map[model.AttrKind]string)
	}
	t.Attrs[kind] = value
	return nil
}

func (s *memStore) RemoveScheduledAttribute(_ context.Context, taskID string, kind model.AttrKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return store.ErrNotFound
	}
	delete(t.Attrs, kind)
	return nil
}
