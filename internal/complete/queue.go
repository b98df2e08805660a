package complete

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Handler processes one coalesced completion attempt.
type Handler func(ctx context.Context, taskID string, opts Options)

// Queue is a coalescing micro-batcher for completion events. Events for the
// same task id collapse into one pending entry (last write wins for
// options); a single worker drains the queue until empty and then idles, so
// no two completion attempts ever run concurrently.
type Queue struct {
	mu      sync.Mutex
	pending map[string]Options
	order   []string
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool

	handler Handler
	tick    time.Duration
	log     *slog.Logger
}

// defaultTick is the coalescing window: redundant signals landing within it
// collapse before the flush.
const defaultTick = 50 * time.Millisecond

func NewQueue(handler Handler, log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}
	return &Queue{
		pending: make(map[string]Options),
		wakeup:  make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		handler: handler,
		tick:    defaultTick,
		log:     log.With("component", "queue"),
	}
}

func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true
	go q.loop()
}

func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started || q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.stopCh)
	q.mu.Unlock()
	<-q.doneCh
}

// Enqueue schedules a completion attempt for the task. A pending entry for
// the same task is replaced, options included.
func (q *Queue) Enqueue(taskID string, opts Options) error {
	if taskID == "" {
		return errors.New("complete: empty task id")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return errors.New("complete: queue stopped")
	}
	if _, exists := q.pending[taskID]; !exists {
		q.order = append(q.order, taskID)
	}
	q.pending[taskID] = opts
	q.signalWakeup()
	return nil
}

// Len reports the number of coalesced pending entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) signalWakeup() {
	select {
	case q.wakeup <- struct{}{}:
	default:
	}
}

func (q *Queue) loop() {
	defer close(q.doneCh)
	for {
		select {
		case <-q.wakeup:
		case <-q.stopCh:
			return
		}
		// Let redundant signals coalesce before flushing.
		timer := time.NewTimer(q.tick)
		select {
		case <-timer.C:
		case <-q.stopCh:
			timer.Stop()
			return
		}
		q.drain()
	}
}

// drain processes batches until the queue is empty, then returns to idle.
func (q *Queue) drain() {
	for {
		batch, opts := q.take()
		if len(batch) == 0 {
			return
		}
		for _, taskID := range batch {
			q.run(taskID, opts[taskID])
		}
	}
}

func (q *Queue) take() ([]string, map[string]Options) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 {
		return nil, nil
	}
	batch := q.order
	opts := q.pending
	q.order = nil
	q.pending = make(map[string]Options)
	return batch, opts
}

// run shields the drain loop from a handler panic so one bad completion
// cannot block subsequent queued tasks.
func (q *Queue) run(taskID string, opts Options) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("completion handler panicked", "task", taskID, "panic", r)
		}
	}()
	q.handler(context.Background(), taskID, opts)
}
