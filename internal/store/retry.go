package store

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cadence-tools/cadence/internal/model"
)

const visibleMaxRetries = 6

// FetchVisible reads a task that may have just been created, retrying with
// exponential backoff while the row is not yet visible. Any error other
// than not-found stops immediately. Returns a definite result: the task, or
// the last error once retries are exhausted.
func FetchVisible(ctx context.Context, s Store, id string) (model.Task, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 25 * time.Millisecond
	bo.MaxInterval = 400 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second

	var task model.Task
	op := func() error {
		t, err := s.GetTask(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return err // retryable: the row may not be visible yet
			}
			return backoff.Permanent(err)
		}
		task = t
		return nil
	}
	wrapped := backoff.WithContext(backoff.WithMaxRetries(bo, visibleMaxRetries), ctx)
	if err := backoff.Retry(op, wrapped); err != nil {
		return model.Task{}, err
	}
	return task, nil
}
