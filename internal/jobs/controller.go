// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/airwave/airwave/internal/apperr"
	"github.com/airwave/airwave/internal/logging"
)

// Controller owns the set of running/completed jobs and bounds how many
// run concurrently. It is the programmatic surface behind // task_status, task_cancel, and task_subscribe.
type Controller struct {
	sem *semaphore.Weighted

	mu   sync.Mutex
	jobs map[string]*job
}

// NewController creates a Controller that runs at most maxConcurrent
// jobs at once; additional Submit calls block in their own goroutine
// until a slot frees up.
func NewController(maxConcurrent int64) *Controller {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Controller{
		sem:  semaphore.NewWeighted(maxConcurrent),
		jobs: make(map[string]*job),
	}
}

// Submit starts work asynchronously under kind and returns its task_id
// immediately. The caller's ctx bounds the job's lifetime only via
// Cancel; Submit does not tie the job to the caller's own context so
// that an HTTP request can return while its job keeps running.
func (c *Controller) Submit(kind Kind, work Work) string {
	taskID := uuid.NewString()
	jobCtx, cancel := context.WithCancel(context.Background())
	j := newJob(taskID, kind, cancel)

	c.mu.Lock()
	c.jobs[taskID] = j
	c.mu.Unlock()

	go c.run(jobCtx, j, work)

	return taskID
}

func (c *Controller) run(ctx context.Context, j *job, work Work) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		j.finish(StateCancelled, ctx.Err())
		return
	}
	defer c.sem.Release(1)

	j.setState(StateRunning)

	err := runWithRetry(ctx, work, j.report)

	switch {
	case errors.Is(err, context.Canceled):
		j.finish(StateCancelled, nil)
	case err != nil:
		j.finish(StateFailed, err)
	default:
		j.finish(StateCompleted, nil)
	}
}

// retryAttempts and the backoff schedule implement "Transient
// errors ... retry with bounded exponential backoff (3 attempts)".
const retryAttempts = 3

var backoffSchedule = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1200 * time.Millisecond}

func runWithRetry(ctx context.Context, work Work, report Reporter) error {
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := work(ctx, report)
		if err == nil {
			return nil
		}
		lastErr = err

		if !apperr.Is(err, apperr.ErrTransient) {
			return err
		}
		if attempt == retryAttempts-1 {
			break
		}

		logging.Warn().Err(err).Int("attempt", attempt+1).Msg("job: transient error, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffSchedule[attempt]):
		}
	}
	return lastErr
}

// Status returns the latest Snapshot for taskID.
func (c *Controller) Status(taskID string) (Snapshot, bool) {
	c.mu.Lock()
	j, ok := c.jobs[taskID]
	c.mu.Unlock()
	if !ok {
		return Snapshot{}, false
	}
	return j.snapshot(), true
}

// Cancel requests cooperative cancellation of taskID. It is idempotent:
// cancelling a job more than once, or one that has already finished, is
// a no-op.
func (c *Controller) Cancel(taskID string) bool {
	c.mu.Lock()
	j, ok := c.jobs[taskID]
	c.mu.Unlock()
	if !ok {
		return false
	}
	j.cancel()
	return true
}

// Subscribe returns a channel of Snapshots for taskID, terminating when
// the job reaches Completed, Failed, or Cancelled, plus an unsubscribe
// function the caller must call once done reading.
func (c *Controller) Subscribe(taskID string) (<-chan Snapshot, func(), bool) {
	c.mu.Lock()
	j, ok := c.jobs[taskID]
	c.mu.Unlock()
	if !ok {
		return nil, func() {}, false
	}

	ch := j.subscribe()
	return ch, func() { j.unsubscribe(ch) }, true
}
