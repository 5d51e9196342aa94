// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package jobs

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Kind identifies the operation a Job performs.
type Kind string

const (
	KindScan      Kind = "scan"
	KindImport    Kind = "import"
	KindDiscovery Kind = "discovery"
	KindRematch   Kind = "rematch"
	KindBackfill  Kind = "backfill"
)

// State is a Job's lifecycle state.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// terminal reports whether s is one of the three states a job's stream
// must end in.
func (s State) terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Progress is the (current, total, message) triple a Work function
// reports as it runs.
type Progress struct {
	Current int64
	Total   int64
	Message string
}

// Snapshot is a point-in-time view of a Job, safe to copy and hand to
// subscribers.
type Snapshot struct {
	TaskID   string
	Kind     Kind
	State    State
	Progress Progress
	Err      string
}

// Reporter is handed to a Work function so it can publish progress.
// Current must be monotonically non-decreasing within a job.
type Reporter func(current, total int64, message string)

// Work is the body of a job. It must observe ctx.Done() at the start of
// each unit of work (file, batch, signature) for cancellation to be
// cooperative, and return apperr.ErrTransient-wrapped errors for
// conditions the controller should retry.
type Work func(ctx context.Context, report Reporter) error

// job is the controller's internal, mutable record for one task_id.
type job struct {
	id   string
	kind Kind

	mu       sync.Mutex
	state    State
	progress Progress
	err      error

	limiter *rate.Limiter

	subMu sync.Mutex
	subs  map[chan Snapshot]struct{}

	cancel func()
}

func newJob(id string, kind Kind, cancel func()) *job {
	return &job{
		id:      id,
		kind:    kind,
		state:   StateQueued,
		limiter: rate.NewLimiter(progressRateLimit, 1),
		subs:    make(map[chan Snapshot]struct{}),
		cancel:  cancel,
	}
}

// progressRateLimit is "≤ 2 Hz" progress-emission contract.
const progressRateLimit rate.Limit = 2

func (j *job) snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := Snapshot{TaskID: j.id, Kind: j.kind, State: j.state, Progress: j.progress}
	if j.err != nil {
		s.Err = j.err.Error()
	}
	return s
}

func (j *job) setState(state State) {
	j.mu.Lock()
	j.state = state
	j.mu.Unlock()
}

func (j *job) setErr(err error) {
	j.mu.Lock()
	j.err = err
	j.mu.Unlock()
}

// report updates the job's progress unconditionally (so Status always
// reflects the latest value) and publishes to subscribers at most at
// progressRateLimit, always publishing a terminal state change.
func (j *job) report(current, total int64, message string) {
	j.mu.Lock()
	if current > j.progress.Current {
		j.progress.Current = current
	}
	j.progress.Total = total
	j.progress.Message = message
	j.mu.Unlock()

	if j.limiter.Allow() {
		j.publish()
	}
}

// publish sends the current snapshot to every subscriber without
// blocking on a full channel; a slow subscriber drops intermediate
// updates but is guaranteed the terminal one via finish.
func (j *job) publish() {
	snap := j.snapshot()
	j.subMu.Lock()
	defer j.subMu.Unlock()
	for ch := range j.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// finish transitions to a terminal state and force-publishes, then
// closes every subscriber channel.
func (j *job) finish(state State, err error) {
	j.mu.Lock()
	j.state = state
	j.err = err
	j.mu.Unlock()

	snap := j.snapshot()
	j.subMu.Lock()
	defer j.subMu.Unlock()
	for ch := range j.subs {
		select {
		case ch <- snap:
		default:
			// Full buffer: drop the oldest pending snapshot so the
			// terminal one still fits. Only publish and finish send, both
			// under subMu, so the send below cannot block.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
		close(ch)
	}
	j.subs = make(map[chan Snapshot]struct{})
}

func (j *job) subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 8)
	j.subMu.Lock()
	defer j.subMu.Unlock()
	// A job that already finished gets its terminal snapshot and a
	// closed channel at once, since finish will not run again.
	if snap := j.snapshot(); snap.State.terminal() {
		ch <- snap
		close(ch)
		return ch
	}
	j.subs[ch] = struct{}{}
	return ch
}

func (j *job) unsubscribe(ch chan Snapshot) {
	j.subMu.Lock()
	defer j.subMu.Unlock()
	if _, ok := j.subs[ch]; ok {
		delete(j.subs, ch)
		close(ch)
	}
}
