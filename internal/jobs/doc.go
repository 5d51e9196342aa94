// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package jobs implements Job Controller: the long-running
// operations (scan, import, discovery, rematch, back-fill) that the
// supervised services of internal/supervisor/services wrap.
//
// A Job runs an arbitrary Work function under cooperative cancellation,
// reports (current, total, message) at a rate bounded to 2 Hz via
// golang.org/x/time/rate, and retries transient failures (apperr.ErrTransient)
// up to 3 attempts with bounded exponential backoff. Concurrent jobs are
// bounded by a golang.org/x/sync/semaphore.Weighted rather than an
// unbounded goroutine-per-job pool. Subscribers receive a monotonic
// stream of Snapshot values terminating in Completed, Failed, or
// Cancelled; a late subscriber can still fetch the latest Snapshot via
// Controller.Status.
package jobs
