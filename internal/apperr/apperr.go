// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apperr defines the error kinds used across the application:
// NotFound, Conflict, Validation, Transient, Cancelled, and Corrupt.
// Components wrap a sentinel with fmt.Errorf("...: %w", ...) and callers
// inspect with errors.Is/As, the plain-wrapped-stdlib-errors style used
// throughout internal/database rather than introducing a separate
// error-chaining library.
package apperr

import "errors"

// Sentinel kinds. Wrap these with context via fmt.Errorf("...: %w", ErrX).
var (
	// ErrNotFound: a referenced Work/Recording/File/Artist is absent.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a uniqueness violation. Handled internally by upsert
	// retry; surfaced only if the retry budget is exhausted.
	ErrConflict = errors.New("conflict")

	// ErrValidation: threshold out of range, file too large, malformed
	// signature, or other caller-input problem.
	ErrValidation = errors.New("validation failed")

	// ErrTransient: I/O timeout or vector index unavailable. Retried with
	// backoff by the job controller; a persistent transient failure marks
	// the job failed.
	ErrTransient = errors.New("transient failure")

	// ErrCancelled: cooperative cancellation observed. Not an error to
	// operators — jobs terminate cleanly on this.
	ErrCancelled = errors.New("cancelled")

	// ErrCorrupt: unreadable audio tags or a truncated file. Skipped,
	// counted, and reported in the job summary.
	ErrCorrupt = errors.New("corrupt")
)

// Is reports whether err wraps kind anywhere in its chain.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}
