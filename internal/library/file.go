// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/airwave/airwave/internal/apperr"
	"github.com/airwave/airwave/internal/database"
	"github.com/airwave/airwave/internal/models"
)

// UpsertFile finds or creates a LibraryFile tied to recordingID. The
// content hash drives move detection: a file with the same hash already
// on record at a different path has its path updated in place instead
// of inserting a duplicate and orphaning the old row.
func (kb *KB) UpsertFile(ctx context.Context, recordingID int64, path, contentHash string, sizeBytes int64, mtime time.Time) (*models.LibraryFile, error) {
	if path == "" {
		return nil, fmt.Errorf("upsert_file: empty path: %w", apperr.ErrValidation)
	}

	if f, err := kb.getFileByPath(ctx, path); err == nil {
		if f.ContentHash != contentHash || !f.MTime.Equal(mtime) {
			if err := kb.updateFile(ctx, f.ID, contentHash, sizeBytes, mtime); err != nil {
				return nil, fmt.Errorf("upsert_file: update: %w", err)
			}
			f.ContentHash, f.SizeBytes, f.MTime = contentHash, sizeBytes, mtime
		}
		return f, nil
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("upsert_file: lookup by path: %w", err)
	}

	if moved, err := kb.getFileByHash(ctx, contentHash); err == nil {
		if err := kb.moveFile(ctx, moved.ID, path); err != nil {
			return nil, fmt.Errorf("upsert_file: move: %w", err)
		}
		moved.Path = path
		return moved, nil
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("upsert_file: lookup by hash: %w", err)
	}

	row := kb.db.Conn().QueryRowContext(ctx,
		`INSERT INTO library_files (recording_id, path, content_hash, size_bytes, mtime)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		recordingID, path, contentHash, sizeBytes, mtime)

	var id int64
	if err := row.Scan(&id); err != nil {
		if isUniqueConstraintError(err) {
			if f, gerr := kb.getFileByPath(ctx, path); gerr == nil {
				return f, nil
			}
		}
		if database.IsTransientError(err) {
			return nil, fmt.Errorf("upsert_file: insert: %w: %w", apperr.ErrTransient, err)
		}
		return nil, fmt.Errorf("upsert_file: insert: %w", err)
	}

	return &models.LibraryFile{
		ID: id, RecordingID: recordingID, Path: path,
		ContentHash: contentHash, SizeBytes: sizeBytes, MTime: mtime,
	}, nil
}

func (kb *KB) getFileByPath(ctx context.Context, path string) (*models.LibraryFile, error) {
	row := kb.db.Conn().QueryRowContext(ctx,
		`SELECT id, recording_id, path, content_hash, size_bytes, mtime FROM library_files WHERE path = ?`, path)
	return scanFile(row)
}

func (kb *KB) getFileByHash(ctx context.Context, hash string) (*models.LibraryFile, error) {
	row := kb.db.Conn().QueryRowContext(ctx,
		`SELECT id, recording_id, path, content_hash, size_bytes, mtime FROM library_files WHERE content_hash = ? LIMIT 1`, hash)
	return scanFile(row)
}

func (kb *KB) updateFile(ctx context.Context, id int64, contentHash string, sizeBytes int64, mtime time.Time) error {
	_, err := kb.db.Conn().ExecContext(ctx,
		`UPDATE library_files SET content_hash = ?, size_bytes = ?, mtime = ? WHERE id = ?`,
		contentHash, sizeBytes, mtime, id)
	return err
}

func (kb *KB) moveFile(ctx context.Context, id int64, newPath string) error {
	_, err := kb.db.Conn().ExecContext(ctx, `UPDATE library_files SET path = ? WHERE id = ?`, newPath, id)
	return err
}

// DeleteFile removes a library file row, used by orphan GC once a
// path is confirmed gone and no move candidate matched its hash.
func (kb *KB) DeleteFile(ctx context.Context, id int64) error {
	_, err := kb.db.Conn().ExecContext(ctx, `DELETE FROM library_files WHERE id = ?`, id)
	return err
}

// ListFilePaths returns every known file path, for the scanner's orphan
// sweep.
func (kb *KB) ListFilePaths(ctx context.Context) (map[string]int64, error) {
	rows, err := kb.db.Conn().QueryContext(ctx, `SELECT path, id FROM library_files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var path string
		var id int64
		if err := rows.Scan(&path, &id); err != nil {
			return nil, err
		}
		out[path] = id
	}
	return out, rows.Err()
}

func scanFile(row *sql.Row) (*models.LibraryFile, error) {
	var f models.LibraryFile
	if err := row.Scan(&f.ID, &f.RecordingID, &f.Path, &f.ContentHash, &f.SizeBytes, &f.MTime); err != nil {
		return nil, err
	}
	return &f, nil
}
