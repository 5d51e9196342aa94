// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/airwave/airwave/internal/apperr"
	"github.com/airwave/airwave/internal/database"
	"github.com/airwave/airwave/internal/models"
)

// UpsertRecording finds or creates a Recording under workID.
// Uniqueness is (work_id, title, version_type).
func (kb *KB) UpsertRecording(ctx context.Context, workID int64, title, versionType string, durationSeconds *float64, externalID string) (*models.Recording, error) {
	if title == "" {
		return nil, fmt.Errorf("upsert_recording: empty title: %w", apperr.ErrValidation)
	}
	if versionType == "" {
		versionType = models.VersionOriginal
	}

	if r, err := kb.getRecording(ctx, workID, title, versionType); err == nil {
		return r, nil
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("upsert_recording: lookup: %w", err)
	}

	row := kb.db.Conn().QueryRowContext(ctx,
		`INSERT INTO recordings (work_id, title, version_type, duration_seconds, external_id)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		workID, title, versionType, durationSeconds, externalID)

	var id int64
	if err := row.Scan(&id); err != nil {
		if isUniqueConstraintError(err) {
			if r, gerr := kb.getRecording(ctx, workID, title, versionType); gerr == nil {
				return r, nil
			}
		}
		if database.IsTransientError(err) {
			return nil, fmt.Errorf("upsert_recording: insert: %w: %w", apperr.ErrTransient, err)
		}
		return nil, fmt.Errorf("upsert_recording: insert: %w", err)
	}

	return &models.Recording{
		ID: id, WorkID: workID, Title: title, VersionType: versionType,
		DurationSeconds: durationSeconds, ExternalID: externalID,
	}, nil
}

func (kb *KB) getRecording(ctx context.Context, workID int64, title, versionType string) (*models.Recording, error) {
	row := kb.db.Conn().QueryRowContext(ctx,
		`SELECT id, work_id, title, version_type, duration_seconds, external_id, is_verified, created_at
		 FROM recordings WHERE work_id = ? AND title = ? AND version_type = ?`,
		workID, title, versionType)
	return scanRecording(row)
}

// GetRecording retrieves a recording by id.
func (kb *KB) GetRecording(ctx context.Context, id int64) (*models.Recording, error) {
	row := kb.db.Conn().QueryRowContext(ctx,
		`SELECT id, work_id, title, version_type, duration_seconds, external_id, is_verified, created_at
		 FROM recordings WHERE id = ?`, id)
	r, err := scanRecording(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get_recording: %w", apperr.ErrNotFound)
	}
	return r, err
}

func scanRecording(row *sql.Row) (*models.Recording, error) {
	var r models.Recording
	var duration sql.NullFloat64
	var externalID sql.NullString
	if err := row.Scan(&r.ID, &r.WorkID, &r.Title, &r.VersionType, &duration, &externalID, &r.IsVerified, &r.CreatedAt); err != nil {
		return nil, err
	}
	if duration.Valid {
		r.DurationSeconds = &duration.Float64
	}
	r.ExternalID = externalID.String
	return &r, nil
}
