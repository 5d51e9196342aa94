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
	"github.com/airwave/airwave/internal/normalizer"
)

// UpsertArtist finds or creates the Artist named name. name is
// normalized via CleanArtist before lookup; displayName preserves the
// first-seen raw casing for presentation.
func (kb *KB) UpsertArtist(ctx context.Context, rawName string, displayName string) (*models.Artist, error) {
	name := normalizer.CleanArtist(rawName)
	if name == "" {
		return nil, fmt.Errorf("upsert_artist: empty artist name: %w", apperr.ErrValidation)
	}

	if a, err := kb.getArtistByName(ctx, name); err == nil {
		return a, nil
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("upsert_artist: lookup: %w", err)
	}

	row := kb.db.Conn().QueryRowContext(ctx,
		`INSERT INTO artists (name, display_name) VALUES (?, ?) RETURNING id`,
		name, displayName,
	)
	var id int64
	if err := row.Scan(&id); err != nil {
		if isUniqueConstraintError(err) {
			// Race: another writer created the same artist concurrently.
			return kb.getArtistByName(ctx, name)
		}
		if database.IsTransientError(err) {
			return nil, fmt.Errorf("upsert_artist: insert: %w: %w", apperr.ErrTransient, err)
		}
		return nil, fmt.Errorf("upsert_artist: insert: %w", err)
	}

	return &models.Artist{ID: id, Name: name, DisplayName: displayName}, nil
}

func (kb *KB) getArtistByName(ctx context.Context, name string) (*models.Artist, error) {
	row := kb.db.Conn().QueryRowContext(ctx,
		`SELECT id, name, display_name, external_id FROM artists WHERE name = ?`, name)

	var a models.Artist
	var displayName, externalID sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &displayName, &externalID); err != nil {
		return nil, err
	}
	a.DisplayName = displayName.String
	a.ExternalID = externalID.String
	return &a, nil
}

// GetArtist retrieves an artist by id.
func (kb *KB) GetArtist(ctx context.Context, id int64) (*models.Artist, error) {
	row := kb.db.Conn().QueryRowContext(ctx,
		`SELECT id, name, display_name, external_id FROM artists WHERE id = ?`, id)

	var a models.Artist
	var displayName, externalID sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &displayName, &externalID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("get_artist: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get_artist: %w", err)
	}
	a.DisplayName = displayName.String
	a.ExternalID = externalID.String
	return &a, nil
}
