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

// UpsertWork implements three-step cascade: exact match gated by
// ¬parts_differ, then fuzzy match within MaxFuzzyWorks gated by the same,
// then insert. Writes for a given artistID are serialized by the
// database's per-artist lock so concurrent scanner workers never race on
// the same artist's rows.
func (kb *KB) UpsertWork(ctx context.Context, artistID int64, rawTitle string) (*models.Work, error) {
	title, _ := normalizer.CleanTitle(rawTitle)
	if title == "" {
		return nil, fmt.Errorf("upsert_work: empty title: %w", apperr.ErrValidation)
	}

	lock := kb.db.LockArtist(artistID)
	lock.Lock()
	defer lock.Unlock()

	if w, err := kb.getWorkExact(ctx, artistID, title); err == nil {
		if !normalizer.PartsDiffer(title, w.Title) {
			return w, nil
		}
		// gate on the exact-match branch; unreachable in practice
		// since an exact title match always carries identical part tokens.
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("upsert_work: exact lookup: %w", err)
	}

	if match, err := kb.fuzzyMatchWork(ctx, artistID, title); err != nil {
		return nil, fmt.Errorf("upsert_work: fuzzy lookup: %w", err)
	} else if match != nil {
		return match, nil
	}

	return kb.insertWork(ctx, artistID, title)
}

func (kb *KB) getWorkExact(ctx context.Context, artistID int64, title string) (*models.Work, error) {
	row := kb.db.Conn().QueryRowContext(ctx,
		`SELECT id, title, primary_artist_id, is_instrumental FROM works
		 WHERE primary_artist_id = ? AND title = ?`, artistID, title)

	var w models.Work
	if err := row.Scan(&w.ID, &w.Title, &w.PrimaryArtistID, &w.IsInstrumental); err != nil {
		return nil, err
	}
	return &w, nil
}

// fuzzyMatchWork scans the artist's works when the count is within
// MaxFuzzyWorks, accepting the best candidate at or above FuzzyThreshold
// that does not disagree on part tokens. It early-terminates on a
// near-identical candidate (ratio > 0.95), which is itself still subject
// to the ¬parts_differ gate.
func (kb *KB) fuzzyMatchWork(ctx context.Context, artistID int64, title string) (*models.Work, error) {
	count, err := kb.countArtistWorks(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if count > kb.cfg.MaxFuzzyWorks {
		return nil, nil
	}

	rows, err := kb.db.Conn().QueryContext(ctx,
		`SELECT id, title, primary_artist_id, is_instrumental FROM works WHERE primary_artist_id = ?`,
		artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var best *models.Work
	bestRatio := 0.0
	for rows.Next() {
		var w models.Work
		if err := rows.Scan(&w.ID, &w.Title, &w.PrimaryArtistID, &w.IsInstrumental); err != nil {
			return nil, err
		}
		if normalizer.PartsDiffer(title, w.Title) {
			continue
		}
		ratio := normalizer.Ratio(title, w.Title)
		if ratio > bestRatio {
			wCopy := w
			best = &wCopy
			bestRatio = ratio
		}
		if ratio > earlyTerminateRatio {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if best != nil && bestRatio >= kb.cfg.FuzzyThreshold {
		return best, nil
	}
	return nil, nil
}

func (kb *KB) countArtistWorks(ctx context.Context, artistID int64) (int, error) {
	var n int
	row := kb.db.Conn().QueryRowContext(ctx, `SELECT count(*) FROM works WHERE primary_artist_id = ?`, artistID)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (kb *KB) insertWork(ctx context.Context, artistID int64, title string) (*models.Work, error) {
	row := kb.db.Conn().QueryRowContext(ctx,
		`INSERT INTO works (title, primary_artist_id) VALUES (?, ?) RETURNING id`,
		title, artistID)

	var id int64
	if err := row.Scan(&id); err != nil {
		if isUniqueConstraintError(err) {
			// Unique-key race: re-select.2 step 4.
			if w, gerr := kb.getWorkExact(ctx, artistID, title); gerr == nil {
				return w, nil
			}
		}
		if database.IsTransientError(err) {
			return nil, fmt.Errorf("insert work: %w: %w", apperr.ErrTransient, err)
		}
		return nil, fmt.Errorf("insert work: %w", err)
	}
	return &models.Work{ID: id, Title: title, PrimaryArtistID: artistID}, nil
}

// GetWork retrieves a work by id.
func (kb *KB) GetWork(ctx context.Context, id int64) (*models.Work, error) {
	row := kb.db.Conn().QueryRowContext(ctx,
		`SELECT id, title, primary_artist_id, is_instrumental FROM works WHERE id = ?`, id)

	var w models.Work
	if err := row.Scan(&w.ID, &w.Title, &w.PrimaryArtistID, &w.IsInstrumental); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("get_work: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get_work: %w", err)
	}
	return &w, nil
}
