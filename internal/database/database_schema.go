// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package database

// createTables issues the consolidated CREATE TABLE statements for the
// knowledge base's entities: Artist, Work, WorkArtist, Recording,
// LibraryFile, BroadcastLog, DiscoveryQueueItem, IdentityBridge,
// ArtistAlias, ProposedSplit, and the resolver policy tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	stmts := []string{
		`CREATE SEQUENCE IF NOT EXISTS artist_id_seq START 1;`,
		`CREATE TABLE IF NOT EXISTS artists (
			id BIGINT PRIMARY KEY DEFAULT nextval('artist_id_seq'),
			name TEXT NOT NULL UNIQUE,
			display_name TEXT,
			external_id TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		);`,

		`CREATE SEQUENCE IF NOT EXISTS work_id_seq START 1;`,
		`CREATE TABLE IF NOT EXISTS works (
			id BIGINT PRIMARY KEY DEFAULT nextval('work_id_seq'),
			title TEXT NOT NULL,
			primary_artist_id BIGINT NOT NULL REFERENCES artists(id),
			is_instrumental BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			UNIQUE (title, primary_artist_id)
		);`,

		`CREATE TABLE IF NOT EXISTS work_artists (
			work_id BIGINT NOT NULL REFERENCES works(id),
			artist_id BIGINT NOT NULL REFERENCES artists(id),
			position INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (work_id, artist_id)
		);`,

		`CREATE SEQUENCE IF NOT EXISTS recording_id_seq START 1;`,
		`CREATE TABLE IF NOT EXISTS recordings (
			id BIGINT PRIMARY KEY DEFAULT nextval('recording_id_seq'),
			work_id BIGINT NOT NULL REFERENCES works(id),
			title TEXT NOT NULL,
			version_type TEXT NOT NULL DEFAULT 'Original',
			duration_seconds DOUBLE,
			external_id TEXT,
			is_verified BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			UNIQUE (work_id, title, version_type)
		);`,

		`CREATE SEQUENCE IF NOT EXISTS library_file_id_seq START 1;`,
		`CREATE TABLE IF NOT EXISTS library_files (
			id BIGINT PRIMARY KEY DEFAULT nextval('library_file_id_seq'),
			recording_id BIGINT NOT NULL REFERENCES recordings(id),
			path TEXT NOT NULL UNIQUE,
			content_hash TEXT NOT NULL,
			size_bytes BIGINT NOT NULL,
			mtime TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		);`,

		`CREATE TABLE IF NOT EXISTS stations (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL
		);`,

		`CREATE SEQUENCE IF NOT EXISTS broadcast_log_id_seq START 1;`,
		`CREATE TABLE IF NOT EXISTS broadcast_logs (
			id BIGINT PRIMARY KEY DEFAULT nextval('broadcast_log_id_seq'),
			station_id BIGINT NOT NULL,
			played_at TIMESTAMP NOT NULL,
			raw_artist TEXT NOT NULL,
			raw_title TEXT NOT NULL,
			signature TEXT NOT NULL,
			work_id BIGINT REFERENCES works(id),
			match_reason TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		);`,

		`CREATE TABLE IF NOT EXISTS discovery_queue_items (
			signature TEXT PRIMARY KEY,
			raw_artist TEXT NOT NULL,
			raw_title TEXT NOT NULL,
			count BIGINT NOT NULL DEFAULT 1,
			suggested_work_id BIGINT REFERENCES works(id),
			best_artist_sim DOUBLE,
			best_title_sim DOUBLE,
			best_vector_distance DOUBLE,
			cooldown_until TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		);`,

		`CREATE TABLE IF NOT EXISTS identity_bridges (
			signature TEXT PRIMARY KEY,
			reference_artist TEXT NOT NULL,
			reference_title TEXT NOT NULL,
			work_id BIGINT NOT NULL REFERENCES works(id),
			confidence DOUBLE NOT NULL DEFAULT 1.0,
			is_revoked BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		);`,

		`CREATE TABLE IF NOT EXISTS artist_aliases (
			raw_name TEXT PRIMARY KEY,
			resolved_name TEXT NOT NULL,
			is_verified BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		);`,

		`CREATE SEQUENCE IF NOT EXISTS proposed_split_id_seq START 1;`,
		`CREATE TABLE IF NOT EXISTS proposed_splits (
			id BIGINT PRIMARY KEY DEFAULT nextval('proposed_split_id_seq'),
			raw_artist TEXT NOT NULL,
			proposed_names TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'proposed',
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		);`,

		`CREATE TABLE IF NOT EXISTS station_preferences (
			station_id BIGINT NOT NULL,
			work_id BIGINT NOT NULL REFERENCES works(id),
			recording_id BIGINT NOT NULL REFERENCES recordings(id),
			priority INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (station_id, work_id, recording_id)
		);`,

		`CREATE TABLE IF NOT EXISTS format_preferences (
			format_code TEXT NOT NULL,
			work_id BIGINT NOT NULL REFERENCES works(id),
			recording_id BIGINT NOT NULL REFERENCES recordings(id),
			exclude_tags TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (format_code, work_id)
		);`,

		`CREATE TABLE IF NOT EXISTS work_default_recordings (
			work_id BIGINT PRIMARY KEY REFERENCES works(id),
			recording_id BIGINT NOT NULL REFERENCES recordings(id)
		);`,

		`CREATE TABLE IF NOT EXISTS recording_vectors (
			recording_id BIGINT PRIMARY KEY REFERENCES recordings(id),
			indexed_text TEXT NOT NULL,
			embedding DOUBLE[64] NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		);`,
	}

	for _, s := range stmts {
		if _, err := db.conn.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// createIndexes creates the secondary indexes the matcher and discovery
// queue rely on for batched lookups.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_broadcast_logs_signature ON broadcast_logs(signature);`,
		`CREATE INDEX IF NOT EXISTS idx_broadcast_logs_station ON broadcast_logs(station_id, played_at);`,
		`CREATE INDEX IF NOT EXISTS idx_broadcast_logs_unresolved ON broadcast_logs(signature) WHERE work_id IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_recordings_work ON recordings(work_id);`,
		`CREATE INDEX IF NOT EXISTS idx_library_files_recording ON library_files(recording_id);`,
		`CREATE INDEX IF NOT EXISTS idx_library_files_hash ON library_files(content_hash);`,
		`CREATE INDEX IF NOT EXISTS idx_works_primary_artist ON works(primary_artist_id);`,
	}
	for _, s := range stmts {
		if _, err := db.conn.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
