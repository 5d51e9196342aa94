// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/airwave/airwave/internal/apperr"
	"github.com/airwave/airwave/internal/library"
	"github.com/airwave/airwave/internal/logging"
	"github.com/airwave/airwave/internal/normalizer"
	"github.com/airwave/airwave/internal/vectorindex"
)

// Scanner walks a library's audio files and drives the
// Artist -> Work -> Recording -> File upsert cascade.
type Scanner struct {
	kb     *library.KB
	vector *vectorindex.Index
	cfg    Config
}

// New constructs a Scanner bound to kb. vector may be nil, in which case
// the scan materializes the KB hierarchy without enqueueing embedding
// upserts (useful for tests that don't care about vector search).
func New(kb *library.KB, vector *vectorindex.Index, cfg Config) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	return &Scanner{kb: kb, vector: vector, cfg: cfg}
}

type fileTask struct {
	path string
}

// Scan walks cfg.RootPaths, upserts every audio file found, and garbage
// collects library rows whose path disappeared without a move. Progress
// is delivered to onProgress as each file completes; onProgress may be
// nil. Cancellation is cooperative: ctx is checked at the start of each
// file's unit of work, and in-flight files finish before Scan returns so
// no Work/Recording/File is left half-written.
func (s *Scanner) Scan(ctx context.Context, onProgress func(Progress)) (Summary, error) {
	tasks := make(chan fileTask)
	results := make(chan fileResult)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, tasks, results)
		}()
	}

	go func() {
		defer close(tasks)
		s.walk(ctx, tasks)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var sum Summary
	seenPaths := make(map[string]struct{})
	for r := range results {
		sum.FilesSeen++
		seenPaths[r.path] = struct{}{}
		switch {
		case r.err != nil:
			sum.FilesSkipped++
			sum.Errors = append(sum.Errors, FileError{Path: r.path, Err: r.err})
		default:
			sum.FilesUpserted++
		}
		if onProgress != nil {
			onProgress(Progress{
				FilesSeen:     sum.FilesSeen,
				FilesUpserted: sum.FilesUpserted,
				FilesSkipped:  sum.FilesSkipped,
				CurrentPath:   r.path,
			})
		}
	}

	if ctx.Err() != nil {
		sum.Cancelled = true
		return sum, nil
	}

	orphaned, err := s.garbageCollect(ctx, seenPaths)
	sum.FilesOrphaned = orphaned
	return sum, err
}

type fileResult struct {
	path string
	err  error
}

func (s *Scanner) walk(ctx context.Context, tasks chan<- fileTask) {
	for _, root := range s.cfg.RootPaths {
		if ctx.Err() != nil {
			return
		}
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				logging.Warn().Err(err).Str("path", path).Msg("scanner: walk error")
				return nil
			}
			if d.IsDir() || !s.hasAudioExtension(path) {
				return nil
			}
			select {
			case tasks <- fileTask{path: path}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
	}
}

func (s *Scanner) hasAudioExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range s.cfg.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (s *Scanner) worker(ctx context.Context, tasks <-chan fileTask, results chan<- fileResult) {
	for t := range tasks {
		if ctx.Err() != nil {
			results <- fileResult{path: t.path, err: apperr.ErrCancelled}
			continue
		}
		err := s.processFile(ctx, t.path)
		results <- fileResult{path: t.path, err: err}
	}
}

func (s *Scanner) processFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	tags, err := readTags(path)
	if err != nil {
		return err
	}

	hash, err := contentHash(path)
	if err != nil {
		return err
	}

	title, versionType := normalizer.ExtractVersion(tags.Title, tags.Album)
	artistName := tags.Artist
	if artistName == "" {
		artistName = "Unknown Artist"
	}

	artist, err := s.kb.UpsertArtist(ctx, artistName, tags.Artist)
	if err != nil {
		return err
	}
	work, err := s.kb.UpsertWork(ctx, artist.ID, title)
	if err != nil {
		return err
	}
	recTitle, _ := normalizer.CleanTitle(tags.Title)
	recording, err := s.kb.UpsertRecording(ctx, work.ID, recTitle, versionType, nil, "")
	if err != nil {
		return err
	}
	if _, err := s.kb.UpsertFile(ctx, recording.ID, path, hash, info.Size(), info.ModTime()); err != nil {
		return err
	}

	if s.vector != nil {
		text := vectorindex.IndexedText(artist.Name, recTitle)
		if err := s.vector.Upsert(ctx, recording.ID, text); err != nil {
			return fmt.Errorf("vector upsert: %w", err)
		}
	}

	if collab := tags.Artist; collab != "" {
		if err := s.kb.LinkMultiArtists(ctx, work.ID, collab); err != nil {
			return err
		}
	}

	return nil
}

// garbageCollect removes library_files rows whose path was not observed
// during this walk: a file the move detection in upsert_file didn't
// relocate is genuinely gone.
func (s *Scanner) garbageCollect(ctx context.Context, seen map[string]struct{}) (int64, error) {
	known, err := s.kb.ListFilePaths(ctx)
	if err != nil {
		return 0, err
	}

	var removed int64
	for path, id := range known {
		if ctx.Err() != nil {
			return removed, nil
		}
		if _, ok := seen[path]; ok {
			continue
		}
		if err := s.kb.DeleteFile(ctx, id); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
