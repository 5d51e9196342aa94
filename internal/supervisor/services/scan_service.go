// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"fmt"

	"github.com/airwave/airwave/internal/logging"
	"github.com/airwave/airwave/internal/scanner"
)

// ScanService wraps the filesystem Scanner as a supervised service.
//
// The service supports two modes:
//  1. AutoStart mode: runs a scan immediately when the service starts
//  2. On-demand mode: waits for an external trigger via the Job Controller
//
// Either way, once the initial scan (if any) is done, the service blocks
// until the supervisor shuts it down; periodic rescans are driven by the
// Job Controller, not by this wrapper.
type ScanService struct {
	scanner   *scanner.Scanner
	name      string
	autoStart bool
}

// NewScanService creates a new scan service wrapper.
func NewScanService(s *scanner.Scanner, autoStart bool) *ScanService {
	return &ScanService{
		scanner:   s,
		name:      "library-scan",
		autoStart: autoStart,
	}
}

// Serve implements suture.Service.
func (s *ScanService) Serve(ctx context.Context) error {
	if s.autoStart {
		logging.Info().Msg("starting initial library scan")
		sum, err := s.scanner.Scan(ctx, nil)
		if err != nil {
			if ctx.Err() != nil {
				logging.Info().Msg("initial scan canceled due to shutdown")
				return ctx.Err()
			}
			return fmt.Errorf("initial scan failed: %w", err)
		}
		logging.Info().
			Int64("files_seen", sum.FilesSeen).
			Int64("files_upserted", sum.FilesUpserted).
			Int64("files_skipped", sum.FilesSkipped).
			Int64("files_orphaned", sum.FilesOrphaned).
			Msg("initial scan complete")
	} else {
		logging.Info().Msg("scan service started (on-demand mode - use the job controller to trigger a scan)")
	}

	<-ctx.Done()
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *ScanService) String() string {
	return s.name
}
