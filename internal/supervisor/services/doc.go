// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package services provides suture.Service wrappers for Airwave's background
components.

This package adapts application components to the suture v4 supervision
model, translating their native lifecycle patterns (ListenAndServe/Shutdown, Scan) into
suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation (ListenAndServe/Shutdown or a one-shot call inside Serve)
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

Library Scan (ScanService):
  - Wraps the filesystem Scanner
  - Runs an initial scan on startup when configured, then idles
  - Periodic rescans and on-demand scans are driven by the Job Controller

# Usage Example

Creating and registering services:

	import (
	    "net/http"
	    "time"

	    "github.com/airwave/airwave/internal/supervisor"
	    "github.com/airwave/airwave/internal/supervisor/services"
	)

	func setupSupervisor(server *http.Server, s *scanner.Scanner) {
	    tree, _ := supervisor.NewSupervisorTree(logger, config)

	    httpSvc := services.NewHTTPServerService(server, 30*time.Second)
	    tree.AddAPIService(httpSvc)

	    scanSvc := services.NewScanService(s, true)
	    tree.AddDataService(scanSvc)

	    tree.Serve(ctx)
	}

# Lifecycle Patterns

The package handles two lifecycle patterns:

One-shot Pattern (e.g. ScanService):

	func (s *Service) Serve(ctx context.Context) error {
	    if err := s.component.Run(ctx); err != nil {
	        return err
	    }
	    <-ctx.Done()
	    return ctx.Err()
	}

ListenAndServe Pattern (e.g. HTTPServerService):

	type Listener interface {
	    ListenAndServe() error
	    Shutdown(ctx context.Context) error
	}

	func (s *Service) Serve(ctx context.Context) error {
	    go s.server.ListenAndServe()
	    <-ctx.Done()
	    return s.server.Shutdown(shutdownCtx)
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer for logging:

	func (s *HTTPServerService) String() string {
	    return "http-server"
	}

Suture uses this for log messages:

	INFO http-server: starting
	INFO http-server: stopped
	ERROR http-server: restarting after failure

# Thread Safety

All service wrappers are safe for concurrent use:
  - Context cancellation is handled atomically
  - Multiple Serve calls are not supported (undefined behavior)

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/scanner: filesystem Scanner implementation
*/
package services
