// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main is the entry point for the Airwave server application.
//
// It wires configuration, logging, the DuckDB-backed knowledge base,
// the filesystem scanner, the vector index, the matcher, the identity
// bridge, the discovery queue, the resolver, and the job controller
// into a suture supervisor tree, then serves a minimal HTTP endpoint
// for health checks and Prometheus metrics.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/airwave/airwave/internal/audit"
	"github.com/airwave/airwave/internal/bridge"
	"github.com/airwave/airwave/internal/config"
	"github.com/airwave/airwave/internal/database"
	"github.com/airwave/airwave/internal/discovery"
	"github.com/airwave/airwave/internal/jobs"
	"github.com/airwave/airwave/internal/library"
	"github.com/airwave/airwave/internal/logging"
	"github.com/airwave/airwave/internal/matcher"
	"github.com/airwave/airwave/internal/metrics"
	"github.com/airwave/airwave/internal/resolver"
	"github.com/airwave/airwave/internal/scanner"
	"github.com/airwave/airwave/internal/supervisor"
	"github.com/airwave/airwave/internal/supervisor/services"
	"github.com/airwave/airwave/internal/validation"
	"github.com/airwave/airwave/internal/vectorindex"
)

// rematchRequest is the validated shape of an operator-triggered
// /tasks/rematch call: an optional cap on how many queue items to
// reconsider in one pass.
type rematchRequest struct {
	Limit int `validate:"omitempty,min=1,max=5000"`
}

// importPlay is one raw play in a /tasks/import request body.
type importPlay struct {
	RawArtist string    `json:"raw_artist" validate:"required"`
	RawTitle  string    `json:"raw_title" validate:"required"`
	PlayedAt  time.Time `json:"played_at"`
}

// importRequest is the validated shape of a /tasks/import call
// submitting a batch of plays from a single station for submit_logs.
type importRequest struct {
	StationID int64        `json:"station_id" validate:"required"`
	Plays     []importPlay `json:"plays" validate:"required,min=1,max=5000,dive"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Msg("starting airwave")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing database")
		}
	}()

	kb := library.New(db, library.Config{
		MaxFuzzyWorks:  cfg.Matcher.FuzzyMaxWorks,
		FuzzyThreshold: cfg.Matcher.FuzzyThreshold,
	})

	vector := vectorindex.New(db)
	kb.SetVectorIndex(vector)

	thresholds := matcher.Thresholds{
		ArtistAuto:   cfg.Matcher.ArtistAuto,
		ArtistReview: cfg.Matcher.ArtistReview,
		TitleAuto:    cfg.Matcher.TitleAuto,
		TitleReview:  cfg.Matcher.TitleReview,
	}
	if err := thresholds.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid matcher thresholds")
	}
	m := matcher.New(db, vector, thresholds, cfg.Vector.TopK)

	auditStore := audit.NewDuckDBStore(db.Conn())
	auditCfg := audit.DefaultConfig()
	auditCfg.RetentionDays = cfg.Job.RetainAuditDays
	auditLogger := audit.NewLogger(auditStore, auditCfg)
	defer func() {
		if err := auditLogger.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing audit logger")
		}
	}()

	br := bridge.New(db, auditLogger, auditStore)
	dq := discovery.New(db, br, auditLogger)
	res := resolver.New(db)
	controller := jobs.NewController(cfg.Job.MaxConcurrent)

	scanCfg := scanner.Config{
		Workers:    cfg.Scanner.Workers,
		Extensions: scanner.DefaultExtensions,
	}
	sc := scanner.New(kb, vector, scanCfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slogLogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build supervisor tree")
	}

	tree.AddDataService(services.NewScanService(sc, true))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "database unreachable: %v", err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/tasks/scan", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		taskID := controller.Submit(jobs.KindScan, scanWork(sc))
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprintf(w, `{"task_id":%q}`, taskID)
	})

	mux.HandleFunc("/tasks/import", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req importRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"error":"invalid request body"}`)
			return
		}
		if err := validation.ValidateStruct(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"error":%q}`, err.Error())
			return
		}

		plays := make([]discovery.Play, len(req.Plays))
		for i, p := range req.Plays {
			playedAt := p.PlayedAt
			if playedAt.IsZero() {
				playedAt = time.Now()
			}
			plays[i] = discovery.Play{StationID: req.StationID, PlayedAt: playedAt, RawArtist: p.RawArtist, RawTitle: p.RawTitle}
		}

		taskID := controller.Submit(jobs.KindImport, importWork(dq, m, plays))
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprintf(w, `{"task_id":%q}`, taskID)
	})

	mux.HandleFunc("/tasks/rematch", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		req := rematchRequest{Limit: 5000}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if _, err := fmt.Sscanf(raw, "%d", &req.Limit); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprintf(w, `{"error":"invalid limit parameter"}`)
				return
			}
		}
		if err := validation.ValidateStruct(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"error":%q}`, err.Error())
			return
		}

		taskID := controller.Submit(jobs.KindRematch, rematchWork(dq, m, res, req.Limit))
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprintf(w, `{"task_id":%q}`, taskID)
	})

	mux.HandleFunc("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		taskID := r.URL.Path[len("/tasks/"):]
		snap, ok := controller.Status(taskID)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"task_id":%q,"kind":%q,"state":%q,"current":%d,"total":%d}`,
			snap.TaskID, snap.Kind, snap.State, snap.Progress.Current, snap.Progress.Total)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Job.ShutdownTimeout))

	metrics.AppInfo.WithLabelValues("1.0", runtime.Version()).Set(1)
	start := time.Now()
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.AppUptime.Set(time.Since(start).Seconds())
			}
		}
	}()

	errCh := tree.ServeBackground(ctx)

	logging.Info().
		Str("addr", httpServer.Addr).
		Msg("airwave supervisor tree running")

	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logging.Error().Err(err).Msg("supervisor tree exited with error")
		}
	}
}

// scanWork adapts a full library walk to the job controller's Work
// signature, letting an operator trigger an on-demand rescan via
// /tasks/scan instead of waiting for the next AutoStart cycle.
func scanWork(sc *scanner.Scanner) jobs.Work {
	return func(ctx context.Context, report jobs.Reporter) error {
		sum, err := sc.Scan(ctx, nil)
		if err != nil {
			return err
		}
		if report != nil {
			report(sum.FilesUpserted, sum.FilesSeen, "scan complete")
		}
		return nil
	}
}

// importWork adapts submit_logs to the job controller's Work signature:
// the ingestion path of raw log -> signature -> bridge lookup -> matcher
// -> auto-link or discovery upsert, batched so a large CSV-derived
// import doesn't run one matcher round-trip per play.
func importWork(dq *discovery.Discovery, m *matcher.Matcher, plays []discovery.Play) jobs.Work {
	return func(ctx context.Context, report jobs.Reporter) error {
		var totals discovery.IngestResult
		err := jobs.RunBatched(ctx, plays, jobs.DefaultBatchSize, report, "submitting broadcast logs", func(ctx context.Context, batch []discovery.Play) error {
			res, err := dq.SubmitLogs(ctx, m, batch)
			if err != nil {
				return err
			}
			totals.Inserted += res.Inserted
			totals.AutoLinked += res.AutoLinked
			totals.Queued += res.Queued
			return nil
		})
		if err != nil {
			return err
		}

		logging.Info().
			Int("inserted", totals.Inserted).
			Int("auto_linked", totals.AutoLinked).
			Int("queued", totals.Queued).
			Msg("import: submit_logs complete")
		return nil
	}
}

type rematchCandidate struct {
	signature string
	query     matcher.Query
}

// rematchWork re-runs the matcher over every signature currently
// sitting in the discovery queue, auto-linking anything that now
// clears the auto-link threshold (e.g. after a Library walk added the
// Work it was waiting on). Any link invalidates the resolver's cache
// since a newly linked Work may change a station or format's default
// playable Recording.
func rematchWork(dq *discovery.Discovery, m *matcher.Matcher, res *resolver.Resolver, limit int) jobs.Work {
	return func(ctx context.Context, report jobs.Reporter) error {
		items, err := dq.List(ctx, discovery.Filter{ExcludeCoolingDown: true, Limit: limit})
		if err != nil {
			return err
		}

		candidates := make([]rematchCandidate, len(items))
		for i, item := range items {
			candidates[i] = rematchCandidate{
				signature: item.Signature,
				query:     matcher.Query{RawArtist: item.RawArtist, RawTitle: item.RawTitle},
			}
		}

		actor := audit.Actor{ID: "job-controller", Type: "system", Name: "rematch"}

		return jobs.RunBatched(ctx, candidates, jobs.DefaultBatchSize, report, "rematching discovery queue", func(ctx context.Context, batch []rematchCandidate) error {
			queries := make([]matcher.Query, len(batch))
			for i, c := range batch {
				queries[i] = c.query
			}

			matches, err := m.MatchBatch(ctx, queries)
			if err != nil {
				return err
			}

			linked := false
			for i, match := range matches {
				if match.Category != matcher.CategoryAutoLink || match.WorkID == nil {
					continue
				}
				if err := dq.Link(ctx, actor, batch[i].signature, batch[i].query.RawArtist, batch[i].query.RawTitle, *match.WorkID); err != nil {
					return err
				}
				linked = true
			}
			if linked {
				res.Invalidate()
			}
			return nil
		})
	}
}
