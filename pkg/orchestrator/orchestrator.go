// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

// Package orchestrator drives the full ingestion run: it walks the
// fixed ordered list of RIR dump files, reads and dispatches each one
// to a worker pool, and archives completed files, matching spec.md §4.5.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"rirdb-ingest/pkg/checkpoint"
	"rirdb-ingest/pkg/geoenrich"
	"rirdb-ingest/pkg/ingest"
	"rirdb-ingest/pkg/model"
	"rirdb-ingest/pkg/rpsl"
	"rirdb-ingest/pkg/store"
)

// inputFiles is the fixed ordered list spec.md §6 names: the five RIR
// dumps plus IPv6 variants for APNIC and RIPE.
var inputFiles = []string{
	"afrinic.db.gz",
	"apnic.db.inetnum.gz",
	"arin.db.gz",
	"lacnic.db.gz",
	"ripe.db.inetnum.gz",
	"apnic.db.inet6num.gz",
	"ripe.db.inet6num.gz",
}

const defaultQueueSize = 4096

// Orchestrator owns the run-context record (model.Config) that replaces
// the source's CURRENT_FILENAME/NUM_BLOCKS/COMMIT_COUNT globals.
type Orchestrator struct {
	Config      model.Config
	Store       *store.Store
	Checkpoint  *checkpoint.Ledger  // nil disables resume support
	Limiter     *rate.Limiter       // nil disables commit-rate pacing
	GeoEnricher *geoenrich.Enricher // nil disables country backfill
}

// New builds an Orchestrator, filling in Config defaults the way
// cmd/rirdb-ingest's flag parsing leaves unset.
func New(cfg model.Config, st *store.Store, ledger *checkpoint.Ledger) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.CommitCount <= 0 {
		cfg.CommitCount = model.DefaultCommitCount
	}
	if cfg.DownloadsDir == "" {
		cfg.DownloadsDir = "./downloads"
	}

	var limiter *rate.Limiter
	if cfg.CommitRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.CommitRate), cfg.Workers)
	}

	return &Orchestrator{Config: cfg, Store: st, Checkpoint: ledger, Limiter: limiter}
}

// Run iterates inputFiles in order, ingesting each that exists under
// Config.DownloadsDir, and returns run-wide statistics. A per-file
// failure is logged and does not stop the run; Run returns only after
// every file has been attempted, matching spec.md §7's propagation
// policy.
func (o *Orchestrator) Run(ctx context.Context) (model.Stats, error) {
	started := time.Now()
	counters := &ingest.Counters{}
	stats := model.Stats{StartedAt: started}

	for _, name := range inputFiles {
		path := filepath.Join(o.Config.DownloadsDir, name)

		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				log.Printf("INFO: %s not found, skipping", path)
				continue
			}
			log.Printf("ERROR: stat %s: %v", path, err)
			continue
		}

		if o.Checkpoint != nil {
			done, err := o.Checkpoint.IsFileDone(name)
			if err != nil {
				log.Printf("WARN: checkpoint lookup for %s: %v", name, err)
			} else if done {
				log.Printf("INFO: %s already committed per checkpoint, skipping", name)
				continue
			}
		}

		blockCount, err := o.processFile(ctx, path, counters)
		if err != nil {
			log.Printf("ERROR: %s: %v", path, err)
			continue
		}

		stats.Files++
		stats.Blocks += blockCount

		if o.Checkpoint != nil {
			if err := o.Checkpoint.MarkFileDone(name, int64(blockCount)); err != nil {
				log.Printf("WARN: checkpoint write for %s: %v", name, err)
			}
		}

		if err := o.archive(path, name); err != nil {
			log.Printf("ERROR: archive %s: %v", path, err)
		}
	}

	stats.Elapsed = time.Since(started)
	processed, skipped, duplicates, rollbacks := counters.Snapshot()
	stats.Counters = model.Counters{
		Processed: processed, Skipped: skipped, Duplicates: duplicates, Rollbacks: rollbacks,
	}

	o.printSummary(stats)
	return stats, nil
}

// processFile reads one file to completion, fans it out to a worker
// pool sized to Config.Workers, and waits for every worker to drain.
func (o *Orchestrator) processFile(ctx context.Context, path string, counters *ingest.Counters) (int, error) {
	blocks, err := rpsl.ReadBlocks(path)
	if err != nil {
		return 0, fmt.Errorf("read blocks: %w", err)
	}
	log.Printf("INFO: %s: %d blocks retained", path, len(blocks))

	queue := ingest.Dispatch(ctx, blocks, o.Config.QueueSize, time.Now().UnixNano())

	var wg sync.WaitGroup
	for i := 0; i < o.Config.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := &ingest.Worker{
				ID:          id,
				Store:       o.Store,
				Counters:    counters,
				CommitCount: o.Config.CommitCount,
				Limiter:     o.Limiter,
				GeoEnricher: o.GeoEnricher,
			}
			if err := w.Run(ctx, queue); err != nil {
				log.Printf("ERROR: worker %d on %s: %v", id, path, err)
			}
		}(i)
	}
	wg.Wait()

	// A cancelled run stops dispatching early; the file is then not
	// complete and must not be checkpointed or archived.
	if err := ctx.Err(); err != nil {
		return len(blocks), fmt.Errorf("interrupted before every block was ingested: %w", err)
	}

	return len(blocks), nil
}

// archive renames a completed file into downloads/done, matching
// spec.md §4.5 step 6. Failure is logged, never fatal.
func (o *Orchestrator) archive(path, name string) error {
	doneDir := filepath.Join(o.Config.DownloadsDir, "done")
	if err := os.MkdirAll(doneDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", doneDir, err)
	}
	return os.Rename(path, filepath.Join(doneDir, name))
}

func (o *Orchestrator) printSummary(s model.Stats) {
	log.Printf("INFO: run complete in %s", s.Elapsed.Round(time.Millisecond))
	log.Printf("INFO:   files processed:  %d", s.Files)
	log.Printf("INFO:   blocks retained:  %d", s.Blocks)
	log.Printf("INFO:   blocks processed: %d", s.Counters.Processed)
	log.Printf("INFO:   blocks skipped:   %d", s.Counters.Skipped)
	log.Printf("INFO:   duplicates:       %d", s.Counters.Duplicates)
	log.Printf("INFO:   savepoint rollbacks: %d", s.Counters.Rollbacks)
}
