// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

package ingest

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/time/rate"

	"rirdb-ingest/pkg/geoenrich"
	"rirdb-ingest/pkg/model"
	"rirdb-ingest/pkg/store"
	"rirdb-ingest/pkg/util/workers"
)

// Worker pulls blocks off a shared channel and ingests them against a
// single database session, matching spec.md §4.4/§5: one worker, one
// outer transaction at a time, per-block savepoints, periodic commits.
type Worker struct {
	ID          int
	Store       *store.Store
	Counters    *Counters
	CommitCount int                  // COMMIT_COUNT boundary; <=0 uses model.DefaultCommitCount
	Limiter     *rate.Limiter        // optional commit-rate pacer; nil disables pacing
	GeoEnricher *geoenrich.Enricher  // optional country backfill; nil disables it
}

// Run drains blocks until the channel closes (the goroutine
// translation of the source's N-sentinel-value termination protocol)
// or ctx is cancelled, committing the outer transaction at COMMIT_COUNT
// boundaries and once more when it returns.
func (w *Worker) Run(ctx context.Context, blocks <-chan model.Block) error {
	commitCount := w.CommitCount
	if commitCount <= 0 {
		commitCount = model.DefaultCommitCount
	}

	run, err := w.Store.BeginRun(ctx)
	if err != nil {
		return fmt.Errorf("worker %d: %w", w.ID, err)
	}

	inserts := 0
	for {
		select {
		case b, more := <-blocks:
			if !more {
				return w.finalCommit(ctx, run)
			}
			inserted, processErr := w.processBlock(ctx, run, b)
			if processErr != nil {
				log.Printf("ERROR: worker %d: %v", w.ID, processErr)
			}
			inserts += inserted

			if inserts >= commitCount {
				if err := run.Commit(ctx); err != nil {
					log.Printf("ERROR: worker %d: commit failed: %v", w.ID, err)
					_ = run.Rollback(ctx)
				}

				// Reopening the outer transaction is the commit boundary's
				// natural pacing point: RateLimitedRetry both throttles how
				// often a worker starts a fresh COMMIT_COUNT window and
				// retries the open itself if it transiently fails.
				var beginErr error
				retryErr := workers.RateLimitedRetry(ctx, w.Limiter, workers.DefaultRetryConfig(), func() error {
					run, beginErr = w.Store.BeginRun(ctx)
					return beginErr
				})
				if retryErr != nil {
					return fmt.Errorf("worker %d: reopen outer transaction: %w", w.ID, retryErr)
				}
				inserts = 0
			}

		case <-ctx.Done():
			return w.finalCommit(ctx, run)
		}
	}
}

func (w *Worker) finalCommit(ctx context.Context, run *store.RunTx) error {
	if err := run.Commit(ctx); err != nil {
		log.Printf("ERROR: worker %d: final commit failed: %v", w.ID, err)
		_ = run.Rollback(ctx)
		return fmt.Errorf("worker %d: final commit: %w", w.ID, err)
	}
	return nil
}

// processBlock implements §4.4's per-CIDR and parent/child write loops
// for a single block, returning the number of rows this block actually
// inserted (used to advance the commit-count counter).
func (w *Worker) processBlock(ctx context.Context, run *store.RunTx, b model.Block) (int, error) {
	cidrs, parents, ok := BuildRecords(b)
	if !ok {
		w.Counters.AddSkipped(1)
		return 0, nil
	}

	inserted := 0
	for i := range cidrs {
		if err := geoenrich.Backfill(w.GeoEnricher, cidrs[i].Inetnum, &cidrs[i].Country); err != nil {
			log.Printf("WARN: geoip backfill for %s: %v", cidrs[i].Inetnum, err)
		}
	}
	for _, rec := range cidrs {
		outcome, err := w.Store.UpsertCidr(ctx, run, rec)
		if err != nil {
			return inserted, fmt.Errorf("upsert cidr %s/%s: %w", rec.Inetnum, rec.Autnum, err)
		}
		switch outcome {
		case store.Inserted:
			inserted++
		case store.Duplicate:
			w.Counters.AddDuplicates(1)
		case store.RaceDuplicate:
			model.Debugf("worker %d: expected unique violation on cidr %s/%s, peer won the race", w.ID, rec.Inetnum, rec.Autnum)
			w.Counters.AddRollbacks(1)
			w.Counters.AddDuplicates(1)
		}
	}

	for _, rec := range parents {
		outcome, err := w.Store.UpsertParent(ctx, run, rec)
		if err != nil {
			return inserted, fmt.Errorf("upsert parent %+v: %w", rec, err)
		}
		switch outcome {
		case store.Inserted:
			inserted++
		case store.Duplicate:
			w.Counters.AddDuplicates(1)
		case store.RaceDuplicate:
			model.Debugf("worker %d: expected unique violation on parent %+v, peer won the race", w.ID, rec)
			w.Counters.AddRollbacks(1)
			w.Counters.AddDuplicates(1)
		}
	}

	w.Counters.AddProcessed(1)
	return inserted, nil
}
