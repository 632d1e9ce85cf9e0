// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

// Package ingest implements the Ingestion Worker, the Block Dispatcher,
// and the Shared Counters that track progress across workers.
package ingest

import "sync"

// Counters are the mutex-protected integer cells spec.md §5 calls for:
// every increment takes the lock. A run-context value, not a global.
type Counters struct {
	mu         sync.Mutex
	processed  int64
	skipped    int64
	duplicates int64
	rollbacks  int64
}

func (c *Counters) AddProcessed(n int64)  { c.mu.Lock(); c.processed += n; c.mu.Unlock() }
func (c *Counters) AddSkipped(n int64)    { c.mu.Lock(); c.skipped += n; c.mu.Unlock() }
func (c *Counters) AddDuplicates(n int64) { c.mu.Lock(); c.duplicates += n; c.mu.Unlock() }
func (c *Counters) AddRollbacks(n int64)  { c.mu.Lock(); c.rollbacks += n; c.mu.Unlock() }

// Snapshot returns a consistent copy of all four counters.
func (c *Counters) Snapshot() (processed, skipped, duplicates, rollbacks int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processed, c.skipped, c.duplicates, c.rollbacks
}
