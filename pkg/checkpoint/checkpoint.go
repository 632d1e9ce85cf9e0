// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

// Package checkpoint is an optional local resume ledger: it records
// which input files an ingestion run has already committed so a
// crashed or interrupted run restarted with --checkpoint-dir doesn't
// re-process files the database already has.
package checkpoint

import (
	"fmt"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/vmihailenco/msgpack/v5"
)

// Ledger wraps a LevelDB instance keyed by input filename.
type Ledger struct {
	db   *leveldb.DB
	mu   sync.RWMutex
	path string
}

// entry is the msgpack-encoded value stored per completed file.
type entry struct {
	BlocksProcessed int64
	CompletedAtUnix int64
}

// Open opens or creates a resume ledger at path, using Snappy
// compression for stored values.
func Open(path string) (*Ledger, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		Compression: opt.SnappyCompression,
	})
	if err != nil {
		return nil, fmt.Errorf("open checkpoint ledger %s: %w", path, err)
	}
	return &Ledger{db: db, path: path}, nil
}

// Close closes the ledger.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Close()
}

// MarkFileDone records that file was fully ingested and committed.
func (l *Ledger) MarkFileDone(file string, blocksProcessed int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := msgpack.Marshal(entry{
		BlocksProcessed: blocksProcessed,
		CompletedAtUnix: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode checkpoint entry for %s: %w", file, err)
	}
	return l.db.Put([]byte(file), data, nil)
}

// IsFileDone reports whether file was previously marked complete.
func (l *Ledger) IsFileDone(file string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, err := l.db.Get([]byte(file), nil)
	if err == leveldb.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read checkpoint entry for %s: %w", file, err)
	}
	return true, nil
}

// Forget clears a file's completion marker, forcing it to be
// re-ingested on the next run.
func (l *Ledger) Forget(file string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Delete([]byte(file), nil)
}
