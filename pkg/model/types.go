// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

// Package model holds the types shared across the ingestion pipeline:
// the transient Block, the persistent CidrRecord/ParentRecord rows, the
// dormant MemberRecord/AttrRecord sinks, and the run configuration that
// replaces the source's module-level globals.
package model

import (
	"log"
	"sync/atomic"
	"time"
)

// Block is a single RPSL record as read from a bulk dump: the raw
// attribute lines plus the registry tag the reader stamped onto it.
type Block struct {
	Lines  []string // raw lines as read; a continuation line is kept as its own entry
	Source string   // registry tag, e.g. "ARIN", "RIPE" ("" if unrecognised)
}

// CidrRecord is one row of the `cidr` table, keyed by (Inetnum, Autnum).
type CidrRecord struct {
	Inetnum      string // canonical CIDR text, IPv4 or IPv6
	Autnum       string // originating AS number as text, may be empty
	Attr         string // "inetnum" or "route"
	Netname      string // human label, or the CIDR text itself for route-derived rows
	Country      string
	Description  string
	Remarks      string
	Status       string
	Source       string
	Created      string
	LastModified string
}

// ParentRecord is one row of the `parent` table: a directed typed edge
// between two object identities, keyed by all four columns.
type ParentRecord struct {
	Parent     string
	ParentType string
	Child      string
	ChildType  string
}

// MemberRecord reserves the `member` table for mntner/person/role/
// organisation/irt objects. Ingestion into it is not wired by default.
type MemberRecord struct {
	IDD         string
	Attr        string
	Name        string
	Description string
	Remarks     string
}

// AttrRecord reserves the `attr` table for aut-num/as-set/route-set/
// domain objects. Ingestion into it is not wired by default.
type AttrRecord struct {
	Name        string
	Attr        string
	Description string
	Remarks     string
}

// Config is the run-context record that replaces the source's
// module-level CURRENT_FILENAME/NUM_BLOCKS/COMMIT_COUNT globals.
type Config struct {
	ConnectionString string
	Debug            bool
	ResetDB          bool
	CommitCount      int
	DownloadsDir     string
	Workers          int
	QueueSize        int
	CommitRate       float64
	CheckpointDir    string
	GeoIPCountryDB   string
}

// DefaultCommitCount is the commit cadence used when Config.CommitCount
// is unset, matching the source's COMMIT_COUNT default.
const DefaultCommitCount = 10000

// Counters is a snapshot of run-wide progress, copied from the
// mutex-guarded pkg/ingest.Counters once a run has finished.
type Counters struct {
	Processed  int64
	Skipped    int64
	Duplicates int64
	Rollbacks  int64
}

// Stats summarises a completed run for the orchestrator's log output.
type Stats struct {
	Files     int
	Blocks    int
	Counters  Counters
	Elapsed   time.Duration
	StartedAt time.Time
}

// Error is a sentinel error enum, following the source's Error-string idiom.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoInputFiles   Error = "no input files found"
	ErrUnknownSource  Error = "unrecognised registry filename"
	ErrNoRange        Error = "block has no extractable IP range"
	ErrDatabaseClosed Error = "database is closed"
	ErrInvalidConfig  Error = "invalid configuration"
)

// debugEnabled is the package-level verbosity gate --debug/-d raises,
// replacing the source's module-level DEBUG flag.
var debugEnabled atomic.Bool

// SetDebug turns DEBUG-level logging on or off for the whole process.
func SetDebug(on bool) { debugEnabled.Store(on) }

// DebugEnabled reports whether SetDebug(true) has been called.
func DebugEnabled() bool { return debugEnabled.Load() }

// Debugf logs a DEBUG: line when debugging is enabled; a no-op otherwise.
func Debugf(format string, args ...any) {
	if debugEnabled.Load() {
		log.Printf("DEBUG: "+format, args...)
	}
}
