// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rirdb-ingest/pkg/checkpoint"
	"rirdb-ingest/pkg/geoenrich"
	"rirdb-ingest/pkg/model"
	"rirdb-ingest/pkg/orchestrator"
	"rirdb-ingest/pkg/store"
)

const version = "1.0.0"

func main() {
	cfg := &model.Config{}

	var connectionString1, connectionString2 string
	var debug1, debug2 bool
	var showVersion bool

	fs := flag.NewFlagSet("rirdb-ingest", flag.ExitOnError)
	fs.StringVar(&connectionString1, "connection_string", "", "target database DSN (required)")
	fs.StringVar(&connectionString2, "c", "", "target database DSN, shorthand for --connection_string")
	fs.BoolVar(&debug1, "debug", false, "verbose logging")
	fs.BoolVar(&debug2, "d", false, "verbose logging, shorthand for --debug")
	fs.BoolVar(&cfg.ResetDB, "reset_db", false, "drop and recreate the schema before ingestion")
	fs.IntVar(&cfg.CommitCount, "commit_count", model.DefaultCommitCount, "commit cadence")
	fs.StringVar(&cfg.DownloadsDir, "downloads-dir", "./downloads", "directory holding the input dump files")
	fs.IntVar(&cfg.Workers, "workers", 0, "worker count (default: number of CPUs)")
	fs.IntVar(&cfg.QueueSize, "queue-size", 0, "bounded queue capacity between reader and workers")
	fs.Float64Var(&cfg.CommitRate, "commit-rate", 0, "max outer-transaction commits per second (0 = unlimited)")
	fs.StringVar(&cfg.CheckpointDir, "checkpoint-dir", "", "directory for the resume ledger (disabled if empty)")
	fs.StringVar(&cfg.GeoIPCountryDB, "geoip-country-db", "", "path to a MaxMind GeoLite2-Country .mmdb (disabled if empty)")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	fs.Parse(os.Args[1:])

	if showVersion {
		fmt.Printf("rirdb-ingest version %s\n", version)
		return
	}

	cfg.ConnectionString = firstNonEmpty(connectionString1, connectionString2)
	cfg.Debug = debug1 || debug2
	model.SetDebug(cfg.Debug)

	if cfg.ConnectionString == "" {
		log.Fatal("ERROR: --connection_string/-c is required")
	}

	if err := run(cfg); err != nil {
		log.Printf("ERROR: %v", err)
		os.Exit(1)
	}
}

func run(cfg *model.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(ctx, cfg.ConnectionString)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx, cfg.ResetDB); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	var ledger *checkpoint.Ledger
	if cfg.CheckpointDir != "" {
		ledger, err = checkpoint.Open(cfg.CheckpointDir)
		if err != nil {
			return fmt.Errorf("open checkpoint ledger: %w", err)
		}
		defer ledger.Close()
	}

	var enricher *geoenrich.Enricher
	if cfg.GeoIPCountryDB != "" {
		enricher, err = geoenrich.Open(cfg.GeoIPCountryDB)
		if err != nil {
			return fmt.Errorf("open geoip database: %w", err)
		}
		defer enricher.Close()
		log.Printf("INFO: country backfill enabled via %s", cfg.GeoIPCountryDB)
	}

	o := orchestrator.New(*cfg, db, ledger)
	o.GeoEnricher = enricher
	stats, err := o.Run(ctx)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	log.Printf("INFO: ingested %d files, %d blocks", stats.Files, stats.Blocks)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
